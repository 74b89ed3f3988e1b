// Package logging provides the leveled console logger used by every command.
//
// Entries go through logrus; two hooks do the writing. The console hook
// prints colored lines (errors to stderr) and the optional file hook appends
// the same lines without color.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/astrokit/gftool/internal/config"
	"github.com/astrokit/gftool/internal/term"
)

const (
	labelKey   = "label"
	timeLayout = "2006-01-02 15:04:05"
)

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	log     *logrus.Logger
	console *writerHook
	file    *os.File
}

// NewLogger configures colors from cfg and optionally opens cfg.LogFile.
// Call Close when done if LogFile was set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	return newLogger(cfg, os.Stdout, os.Stderr, term.Enabled())
}

func newLogger(cfg *config.Config, stdout, stderr io.Writer, color bool) (*Logger, error) {
	lr := logrus.New()
	lr.SetOutput(io.Discard)
	lr.SetLevel(logrus.DebugLevel)

	l := &Logger{log: lr}
	l.console = &writerHook{
		out:       stdout,
		errOut:    stderr,
		formatter: &lineFormatter{color: color},
	}
	lr.AddHook(l.console)
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		lr.AddHook(&writerHook{out: f, errOut: f, formatter: &lineFormatter{}})
	}
	return l, nil
}

// Close closes the log file if one was opened. Console logging continues.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	hooks := make(logrus.LevelHooks)
	hooks.Add(l.console)
	l.log.ReplaceHooks(hooks)
	return err
}

func (l *Logger) labeled(label string) *logrus.Entry {
	return l.log.WithField(labelKey, label)
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.labeled("SUCCESS").Infof(format, args...)
}

// DryRun logs an action that was not carried out (magenta).
func (l *Logger) DryRun(format string, args ...interface{}) {
	l.labeled("DRY-RUN").Infof(format, args...)
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.log.Debugf(format, args...)
}

// writerHook formats every entry and writes it to out, or errOut for errors.
type writerHook struct {
	mu        sync.Mutex
	out       io.Writer
	errOut    io.Writer
	formatter logrus.Formatter
}

func (h *writerHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	w := h.out
	if entry.Level <= logrus.ErrorLevel {
		w = h.errOut
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = w.Write(line)
	return err
}

// lineFormatter renders "2006-01-02 15:04:05 [LEVEL] message".
type lineFormatter struct {
	color bool
}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	label, _ := entry.Data[labelKey].(string)
	if label == "" {
		label = levelLabel(entry.Level)
	}
	tag := "[" + label + "]"
	if f.color {
		tag = paint(label)(tag)
	}
	var b strings.Builder
	b.WriteString(entry.Time.Format(timeLayout))
	b.WriteByte(' ')
	b.WriteString(tag)
	b.WriteByte(' ')
	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func levelLabel(level logrus.Level) string {
	switch level {
	case logrus.WarnLevel:
		return "WARN"
	case logrus.DebugLevel, logrus.TraceLevel:
		return "DEBUG"
	case logrus.InfoLevel:
		return "INFO"
	default:
		return "ERROR"
	}
}

func paint(label string) func(...interface{}) string {
	switch label {
	case "SUCCESS":
		return term.Green
	case "DRY-RUN":
		return term.Magenta
	case "WARN":
		return term.Yellow
	case "ERROR":
		return term.Red
	case "DEBUG":
		return term.Cyan
	default:
		return term.Blue
	}
}
