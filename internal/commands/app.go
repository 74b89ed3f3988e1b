// Package commands defines the gftool command-line interface: the global
// flags and one urfave/cli command per tool.
package commands

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/astrokit/gftool/internal/config"
	"github.com/astrokit/gftool/internal/errors"
	"github.com/astrokit/gftool/internal/galfit"
	"github.com/astrokit/gftool/internal/logging"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// App is the gftool CLI. Cfg and Log are ready once the global flags have
// been applied, before any command action runs.
type App struct {
	*cli.App
	Cfg *config.Config
	Log *logging.Logger
}

// NewApp returns the CLI with every command registered.
func NewApp(version string) *App {
	cfg := config.DefaultConfig()
	a := &App{Cfg: &cfg}

	// -v is --verbose; the version flag moves to -V.
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "Print version and exit",
	}

	a.App = &cli.App{
		Name:    "gftool",
		Usage:   "Prepare, inspect and run galfit fits",
		Version: version,
		Description: `Tools around galfit input files and the FITS images they name.

Image names accept FITS extended-filename selectors, e.g.
  img.fits[SCI,2][1:512:2,*]   (HDU by name and version, then a section)
A numeric GALFIT argument N stands for the file galfit.NN.`,
		Flags:          config.Flags(a.Cfg),
		Before:         a.before,
		After:          a.after,
		ExitErrHandler: func(*cli.Context, error) {},
		OnUsageError:   onUsageError,
		Commands: []*cli.Command{
			parseCommand(a),
			infoCommand(a),
			imcopyCommand(a),
			copyCommand(a),
			editCommand(a),
			chdirCommand(a),
			checkCommand(a),
			runCommand(a),
		},
	}
	for _, cmd := range a.App.Commands {
		cmd.OnUsageError = onUsageError
	}
	return a
}

// onUsageError gives flag parsing errors the usage exit code.
func onUsageError(_ *cli.Context, err error, _ bool) error {
	return errors.ErrorWithExitCode(errors.WithStackTrace(err), ExitUsage)
}

func (a *App) before(c *cli.Context) error {
	if err := config.Apply(c, a.Cfg); err != nil {
		return errors.ErrorWithExitCode(errors.WithStackTrace(err), ExitUsage)
	}
	log, err := logging.NewLogger(a.Cfg)
	if err != nil {
		return errors.WithStackTrace(err)
	}
	a.Log = log
	return nil
}

func (a *App) after(*cli.Context) error {
	if a.Log == nil {
		return nil
	}
	return a.Log.Close()
}

// action wraps a command action so that a panic is reported as an error.
func action(fn cli.ActionFunc) cli.ActionFunc {
	return errors.WithPanicHandling(fn)
}

// usageError reports wrong arguments; the CLI exits with ExitUsage.
func usageError(c *cli.Context, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return errors.ErrorWithExitCode(errors.Errorf("%s: %s (usage: %s %s %s)",
		c.Command.Name, msg, c.App.Name, c.Command.Name, c.Command.ArgsUsage), ExitUsage)
}

// galfitArg resolves the n-th argument as a galfit file name and checks
// that the file exists.
func galfitArg(c *cli.Context, n int) (string, error) {
	path := galfit.ResolveName(c.Args().Get(n))
	fi, err := os.Stat(path)
	if err != nil {
		return "", errors.WithStackTrace(err)
	}
	if fi.IsDir() {
		return "", errors.Errorf("%s is a directory, not a galfit file", path)
	}
	return path, nil
}
