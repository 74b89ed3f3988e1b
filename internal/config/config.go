// Package config holds runtime configuration: defaults, the YAML config file,
// global CLI flags, and validation.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/astrokit/gftool/internal/galfit"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// ParseColorMode accepts auto, always or never in any case.
func ParseColorMode(s string) (ColorMode, error) {
	switch m := ColorMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ColorAuto, ColorAlways, ColorNever:
		return m, nil
	}
	return "", fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
}

// Config holds all runtime settings. It is populated by [DefaultConfig], then
// by the config file and global flags in [Apply], before being passed (by
// pointer) to packages that need it.
type Config struct {
	// ConfigFile is the file the settings were read from, empty if none.
	ConfigFile string `yaml:"-"`

	// Inputs are the galfit files and directories a batch run processes
	// (set from positional args).
	Inputs []string `yaml:"-"`

	// galfit invocation.
	GalfitBin   string        `yaml:"galfit"`       // Default: "galfit" (looked up on PATH).
	Mode        string        `yaml:"mode"`         // Empty keeps the file's P) setting.
	Timeout     time.Duration `yaml:"timeout"`      // Zero means no limit.
	LockTimeout time.Duration `yaml:"lock_timeout"` // Default: 30s.
	LockFile    string        `yaml:"lock_file"`    // Default: ".gftool.lock", created in the fit's directory.

	// Behavior flags.
	DryRun       bool `yaml:"-"`
	SkipExisting bool `yaml:"skip_existing"` // Default: true. Cleared by --force.

	// Display and logging.
	Verbose   bool      `yaml:"verbose"`
	ColorMode ColorMode `yaml:"color"` // Default: "auto".
	LogFile   string    `yaml:"log"`   // Optional log file path.
}

// DefaultConfig returns a Config with every default set.
func DefaultConfig() Config {
	return Config{
		GalfitBin:    "galfit",
		LockTimeout:  30 * time.Second,
		LockFile:     ".gftool.lock",
		SkipExisting: true,
		ColorMode:    ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// RunMode returns the galfit mode forced by the configuration. ok is false
// when Mode is empty and the file's own P) setting should be used.
func (c *Config) RunMode() (mode galfit.Mode, ok bool, err error) {
	if c.Mode == "" {
		return 0, false, nil
	}
	mode, err = galfit.ParseMode(c.Mode)
	if err != nil {
		return 0, false, err
	}
	return mode, true, nil
}

// Validate checks enum fields, durations and the lock file name, and
// canonicalizes the color mode.
func (c *Config) Validate() error {
	mode, err := ParseColorMode(string(c.ColorMode))
	if err != nil {
		return err
	}
	c.ColorMode = mode
	if strings.TrimSpace(c.GalfitBin) == "" {
		return fmt.Errorf("galfit executable must not be empty")
	}
	if _, _, err := c.RunMode(); err != nil {
		return fmt.Errorf("invalid mode: %w", err)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout %s must not be negative", c.Timeout)
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("lock timeout %s must not be negative", c.LockTimeout)
	}
	if c.LockFile == "" || filepath.Base(c.LockFile) != c.LockFile {
		return fmt.Errorf("lock file %q must be a plain file name", c.LockFile)
	}
	return nil
}
