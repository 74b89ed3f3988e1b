package config

// This file defines the global CLI flags and merges them over the config file.
// Negated flags (--no-color, --force) are applied after the file is loaded so
// file settings hold unless the user passes the flag.

import (
	"github.com/urfave/cli/v2"
)

const (
	FlagConfig  = "config"
	FlagLog     = "log"
	FlagVerbose = "verbose"
	FlagColor   = "color"
	FlagNoColor = "no-color"
	FlagForce   = "force"
	FlagGalfit  = "galfit"
)

// Flags returns the global flags. cfg supplies the defaults shown in help.
func Flags(cfg *Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagConfig,
			EnvVars: []string{EnvConfig},
			Usage:   "Read settings from this YAML file (default: " + defaultPath + ")",
		},
		&cli.StringFlag{
			Name:    FlagLog,
			Aliases: []string{"l"},
			Usage:   "Append logs to file",
		},
		&cli.BoolFlag{
			Name:    FlagVerbose,
			Aliases: []string{"v"},
			Usage:   "Verbose output, including error stack traces",
		},
		&cli.BoolFlag{
			Name:  FlagColor,
			Usage: "Force colored logs",
		},
		&cli.BoolFlag{
			Name:  FlagNoColor,
			Usage: "Disable colored logs",
		},
		&cli.BoolFlag{
			Name:    FlagForce,
			Aliases: []string{"f"},
			Usage:   "Overwrite existing output files and rerun finished fits",
		},
		&cli.StringFlag{
			Name:    FlagGalfit,
			EnvVars: []string{"GFTOOL_GALFIT"},
			Value:   cfg.GalfitBin,
			Usage:   "galfit executable",
		},
	}
}

// Apply loads the config file named by --config (or the default location)
// into cfg, then overrides it with every global flag the user set, and
// validates the result.
func Apply(c *cli.Context, cfg *Config) error {
	path := c.String(FlagConfig)
	required := path != ""
	if !required {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}
	if err := LoadFile(path, cfg, required); err != nil {
		return err
	}

	if c.IsSet(FlagLog) {
		cfg.LogFile = c.String(FlagLog)
	}
	if c.IsSet(FlagVerbose) {
		cfg.Verbose = c.Bool(FlagVerbose)
	}
	if c.IsSet(FlagGalfit) {
		cfg.GalfitBin = c.String(FlagGalfit)
	}
	applyNegatedFlags(c, cfg)
	return cfg.Validate()
}

func applyNegatedFlags(c *cli.Context, cfg *Config) {
	if c.Bool(FlagForce) {
		cfg.SkipExisting = false
	}
	if c.Bool(FlagNoColor) {
		cfg.ColorMode = ColorNever
	} else if c.Bool(FlagColor) {
		cfg.ColorMode = ColorAlways
	}
}
