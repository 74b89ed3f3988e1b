package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/astrokit/gftool/internal/check"
	"github.com/astrokit/gftool/internal/config"
	"github.com/astrokit/gftool/internal/errors"
	"github.com/astrokit/gftool/internal/galfit"
	"github.com/astrokit/gftool/internal/pipeline"
)

func runCommand(a *App) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run galfit on galfit files, or on every galfit file under directories",
		ArgsUsage: "GALFIT|DIR...",
		Description: `Directories are searched recursively for galfit.NN, *.feedme and *.gf
files. A fit whose output block already exists is skipped unless --force
is given. galfit runs in the directory of each file, one at a time per
directory.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Show the galfit commands without running them",
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Force galfit `MODE` (optimize, model, imgblock, subcomps or 0-3)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Kill galfit after this long (0 = no limit)",
			},
			&cli.DurationFlag{
				Name:  "lock-timeout",
				Usage: "Wait this long for another gftool working in the same directory",
			},
		},
		Action: action(func(c *cli.Context) error {
			if c.NArg() == 0 {
				return usageError(c, "need at least one galfit file or directory")
			}
			if err := applyRunFlags(c, a.Cfg); err != nil {
				return errors.ErrorWithExitCode(errors.WithStackTrace(err), ExitUsage)
			}
			for _, arg := range c.Args().Slice() {
				a.Cfg.Inputs = append(a.Cfg.Inputs, config.NormalizeDirArg(galfit.ResolveName(arg)))
			}
			if !a.Cfg.DryRun {
				if err := check.CheckDeps(a.Cfg); err != nil {
					return errors.WithStackTrace(err)
				}
			}

			stats := pipeline.Run(c.Context, a.Cfg, a.Log)
			if c.Context.Err() != nil {
				return errors.WithStackTrace(c.Context.Err())
			}
			if !stats.OK() {
				return errors.ErrorWithExitCode(errors.Errorf("%d failed", stats.Failed), ExitFailure)
			}
			return nil
		}),
	}
}

func applyRunFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("dry-run") {
		cfg.DryRun = c.Bool("dry-run")
	}
	if c.IsSet("mode") {
		cfg.Mode = c.String("mode")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Duration("timeout")
	}
	if c.IsSet("lock-timeout") {
		cfg.LockTimeout = c.Duration("lock-timeout")
	}
	return cfg.Validate()
}
