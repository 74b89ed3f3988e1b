package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/astrokit/gftool/internal/check"
	"github.com/astrokit/gftool/internal/display"
	"github.com/astrokit/gftool/internal/errors"
	"github.com/astrokit/gftool/internal/galfit"
)

func checkCommand(a *App) *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Check the galfit installation, or validate galfit files",
		ArgsUsage: "[GALFIT...]",
		Description: `Without arguments, report where galfit is and which configuration is in
effect. With arguments, validate each galfit file and check that the
files it refers to exist.`,
		Action: action(func(c *cli.Context) error {
			if c.NArg() == 0 {
				display.PrintBanner(c.App.Writer, c.App.Version)
				check.RunCheck(a.Cfg, a.Log)
				return nil
			}

			var result error
			for _, arg := range c.Args().Slice() {
				if err := checkFile(a, galfit.ResolveName(arg)); err != nil {
					result = errors.Append(result, err)
				}
			}
			if result != nil {
				return errors.ErrorWithExitCode(result, ExitFailure)
			}
			return nil
		}),
	}
}

func checkFile(a *App, path string) error {
	gf, err := galfit.Load(path)
	if err != nil {
		a.Log.Error("%s: %v", path, err)
		return err
	}
	var problems error
	if err := gf.Validate(); err != nil {
		problems = errors.Append(problems, err)
	}
	if err := check.CheckFiles(gf); err != nil {
		problems = errors.Append(problems, err)
	}
	if problems == nil {
		a.Log.Success("%s: ok", path)
		return nil
	}
	errs := errors.Flatten(problems)
	for _, e := range errs {
		a.Log.Error("%s: %v", path, e)
	}
	return errors.Errorf("%s: %d problem(s)", path, len(errs))
}
