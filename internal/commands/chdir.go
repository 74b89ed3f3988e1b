package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/astrokit/gftool/internal/display"
	"github.com/astrokit/gftool/internal/errors"
	"github.com/astrokit/gftool/internal/galfit"
)

func chdirCommand(a *App) *cli.Command {
	return &cli.Command{
		Name:      "chdir",
		Usage:     "Rewrite a galfit file so that it runs from another directory",
		ArgsUsage: "GALFIT DEST",
		Description: `Every relative input file parameter (A C D F G) is rewritten to name
the same file as seen from DEST; the output block B) is left alone, so
the fit writes into DEST. The result is written to DEST/<name of GALFIT>
unless --output is given.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Print the changes without writing anything",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the result to `FILE`",
			},
		},
		Action: action(func(c *cli.Context) error {
			if c.NArg() != 2 {
				return usageError(c, "need GALFIT and DEST")
			}
			gfPath, err := galfitArg(c, 0)
			if err != nil {
				return err
			}
			dest := c.Args().Get(1)
			if fi, err := os.Stat(dest); err != nil || !fi.IsDir() {
				return errors.Errorf("%s is not a directory", dest)
			}
			out := c.String("output")
			if out == "" {
				out = filepath.Join(dest, filepath.Base(gfPath))
			}
			return chdir(a, c, gfPath, dest, out, c.Bool("dry-run"))
		}),
	}
}

func chdir(a *App, c *cli.Context, gfPath, dest, out string, dryRun bool) error {
	gf, err := galfit.Load(gfPath)
	if err != nil {
		return errors.WithStackTrace(err)
	}
	before := gf.String()

	if src, err := filepath.Rel(dest, gfPath); err == nil {
		gf.AddComment("source file", filepath.ToSlash(src))
	} else {
		gf.AddComment("source file", gfPath)
	}
	if err := gf.ChDir(dest); err != nil {
		return errors.WithStackTraceAndPrefix(err, "%s", gfPath)
	}

	diff, changed := display.LineDiff(before, gf.String())
	if dryRun || a.Cfg.Verbose {
		a.Log.Info("%s -> %s", gfPath, out)
		if changed {
			fmt.Fprint(c.App.Writer, diff)
		}
	}
	if dryRun {
		a.Log.DryRun("would write %s", out)
		return nil
	}

	if _, err := os.Stat(out); err == nil && a.Cfg.SkipExisting {
		return errors.Errorf("%s exists (use --force to replace it)", out)
	}
	if err := gf.Save(out); err != nil {
		return errors.WithStackTrace(err)
	}
	a.Log.Success("saved %s", out)
	return nil
}
