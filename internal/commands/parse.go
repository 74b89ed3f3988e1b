package commands

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"

	"github.com/astrokit/gftool/internal/errors"
	"github.com/astrokit/gftool/internal/fitsname"
)

func parseCommand(a *App) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse FITS extended file names and show their parts",
		ArgsUsage: "NAME...",
		Action: action(func(c *cli.Context) error {
			if c.NArg() == 0 {
				return usageError(c, "need at least one NAME")
			}
			var result *multierror.Error
			for _, name := range c.Args().Slice() {
				p, err := fitsname.Parse(name)
				if err != nil {
					a.Log.Error("%v", err)
					result = errors.Append(result, err)
					continue
				}
				writeExtendedPath(c.App.Writer, p)
			}
			if err := result.ErrorOrNil(); err != nil {
				return errors.ErrorWithExitCode(err, ExitFailure)
			}
			return nil
		}),
	}
}

func writeExtendedPath(w io.Writer, p fitsname.ExtendedPath) {
	fmt.Fprintln(w, p.String())
	fmt.Fprintf(w, "  base     %s\n", p.Base)
	switch s := p.HDU.(type) {
	case nil:
		fmt.Fprintln(w, "  hdu      default")
	case fitsname.ByIndex:
		fmt.Fprintf(w, "  hdu      index %d\n", s.Index)
	case fitsname.ByName:
		line := "name " + s.Name
		if s.Version != nil {
			line += fmt.Sprintf(", version %d", *s.Version)
		}
		if s.Kind != fitsname.KindAny {
			line += ", kind " + s.Kind.String()
		}
		fmt.Fprintf(w, "  hdu      %s\n", line)
	}
	if p.Section == nil {
		fmt.Fprintln(w, "  section  whole image")
	} else {
		fmt.Fprintf(w, "  section  x %s, y %s\n", p.Section.X, p.Section.Y)
	}
}
