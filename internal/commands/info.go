package commands

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/astrokit/gftool/internal/display"
	"github.com/astrokit/gftool/internal/errors"
	"github.com/astrokit/gftool/internal/fitsimg"
	"github.com/astrokit/gftool/internal/fitsname"
)

func infoCommand(a *App) *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "List the HDUs of a FITS file and the image a name selects",
		ArgsUsage: "FITS",
		Action: action(func(c *cli.Context) error {
			if c.NArg() != 1 {
				return usageError(c, "need exactly one FITS name")
			}
			name := c.Args().First()
			p, err := fitsname.Parse(name)
			if err != nil {
				return errors.WithStackTrace(err)
			}
			fi, err := os.Stat(p.Base)
			if err != nil {
				return errors.WithStackTrace(err)
			}
			hdus, err := fitsimg.Describe(p.Base)
			if err != nil {
				return err
			}

			w := c.App.Writer
			fmt.Fprintf(w, "%s (%s, %d HDUs)\n", p.Base, display.FormatBytes(fi.Size()), len(hdus))
			for _, h := range hdus {
				fmt.Fprintln(w, display.FormatHDU(h))
			}
			if p.IsPlain() {
				return nil
			}

			img, err := fitsimg.Open(name)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "selected %s: HDU %d, %s, BITPIX=%d\n",
				p.String(), img.HDU, display.FormatShape(img.Nx, img.Ny), img.Bitpix)
			return nil
		}),
	}
}
