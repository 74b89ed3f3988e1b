package commands

import (
	"github.com/urfave/cli/v2"

	"github.com/astrokit/gftool/internal/fitsimg"
)

func imcopyCommand(a *App) *cli.Command {
	return &cli.Command{
		Name:      "imcopy",
		Usage:     "Copy the image a FITS name selects into a new file",
		ArgsUsage: "SRC DST",
		Description: `SRC may carry an HDU selector and an image section. DST must be a
plain file name; prefix it with "!" (or pass --force) to overwrite.`,
		Action: action(func(c *cli.Context) error {
			if c.NArg() != 2 {
				return usageError(c, "need SRC and DST")
			}
			src, dst := c.Args().Get(0), c.Args().Get(1)
			if err := fitsimg.ImCopy(src, dst, !a.Cfg.SkipExisting); err != nil {
				return err
			}
			a.Log.Success("%s -> %s", src, dst)
			return nil
		}),
	}
}
