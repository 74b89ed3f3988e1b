package commands

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/astrokit/gftool/internal/display"
	"github.com/astrokit/gftool/internal/errors"
	"github.com/astrokit/gftool/internal/fitsimg"
	"github.com/astrokit/gftool/internal/galfit"
	"github.com/astrokit/gftool/internal/mask"
)

const (
	defaultCopyOutput = "cp.fits"
	defaultEditOutput = "ed.fits"
)

func copyCommand(a *App) *cli.Command {
	return &cli.Command{
		Name:      "cp",
		Usage:     "Copy the input image of a galfit file within its fit region",
		ArgsUsage: "GALFIT [OUTPUT]",
		Flags:     []cli.Flag{notOverwriteFlag()},
		Action: action(func(c *cli.Context) error {
			return cutout(a, c, defaultCopyOutput, false)
		}),
	}
}

func editCommand(a *App) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Copy the input image within the fit region with the bad pixel mask applied",
		ArgsUsage: "GALFIT [OUTPUT]",
		Description: `Masked pixels become NaN in floating point images and 0 in integer
images.`,
		Flags: []cli.Flag{notOverwriteFlag()},
		Action: action(func(c *cli.Context) error {
			return cutout(a, c, defaultEditOutput, true)
		}),
	}
}

func notOverwriteFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "notoverwrite",
		Aliases: []string{"n"},
		Usage:   "Do not overwrite an existing output file",
	}
}

// cutout writes the fit region H) of the input image A), optionally with
// the mask F) applied, to the output file.
func cutout(a *App, c *cli.Context, defaultOutput string, applyMask bool) error {
	if c.NArg() < 1 || c.NArg() > 2 {
		return usageError(c, "need GALFIT and an optional OUTPUT")
	}
	gfPath, err := galfitArg(c, 0)
	if err != nil {
		return err
	}
	out := c.Args().Get(1)
	if out == "" {
		out = defaultOutput
	}
	overwrite := !c.Bool("notoverwrite")
	a.Log.Info("galfit file: %s", gfPath)
	a.Log.Info("output file: %s (overwrite: %t)", out, overwrite)

	if !overwrite {
		if _, err := os.Stat(out); err == nil {
			return errors.WithStackTraceAndPrefix(fitsimg.ErrExists, "%s (drop -n/--notoverwrite to replace it)", out)
		}
	}

	gf, err := galfit.Load(gfPath)
	if err != nil {
		return errors.WithStackTrace(err)
	}
	input, ok, err := gf.PathOf("A")
	if err != nil {
		return errors.WithStackTrace(err)
	}
	if !ok {
		return errors.Errorf("%s: no input image (A)", gfPath)
	}
	if !gf.Header.IsSet("H") {
		return errors.Errorf("%s: no fit region (H)", gfPath)
	}

	img, err := fitsimg.Open(input)
	if err != nil {
		return err
	}
	a.Log.Info("input image: %s (%s)", input, display.FormatShape(img.Nx, img.Ny))

	if applyMask {
		if err := applyMaskFile(a, gf, img); err != nil {
			return err
		}
	}

	r := gf.Header.Region
	a.Log.Info("region: %s", display.FormatRegion(r))
	cut, err := fitsimg.Crop(img, r[0], r[1], r[2], r[3])
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "region %s of %s", display.FormatRegion(r), input)
	}
	if err := fitsimg.Write(out, cut, overwrite); err != nil {
		return err
	}
	a.Log.Success("saved %s (%s)", out, display.FormatShape(cut.Nx, cut.Ny))
	return nil
}

func applyMaskFile(a *App, gf *galfit.File, img *fitsimg.Image) error {
	path, ok, err := gf.PathOf("F")
	if err != nil {
		return errors.WithStackTrace(err)
	}
	if !ok {
		a.Log.Warn("no mask")
		return nil
	}
	m, err := mask.Load(path, img.Nx, img.Ny)
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "mask %s", path)
	}
	if err := m.Apply(img); err != nil {
		return errors.WithStackTrace(err)
	}
	a.Log.Info("mask: %s (%d bad pixels)", path, m.Count())
	return nil
}
