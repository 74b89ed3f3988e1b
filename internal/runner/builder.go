package runner

import (
	"fmt"
	"path/filepath"

	"github.com/astrokit/gftool/internal/config"
	"github.com/astrokit/gftool/internal/galfit"
)

// Build returns the galfit argument slice for the input file gf. galfit runs
// in gf's directory, so only its base name is passed. Optimize is galfit's
// default and needs no flag; the other modes map to -o1, -o2 and -o3.
func Build(cfg *config.Config, gf string, mode galfit.Mode) []string {
	args := []string{cfg.GalfitBin}
	if mode != galfit.ModeOptimize {
		args = append(args, fmt.Sprintf("-o%d", int(mode)))
	}
	return append(args, filepath.Base(gf))
}

// ModeFor returns the mode galfit should run gf in: the configured mode when
// one is forced, else the file's own P) setting.
func ModeFor(cfg *config.Config, gf *galfit.File) (galfit.Mode, error) {
	mode, forced, err := cfg.RunMode()
	if err != nil {
		return 0, err
	}
	if forced {
		return mode, nil
	}
	return gf.Header.Mode, nil
}
