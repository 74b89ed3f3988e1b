// Package check provides system diagnostics (the check command) and
// pre-run validation: CheckDeps for the galfit executable and CheckFiles
// for the files a galfit input file refers to.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/astrokit/gftool/internal/config"
	"github.com/astrokit/gftool/internal/fitsname"
	"github.com/astrokit/gftool/internal/galfit"
)

// Sentinel errors returned by CheckDeps and CheckFiles.
var (
	ErrGalfitNotFound = errors.New("galfit not found")
	ErrMissingFile    = errors.New("file not found")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

const versionTimeout = 5 * time.Second

var reVersion = regexp.MustCompile(`(?i)galfit\s+version\s+\S+`)

// RunCheck runs the interactive check flow: prints where galfit is, its
// version banner, and which config file is in effect. It is informational
// only and does not stop on failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")
	checkGalfit(cfg, log)
	checkConfig(cfg, log)
}

func checkGalfit(cfg *config.Config, log Logger) {
	path, err := exec.LookPath(cfg.GalfitBin)
	if err != nil {
		log.Error("galfit not found (%s)", cfg.GalfitBin)
		return
	}
	log.Success("galfit: %s", path)

	version, err := Version(path)
	if err != nil {
		log.Warn("galfit found but version query failed: %v", err)
		return
	}
	log.Info("  %s", version)
}

func checkConfig(cfg *config.Config, log Logger) {
	if cfg.ConfigFile == "" {
		log.Info("config file: none (defaults)")
	} else {
		log.Info("config file: %s", cfg.ConfigFile)
	}
	log.Debug(cfg.Verbose, "lock file: %s, lock timeout: %s, run timeout: %s", cfg.LockFile, cfg.LockTimeout, cfg.Timeout)
}

// Version runs "galfit -help" and returns the "GALFIT Version x.y.z" part of
// its banner, or the first non-empty output line when there is none.
func Version(bin string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	// galfit exits non-zero after printing help; the output is what matters.
	out, err := exec.CommandContext(ctx, bin, "-help").CombinedOutput()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	text := string(out)
	if m := reVersion.FindString(text); m != "" {
		return m, nil
	}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
	if err != nil {
		return "", err
	}
	return "", errors.New("no output")
}

// CheckDeps verifies that the configured galfit executable can be found.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.GalfitBin); err != nil {
		return fmt.Errorf("%w: %s", ErrGalfitNotFound, cfg.GalfitBin)
	}
	return nil
}

// CheckFiles verifies that every file parameter of gf names an existing
// file (the base path for extended FITS names) and that the output block's
// directory exists. All problems are returned together.
func CheckFiles(gf *galfit.File) error {
	var result *multierror.Error
	for _, r := range galfit.FileParams {
		key := string(r)
		p, ok, err := gf.PathOf(key)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if !ok {
			continue
		}
		base := p
		if ext, err := fitsname.Parse(p); err == nil {
			base = ext.Base
		}
		if _, err := os.Stat(base); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s) %w: %s", key, ErrMissingFile, base))
		}
	}
	if out := gf.OutputPath(); out != "" {
		dir := filepath.Dir(out)
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			result = multierror.Append(result, fmt.Errorf("B) %w: output directory %s", ErrMissingFile, dir))
		}
	}
	return result.ErrorOrNil()
}
