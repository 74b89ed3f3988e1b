package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrokit/gftool/internal/config"
	"github.com/astrokit/gftool/internal/galfit"
)

func TestBuild(t *testing.T) {
	cfg := config.DefaultConfig()
	tests := []struct {
		name string
		gf   string
		mode galfit.Mode
		want []string
	}{
		{"optimize has no flag", "fits/galfit.01", galfit.ModeOptimize, []string{"galfit", "galfit.01"}},
		{"model", "galfit.feedme", galfit.ModeModel, []string{"galfit", "-o1", "galfit.feedme"}},
		{"imgblock", "/data/a.gf", galfit.ModeImgblock, []string{"galfit", "-o2", "a.gf"}},
		{"subcomps", "a.gf", galfit.ModeSubcomps, []string{"galfit", "-o3", "a.gf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(&cfg, tt.gf, tt.mode))
		})
	}
}

func TestModeFor(t *testing.T) {
	cfg := config.DefaultConfig()
	gf := galfit.New()
	gf.Header.Mode = galfit.ModeImgblock

	mode, err := ModeFor(&cfg, gf)
	require.NoError(t, err)
	assert.Equal(t, galfit.ModeImgblock, mode, "file setting by default")

	cfg.Mode = "model"
	mode, err = ModeFor(&cfg, gf)
	require.NoError(t, err)
	assert.Equal(t, galfit.ModeModel, mode, "configured mode wins")

	cfg.Mode = "bogus"
	_, err = ModeFor(&cfg, gf)
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		output string
		want   Failure
	}{
		{"Error: can't open file img.fits", FailMissingFile},
		{"Could not find mask.fits", FailMissingFile},
		{"psf.fits does not exist", FailMissingFile},
		{"Error: the PSF image is too small", FailPSF},
		{"PSF not centered", FailPSF},
		{"Segmentation fault (core dumped)", FailCrash},
		{"iteration 3\nsignal: killed", FailCrash},
		{"Doh!", FailUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.output))
		})
	}
	assert.Equal(t, "PSF problem", FailPSF.String())
	assert.Equal(t, "unknown", Failure(99).String())
}

// fakeGalfit writes a shell script standing in for galfit.
func fakeGalfit(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "galfit")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func newInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "galfit.feedme")
	require.NoError(t, os.WriteFile(path, []byte("B) out.fits\n"), 0o644))
	return path
}

func TestExecuteSuccess(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GalfitBin = fakeGalfit(t, `echo "$@" > args.txt; echo "fit done"`)
	gf := newInput(t)

	var tee strings.Builder
	res := execute(context.Background(), &cfg, gf, galfit.ModeModel, &tee)
	require.NoError(t, res.Err)
	assert.Equal(t, FailNone, res.Failure)
	assert.Equal(t, filepath.Dir(gf), res.Dir)
	assert.Contains(t, res.Output, "fit done")
	assert.Equal(t, res.Output, tee.String())

	args, err := os.ReadFile(filepath.Join(res.Dir, "args.txt"))
	require.NoError(t, err)
	assert.Equal(t, "-o1 galfit.feedme\n", string(args), "galfit runs in the file's directory")
	assert.FileExists(t, filepath.Join(res.Dir, cfg.LockFile))
}

func TestExecuteFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GalfitBin = fakeGalfit(t, `echo "Error: can't open file psf.fits" >&2; exit 1`)

	res := execute(context.Background(), &cfg, newInput(t), galfit.ModeOptimize, nil)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrFailed)
	assert.Equal(t, FailMissingFile, res.Failure)
	assert.Contains(t, res.Err.Error(), "missing file")
}

func TestExecuteTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GalfitBin = fakeGalfit(t, `exec sleep 5`)
	cfg.Timeout = 100 * time.Millisecond

	res := execute(context.Background(), &cfg, newInput(t), galfit.ModeOptimize, nil)
	assert.Equal(t, FailTimeout, res.Failure)
	assert.ErrorIs(t, res.Err, ErrFailed)
	assert.Less(t, res.Elapsed, 4*time.Second)
}

func TestExecuteLocked(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GalfitBin = fakeGalfit(t, `echo ran > ran.txt`)
	cfg.LockTimeout = 0
	gf := newInput(t)

	held := flock.New(filepath.Join(filepath.Dir(gf), cfg.LockFile))
	require.NoError(t, held.Lock())
	defer held.Unlock()

	res := execute(context.Background(), &cfg, gf, galfit.ModeOptimize, nil)
	assert.Equal(t, FailLocked, res.Failure)
	assert.ErrorIs(t, res.Err, ErrLocked)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(gf), "ran.txt"))

	cfg.LockTimeout = 150 * time.Millisecond
	res = execute(context.Background(), &cfg, gf, galfit.ModeOptimize, nil)
	assert.Equal(t, FailLocked, res.Failure, "gives up after the lock timeout")
}

func TestExecuteCanceled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.GalfitBin = fakeGalfit(t, `echo ran`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := execute(ctx, &cfg, newInput(t), galfit.ModeOptimize, nil)
	assert.Equal(t, FailCanceled, res.Failure)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestResolveBin(t *testing.T) {
	bin, err := resolveBin("galfit")
	require.NoError(t, err)
	assert.Equal(t, "galfit", bin)

	bin, err = resolveBin(filepath.Join("bin", "galfit"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(bin))
}
