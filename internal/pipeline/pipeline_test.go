package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrokit/gftool/internal/config"
	"github.com/astrokit/gftool/internal/logging"
)

// --- Discover tests ---

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"galfit.01", "galfit.12", "ngc1300.feedme", "bulge.GF",
		"galfit.feedme.bak", "fit.log", "galfit.1a", "img.fits",
	} {
		touch(t, dir, name)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	touch(t, filepath.Join(dir, "sub"), "disk.feedme")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".snapshots"), 0o755))
	touch(t, filepath.Join(dir, ".snapshots"), "old.feedme")

	files, err := Discover(dir)
	require.NoError(t, err)

	want := []string{"bulge.GF", "galfit.01", "galfit.12", "ngc1300.feedme", filepath.Join("sub", "disk.feedme")}
	got := make([]string, len(files))
	for i, f := range files {
		got[i], err = filepath.Rel(dir, f)
		require.NoError(t, err)
	}
	assert.Equal(t, want, got)
}

func TestDiscoverFileRoot(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "custom.input")

	files, err := Discover(filepath.Join(dir, "custom.input"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "custom.input")}, files)

	_, err = Discover(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestDiscoverAllDedupes(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.feedme")
	touch(t, dir, "b.feedme")

	files, err := DiscoverAll([]string{filepath.Join(dir, "b.feedme"), dir})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "b.feedme"),
		filepath.Join(dir, "a.feedme"),
	}, files)
}

func TestIsInputName(t *testing.T) {
	assert.True(t, IsInputName("dir/galfit.07"))
	assert.True(t, IsInputName("x.Feedme"))
	assert.False(t, IsInputName("galfit.07.fits"))
	assert.False(t, IsInputName("fit.log"))
}

// --- Run tests ---

func writeInput(t *testing.T, dir, name, output string) {
	t.Helper()
	body := []byte(fmtInput(output))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), body, 0o644))
}

func fmtInput(output string) string {
	if output == "" {
		return "A) img.fits\nH) 1 10 1 10\nI) 5 5\n"
	}
	return "A) img.fits\nB) " + output + "\nH) 1 10 1 10\nI) 5 5\nP) 0\n"
}

// batchDir lays out one good input, one invalid input and one whose output
// block already exists.
func batchDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	touch(t, dir, "img.fits")
	writeInput(t, dir, "a.feedme", "a_out.fits")
	writeInput(t, dir, "b.feedme", "")
	writeInput(t, dir, "c.feedme", "c_out.fits")
	touch(t, dir, "c_out.fits")
	return dir
}

func newTestLogger(t *testing.T, cfg *config.Config) *logging.Logger {
	t.Helper()
	cfg.ColorMode = config.ColorNever
	log, err := logging.NewLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := batchDir(t)
	bin := filepath.Join(t.TempDir(), "galfit")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\ntouch \"$1.done\"\n"), 0o755))

	cfg := config.DefaultConfig()
	cfg.Inputs = []string{dir}
	cfg.GalfitBin = bin
	log := newTestLogger(t, &cfg)

	stats := Run(context.Background(), &cfg, log)
	assert.Equal(t, RunStats{Total: 3, Current: 3, Succeeded: 1, Skipped: 1, Failed: 1, Fitting: stats.Fitting}, stats)
	assert.False(t, stats.OK())
	assert.FileExists(t, filepath.Join(dir, "a.feedme.done"))
	assert.NoFileExists(t, filepath.Join(dir, "c.feedme.done"))

	cfg.SkipExisting = false
	stats = Run(context.Background(), &cfg, log)
	assert.Equal(t, 2, stats.Succeeded, "force refits existing outputs")
	assert.FileExists(t, filepath.Join(dir, "c.feedme.done"))
}

func TestRunDryRun(t *testing.T) {
	dir := batchDir(t)
	cfg := config.DefaultConfig()
	cfg.Inputs = []string{dir}
	cfg.GalfitBin = filepath.Join(t.TempDir(), "never-run")
	cfg.DryRun = true
	log := newTestLogger(t, &cfg)

	stats := Run(context.Background(), &cfg, log)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Succeeded, "dry run counts as fitted")
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Failed)
	assert.Zero(t, stats.Fitting)
}

func TestRunMissingFiles(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "a.feedme", "a_out.fits")

	cfg := config.DefaultConfig()
	cfg.Inputs = []string{dir}
	cfg.DryRun = true
	log := newTestLogger(t, &cfg)

	stats := Run(context.Background(), &cfg, log)
	assert.Equal(t, 1, stats.Failed, "img.fits does not exist")
}

func TestRunCanceled(t *testing.T) {
	dir := batchDir(t)
	cfg := config.DefaultConfig()
	cfg.Inputs = []string{dir}
	cfg.DryRun = true
	log := newTestLogger(t, &cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats := Run(ctx, &cfg, log)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Current, "stops before the first file")
	assert.Zero(t, stats.Succeeded+stats.Skipped+stats.Failed)
}

func TestRunDiscoveryError(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Inputs = []string{filepath.Join(t.TempDir(), "missing")}
	log := newTestLogger(t, &cfg)

	stats := Run(context.Background(), &cfg, log)
	assert.Zero(t, stats.Total)
	assert.False(t, stats.OK())
}

func TestFitResult(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "galfit.01")

	_, err := fitResult(input)
	assert.ErrorIs(t, err, os.ErrNotExist, "model runs leave no fit.log")

	log := `
Input image     : img.fits[1:10,1:10]
Init. par. file : galfit.01
Restart file    : galfit.02
Output image    : imgblock.fits

 sky       : [    5.00,     5.00]    1.39  [0.00e+00]  [0.00e+00]
               (    0.00,     0.00)    0.01   0.00e+00   0.00e+00
 Chi^2 = 120.00000,  ndof = 97
 Chi^2/nu = 1.237

Input image     : img.fits[1:10,1:10]
Init. par. file : galfit.feedme
Restart file    : galfit.03
Output image    : other.fits

 Chi^2 = 100.00000,  ndof = 97
 Chi^2/nu = 1.031
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fit.log"), []byte(log), 0o644))

	run, err := fitResult(input)
	require.NoError(t, err)
	assert.Equal(t, "imgblock.fits", run.OutputImage)
	assert.Equal(t, "galfit.02", run.ResultFile)
	assert.Equal(t, 1.237, run.ReducedChiSq)

	run, err = fitResult(filepath.Join(dir, "unknown.feedme"))
	require.NoError(t, err)
	assert.Equal(t, "galfit.03", run.ResultFile, "newest run when none started from the file")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "fit.log"), []byte("\n"), 0o644))
	_, err = fitResult(input)
	assert.ErrorContains(t, err, "no runs")
}

func TestRunLogsFitResult(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	dir := t.TempDir()
	touch(t, dir, "img.fits")
	writeInput(t, dir, "a.feedme", "a_out.fits")

	script := "#!/bin/sh\n" +
		"printf 'Input image : img.fits\\nInit. par. file : %s\\nOutput image : a_out.fits\\n Chi^2/nu = 1.5\\n' \"$1\" >> fit.log\n"
	bin := filepath.Join(t.TempDir(), "galfit")
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	cfg := config.DefaultConfig()
	cfg.Inputs = []string{dir}
	cfg.GalfitBin = bin
	log := newTestLogger(t, &cfg)

	stats := Run(context.Background(), &cfg, log)
	assert.Equal(t, 1, stats.Succeeded)

	run, err := fitResult(filepath.Join(dir, "a.feedme"))
	require.NoError(t, err)
	assert.Equal(t, "a_out.fits", run.OutputImage)
	assert.Equal(t, 1.5, run.ReducedChiSq)
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte{}, 0o644), "touch %s", path)
}
