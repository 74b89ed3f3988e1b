package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/astrokit/gftool/internal/check"
	"github.com/astrokit/gftool/internal/config"
	"github.com/astrokit/gftool/internal/display"
	"github.com/astrokit/gftool/internal/errors"
	"github.com/astrokit/gftool/internal/galfit"
	"github.com/astrokit/gftool/internal/logging"
	"github.com/astrokit/gftool/internal/runner"
)

// outputTail is how many lines of galfit output are shown after a failure.
const outputTail = 20

// Run is the top-level batch entry point. It discovers input files under
// cfg.Inputs, processes each sequentially, and returns aggregate stats.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) RunStats {
	var stats RunStats

	files, err := DiscoverAll(cfg.Inputs)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		stats.Failed++
		return stats
	}

	stats.Total = len(files)
	logBatchHeader(cfg, log, &stats)

	for i, path := range files {
		stats.Current = i + 1

		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}

		processFile(ctx, cfg, log, path, &stats)
	}

	logSummary(cfg, log, &stats)
	return stats
}

// processFile handles one input: load, validate, check files, then skip or
// run it.
func processFile(ctx context.Context, cfg *config.Config, log *logging.Logger, path string, stats *RunStats) {
	log.Info("[%d/%d] %s", stats.Current, stats.Total, path)

	gf, err := galfit.Load(path)
	if err != nil {
		log.Error("Cannot read galfit file: %v", err)
		stats.Failed++
		return
	}

	if err := gf.Validate(); err != nil {
		logErrors(log, "Invalid galfit file", err)
		stats.Failed++
		return
	}
	if err := check.CheckFiles(gf); err != nil {
		logErrors(log, "Missing files", err)
		stats.Failed++
		return
	}

	mode, err := runner.ModeFor(cfg, gf)
	if err != nil {
		log.Error("%v", err)
		stats.Failed++
		return
	}
	log.Debug(cfg.Verbose, "  mode %s, region %s, %d components",
		mode, display.FormatRegion(gf.Header.Region), len(gf.Components))

	out := gf.OutputPath()
	if cfg.SkipExisting && out != "" {
		if _, err := os.Stat(out); err == nil {
			log.Warn("Skip (exists): %s", filepath.Base(out))
			stats.Skipped++
			return
		}
	}

	if cfg.DryRun {
		log.DryRun("(cd %s && %s)", filepath.Dir(path), strings.Join(runner.Build(cfg, path, mode), " "))
		stats.Succeeded++
		return
	}

	res := runner.Execute(ctx, cfg, path, mode)
	stats.Fitting += res.Elapsed
	if res.Err != nil {
		log.Error("%v", res.Err)
		if res.Failure != runner.FailCanceled && res.Failure != runner.FailLocked {
			logOutput(log, res.Output)
		}
		log.Debug(cfg.Verbose, "%s", errors.ErrorStack(res.Err))
		stats.Failed++
		return
	}
	log.Success("Fitted in %s: %s", display.FormatElapsed(res.Elapsed), filepath.Base(out))
	logFitResult(cfg, log, path)
	stats.Succeeded++
}

// fitResult returns the newest fit.log run started from the galfit file at
// path, falling back to the newest run in the log.
func fitResult(path string) (*galfit.FitRun, error) {
	l, err := galfit.LoadFitLog(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if runs := l.ByInit(filepath.Base(path)); len(runs) > 0 {
		return runs[len(runs)-1], nil
	}
	if run := l.Last(); run != nil {
		return run, nil
	}
	return nil, errors.Errorf("%s has no runs", galfit.FitLogName)
}

// logFitResult reports the output block and goodness of fit galfit logged.
// Model-only runs write no log, so a missing one is not an error.
func logFitResult(cfg *config.Config, log *logging.Logger, path string) {
	run, err := fitResult(path)
	if err != nil {
		log.Debug(cfg.Verbose, "  no fit log: %v", err)
		return
	}
	log.Info("  %s -> %s, Chi^2/nu = %.4f (ndof %d)", run.InitFile, run.OutputImage, run.ReducedChiSq, run.NDOF)
	if run.ResultFile != "" {
		log.Info("  result: %s", run.ResultFile)
	}
}

// logErrors logs each error of a multi-error on its own line.
func logErrors(log *logging.Logger, title string, err error) {
	log.Error("%s:", title)
	for _, e := range errors.Flatten(err) {
		log.Error("  %v", e)
	}
}

// logOutput logs the last lines of galfit's output.
func logOutput(log *logging.Logger, output string) {
	output = strings.TrimSpace(output)
	if output == "" {
		return
	}
	log.Error("Last galfit output:")
	lines := strings.Split(output, "\n")
	start := 0
	if len(lines) > outputTail {
		start = len(lines) - outputTail
	}
	for _, l := range lines[start:] {
		log.Error("  %s", l)
	}
}

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Found %d galfit files", stats.Total)
	if cfg.Mode != "" {
		log.Info("Mode: %s (overrides P) in every file)", cfg.Mode)
	} else {
		log.Info("Mode: per file")
	}
	log.Info("galfit: %s", cfg.GalfitBin)
	if cfg.Timeout > 0 {
		log.Info("Timeout: %s per fit", cfg.Timeout)
	}
	if !cfg.SkipExisting {
		log.Info("Existing output blocks: refit")
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	verb := "fitted"
	if cfg.DryRun {
		verb = "planned"
	}
	log.Info("Done: %d %s, %d skipped, %d failed", stats.Succeeded, verb, stats.Skipped, stats.Failed)
	log.Info("  Total files processed: %d", stats.Current)
	if !cfg.DryRun && stats.Fitting > 0 {
		log.Info("  galfit time: %s", display.FormatElapsed(stats.Fitting))
	}
}
