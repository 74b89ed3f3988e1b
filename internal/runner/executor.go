package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/astrokit/gftool/internal/config"
	"github.com/astrokit/gftool/internal/errors"
	"github.com/astrokit/gftool/internal/galfit"
)

const (
	lockRetryDelay = 100 * time.Millisecond
	// waitDelay bounds how long output copying may outlive a killed galfit.
	waitDelay = 2 * time.Second
)

// Result holds the outcome of a single galfit invocation.
type Result struct {
	Args    []string
	Dir     string
	Output  string // Combined stdout and stderr.
	Failure Failure
	Elapsed time.Duration
	Err     error
}

// Execute runs galfit on the input file at gfPath in mode. With cfg.Verbose
// galfit's output is tee'd to os.Stdout in real time; otherwise it is only
// captured for classification.
func Execute(ctx context.Context, cfg *config.Config, gfPath string, mode galfit.Mode) Result {
	var tee io.Writer
	if cfg.Verbose {
		tee = os.Stdout
	}
	return execute(ctx, cfg, gfPath, mode, tee)
}

func execute(ctx context.Context, cfg *config.Config, gfPath string, mode galfit.Mode, tee io.Writer) Result {
	res := Result{Dir: filepath.Dir(gfPath)}

	bin, err := resolveBin(cfg.GalfitBin)
	if err != nil {
		res.Failure, res.Err = FailUnknown, err
		return res
	}
	runCfg := *cfg
	runCfg.GalfitBin = bin
	res.Args = Build(&runCfg, gfPath, mode)

	unlock, err := lockDir(ctx, cfg, res.Dir)
	if err != nil {
		res.Failure, res.Err = FailLocked, err
		if errors.IsContextCanceled(err) {
			res.Failure = FailCanceled
		}
		return res
	}
	defer unlock()

	runCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, res.Args[0], res.Args[1:]...)
	cmd.Dir = res.Dir
	cmd.WaitDelay = waitDelay

	var out bytes.Buffer
	var w io.Writer = &out
	if tee != nil {
		w = io.MultiWriter(&out, tee)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	start := time.Now()
	err = cmd.Run()
	res.Elapsed = time.Since(start)
	res.Output = out.String()

	switch {
	case err == nil:
		return res
	case ctx.Err() != nil:
		res.Failure = FailCanceled
		res.Err = errors.WithStackTrace(ctx.Err())
	case runCtx.Err() == context.DeadlineExceeded:
		res.Failure = FailTimeout
		res.Err = errors.Errorf("%w: %s timed out after %s", ErrFailed, filepath.Base(gfPath), cfg.Timeout)
	default:
		res.Failure = Classify(res.Output + "\n" + err.Error())
		res.Err = errors.Errorf("%w: %s: %s (%v)", ErrFailed, filepath.Base(gfPath), res.Failure, err)
	}
	return res
}

// resolveBin makes a relative path with a directory part absolute, since
// galfit runs in another directory. Bare names are left for PATH lookup.
func resolveBin(bin string) (string, error) {
	if !strings.ContainsRune(bin, filepath.Separator) || filepath.IsAbs(bin) {
		return bin, nil
	}
	abs, err := filepath.Abs(bin)
	if err != nil {
		return "", errors.WithStackTrace(err)
	}
	return abs, nil
}

// lockDir takes the gftool lock in dir, waiting up to cfg.LockTimeout. A zero
// timeout tries once.
func lockDir(ctx context.Context, cfg *config.Config, dir string) (func(), error) {
	path := filepath.Join(dir, cfg.LockFile)
	lock := flock.New(path)

	var locked bool
	var err error
	if cfg.LockTimeout > 0 {
		lctx, cancel := context.WithTimeout(ctx, cfg.LockTimeout)
		defer cancel()
		locked, err = lock.TryLockContext(lctx, lockRetryDelay)
		if err != nil && ctx.Err() != nil {
			return nil, errors.WithStackTrace(ctx.Err())
		}
	} else {
		locked, err = lock.TryLock()
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, errors.WithStackTraceAndPrefix(err, "lock %s", path)
	}
	if !locked {
		return nil, errors.Errorf("%w: %s", ErrLocked, path)
	}
	return func() { _ = lock.Unlock() }, nil
}
