// Package errors wraps errors with stack traces and turns panics in CLI
// actions into ordinary errors.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"
)

// New returns an error carrying the caller's stack trace.
func New(message string) error {
	return goerrors.Wrap(errors.New(message), 1)
}

// Errorf formats an error and attaches the caller's stack trace.
func Errorf(format string, args ...any) error {
	return goerrors.Wrap(fmt.Errorf(format, args...), 1)
}

// WithStackTrace attaches a stack trace to err. A nil err stays nil; an err
// that already carries a trace keeps it.
func WithStackTrace(err error) error {
	if err == nil {
		return nil
	}
	if ContainsStackTrace(err) {
		return err
	}
	return goerrors.Wrap(err, 1)
}

// WithStackTraceAndPrefix is WithStackTrace with a formatted message
// prepended to err's text.
func WithStackTraceAndPrefix(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return goerrors.WrapPrefix(err, fmt.Sprintf(format, args...), 1)
}

// IsError reports whether expected is anywhere in actual's chain.
func IsError(actual, expected error) bool {
	return goerrors.Is(actual, expected)
}

// Is and As re-export the standard library helpers so callers need only
// one errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

// IsContextCanceled reports whether err came from a canceled context.
func IsContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// ContainsStackTrace reports whether any error in err's chain already
// carries a stack trace.
func ContainsStackTrace(err error) bool {
	for err != nil {
		if _, ok := err.(interface{ ErrorStack() string }); ok {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// ErrorStack returns the message and call stack of the innermost traced
// error in err's chain, or just the message when there is none.
func ErrorStack(err error) string {
	if err == nil {
		return ""
	}
	var traced *goerrors.Error
	for e := err; e != nil; e = errors.Unwrap(e) {
		if ge, ok := e.(*goerrors.Error); ok {
			traced = ge
		}
	}
	if traced == nil {
		return err.Error()
	}
	return strings.TrimRight(traced.ErrorStack(), "\n")
}

// ExitCodeError carries the process exit code for an error.
type ExitCodeError struct {
	Err      error
	ExitCode int
}

func (e ExitCodeError) Error() string { return e.Err.Error() }

func (e ExitCodeError) Unwrap() error { return e.Err }

// ErrorWithExitCode attaches an exit code to err.
func ErrorWithExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return ExitCodeError{Err: err, ExitCode: code}
}

// ExitCode returns the exit code attached to err, or fallback.
func ExitCode(err error, fallback int) int {
	var ec ExitCodeError
	if errors.As(err, &ec) {
		return ec.ExitCode
	}
	return fallback
}

// Recover converts a panic into an error passed to onPanic. Call it only
// from a deferred function.
func Recover(onPanic func(cause error)) {
	if rec := recover(); rec != nil {
		err, ok := rec.(error)
		if !ok {
			err = fmt.Errorf("%v", rec)
		}
		onPanic(goerrors.Wrap(err, 2))
	}
}

// WithPanicHandling wraps a cli action so that a panic is returned as an
// error instead of crashing the process.
func WithPanicHandling(action cli.ActionFunc) cli.ActionFunc {
	return func(c *cli.Context) (err error) {
		defer Recover(func(cause error) {
			err = cause
		})
		return action(c)
	}
}

// Append collects errs into a single multi-error; nils are dropped.
func Append(err error, errs ...error) *multierror.Error {
	return multierror.Append(err, errs...)
}

// Flatten returns the individual errors wrapped in a multi-error, or err
// itself as a one-element slice.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.WrappedErrors()
	}
	return []error{err}
}
