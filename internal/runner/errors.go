package runner

import (
	"errors"
	"regexp"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrFailed = errors.New("galfit failed")
	ErrLocked = errors.New("working directory is locked by another gftool run")
)

// Failure categorizes why a galfit run failed.
type Failure int

const (
	FailNone        Failure = iota
	FailMissingFile         // An input, PSF, sigma, mask or constraint file could not be opened.
	FailPSF                 // galfit rejected the PSF image.
	FailCrash               // galfit died on a signal.
	FailTimeout             // The run exceeded the configured timeout.
	FailCanceled            // The run was interrupted.
	FailLocked              // Another run holds the directory lock.
	FailUnknown
)

var failureNames = [...]string{
	FailNone:        "none",
	FailMissingFile: "missing file",
	FailPSF:         "PSF problem",
	FailCrash:       "crash",
	FailTimeout:     "timeout",
	FailCanceled:    "canceled",
	FailLocked:      "locked",
	FailUnknown:     "unknown",
}

func (f Failure) String() string {
	if f < 0 || int(f) >= len(failureNames) {
		return "unknown"
	}
	return failureNames[f]
}

// Checked in order by Classify; the first match wins.
var (
	reCrash = regexp.MustCompile(
		`(?i)segmentation fault|core dumped|bus error|floating point exception|` +
			`signal: (segmentation|bus|aborted|killed)`)

	reMissingFile = regexp.MustCompile(
		`(?i)(can'?t|cannot|could not|unable to) (open|find|read)|` +
			`does(n'?t| not) exist|no such file`)

	rePSF = regexp.MustCompile(
		`(?i)psf[^\n]*(error|problem|too (small|large|big)|not (found|centered))|` +
			`(error|problem)[^\n]*psf`)
)

// Classify maps galfit's output (and the process error text) from a failed
// run to a Failure category. It never returns FailNone.
func Classify(output string) Failure {
	switch {
	case reCrash.MatchString(output):
		return FailCrash
	case reMissingFile.MatchString(output):
		return FailMissingFile
	case rePSF.MatchString(output):
		return FailPSF
	default:
		return FailUnknown
	}
}
