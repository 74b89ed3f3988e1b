// Package runner builds and executes galfit command lines.
//
// galfit reads its input file from, and writes fit.log, galfit.NN and the
// output image block into, its working directory. Execute therefore runs
// galfit in the input file's directory and holds an advisory file lock there
// so that two gftool processes never fit in the same directory at once.
//
// Failures are classified from galfit's combined output into a small set of
// categories (missing file, PSF problem, crash, timeout) for reporting.
package runner
