// Package galfit reads, edits and writes galfit input files.
//
// A galfit input file is a list of "KEY) value # comment" lines. Keys A to
// P form the header (images, fit region, run mode); a "0)" line starts a
// model component and the lines after it, up to the next "0)", are that
// component's parameters. Everything else is comment and is ignored on
// load.
//
// Parameter values are kept as the text found in the file so that a
// load/save cycle does not reformat numbers. Header values are typed.
//
// Paths in the file are relative to the directory galfit runs in, which
// is the directory of the file. File.Workdir records it, and PathOf,
// SetPath and ChDir translate between that directory and the caller's.
package galfit
