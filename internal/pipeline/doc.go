// Package pipeline orchestrates galfit input discovery, per-file
// validation and execution, and batch summary reporting.
//
// Files run sequentially: galfit is single-threaded but memory hungry, and
// fits sharing a directory would contend for its lock anyway. Cancellation
// is checked between files; a running fit is stopped through its context.
package pipeline
