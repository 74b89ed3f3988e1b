package pipeline

import "time"

// RunStats tracks aggregate counters across a batch run.
type RunStats struct {
	Total     int
	Current   int
	Succeeded int
	Skipped   int
	Failed    int
	// Fitting is the summed galfit wall time.
	Fitting time.Duration
}

// OK reports whether no file failed.
func (s *RunStats) OK() bool { return s.Failed == 0 }
