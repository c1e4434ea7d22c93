package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Stats summarizes handler runs.
type Stats struct {
	Runs      uint64 // every run, including skipped ones
	Succeeded uint64
	Failed    uint64 // returned an error
	Panicked  uint64
	Skipped   uint64 // context was already done
	TimedOut  uint64 // failed with context.DeadlineExceeded

	TotalDuration time.Duration
	AvgDuration   time.Duration
}

// tally accumulates Results. It is safe for concurrent use; a snapshot
// taken while runs are in flight may be slightly inconsistent.
type tally struct {
	runs      atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	skipped   atomic.Uint64
	timedOut  atomic.Uint64
	totalNs   atomic.Int64
}

func (t *tally) record(r Result) {
	t.runs.Add(1)
	t.totalNs.Add(r.Duration.Nanoseconds())

	switch {
	case r.Skipped:
		t.skipped.Add(1)
	case r.Panicked:
		t.panicked.Add(1)
	case r.Error != nil:
		t.failed.Add(1)
		if errors.Is(r.Error, context.DeadlineExceeded) {
			t.timedOut.Add(1)
		}
	default:
		t.succeeded.Add(1)
	}
}

func (t *tally) snapshot() Stats {
	s := Stats{
		Runs:          t.runs.Load(),
		Succeeded:     t.succeeded.Load(),
		Failed:        t.failed.Load(),
		Panicked:      t.panicked.Load(),
		Skipped:       t.skipped.Load(),
		TimedOut:      t.timedOut.Load(),
		TotalDuration: time.Duration(t.totalNs.Load()),
	}
	// Skipped runs take no time and would drag the mean down.
	if executed := s.Runs - s.Skipped; executed > 0 {
		s.AvgDuration = s.TotalDuration / time.Duration(executed)
	}
	return s
}
