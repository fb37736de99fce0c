// Package persist implements time-gated persistence of pipeline state:
// an interval gate that snapshots the latest sample row to an append-only
// sink, a CSV row sink, and a continuous EDF recorder.
package persist

import (
	"fmt"
	"time"
)

// Row is one persisted record: a timestamp followed by the latest raw and
// band-filtered value per channel.
type Row struct {
	Timestamp float64
	Values    []float64
}

// RowSink appends rows to durable storage. Implementations must not
// retain row.Values past the call; the caller may reuse the backing
// array for the next row.
type RowSink interface {
	WriteRow(row Row) error
}

// Error wraps a sink failure during a flush. The flush timer is not
// advanced on failure, so the next due tick retries with the row current
// at that tick; rows from skipped intervals are lost by design.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("persist: flush failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Gate writes a row at most once per interval. The first flush is due
// immediately. Gate is not safe for concurrent use; the sampling loop is
// its only caller.
type Gate struct {
	interval time.Duration
	sink     RowSink

	last   time.Time
	primed bool
}

// NewGate returns a gate that flushes to sink at most once per interval.
func NewGate(interval time.Duration, sink RowSink) (*Gate, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("persist: interval %s must be > 0", interval)
	}
	if sink == nil {
		return nil, fmt.Errorf("persist: nil sink")
	}
	return &Gate{interval: interval, sink: sink}, nil
}

// MaybeFlush writes row via the sink if a full interval has elapsed since
// the last successful flush (or if no flush has succeeded yet). It reports
// whether a write happened. The not-yet-due path never fails; a sink
// failure is returned as *Error and does not advance the flush time.
func (g *Gate) MaybeFlush(now time.Time, row Row) (bool, error) {
	if g.primed && now.Sub(g.last) < g.interval {
		return false, nil
	}

	if err := g.sink.WriteRow(row); err != nil {
		return false, &Error{Err: err}
	}

	g.last = now
	g.primed = true
	return true, nil
}
