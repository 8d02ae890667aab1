package trace

import "sync/atomic"

// Clock is a monotonic logical clock for ordering trace records.
//
// Every recorded application is stamped with a strictly increasing seq
// number from this clock, so a dumped trace reproduces interception order
// without relying on wall-clock timestamps.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though propagation itself is single-threaded within a call.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
