package engine

import "sync/atomic"

// Clock is the monotonic logical clock that orders evaluation records.
//
// Every evaluation and outcome is stamped with a strictly increasing seq
// number from this clock; wall-clock time never participates in ordering.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// The Engine serialises evaluations, so in practice one goroutine calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific sequence number.
// Used to resume after the highest seq already in the store.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
