package roster

import "sync/atomic"

// Sequencer hands out join ordinals. Implemented by Clock (production)
// and testutil.DeterministicClock (tests).
type Sequencer interface {
	Next() int64
}

// Clock is a monotonic logical clock for join order.
//
// Join order decides per-tier ordinals (which layout-9 corner a tier-1
// member gets), so it must never depend on wall time.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1; the
// local occupant keeps ordinal 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}
