package game

// Clock is a per-room Lamport counter. It orders causally related events
// within one room: every server-emitted frame and every accepted answer is
// stamped with it, and client-echoed timestamps are merged back through
// Observe so answer order survives unreliable wall clocks.
//
// Clock is not safe for concurrent use; callers hold the owning room's lock.
type Clock struct {
	current uint64
}

// Tick advances the clock by one and returns the new value.
func (c *Clock) Tick() uint64 {
	c.current++
	return c.current
}

// Observe merges a timestamp seen by a client: the clock jumps to
// max(current, seen)+1 and returns the new value.
func (c *Clock) Observe(seen uint64) uint64 {
	if seen > c.current {
		c.current = seen
	}
	c.current++
	return c.current
}

// Now returns the current value without advancing.
func (c *Clock) Now() uint64 {
	return c.current
}
