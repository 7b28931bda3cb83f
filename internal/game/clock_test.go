package game

import "testing"

func TestClockTick(t *testing.T) {
	var c Clock

	for want := uint64(1); want <= 5; want++ {
		if got := c.Tick(); got != want {
			t.Fatalf("Tick() = %d, want %d", got, want)
		}
	}
	if c.Now() != 5 {
		t.Errorf("Now() = %d, want 5", c.Now())
	}
	if c.Now() != 5 {
		t.Error("Now() must not advance the clock")
	}
}

func TestClockObserve(t *testing.T) {
	var c Clock
	c.Tick()
	c.Tick() // current = 2

	// A timestamp from ahead pulls the clock forward.
	if got := c.Observe(10); got != 11 {
		t.Errorf("Observe(10) = %d, want 11", got)
	}

	// A stale timestamp still advances by one.
	if got := c.Observe(3); got != 12 {
		t.Errorf("Observe(3) = %d, want 12", got)
	}

	// Equal timestamps advance past the merge point.
	if got := c.Observe(12); got != 13 {
		t.Errorf("Observe(12) = %d, want 13", got)
	}
}
