package padseq

import "sync"

type (
	// Clock is a source of monotonically non-decreasing time in seconds.
	Clock interface {
		Now() float64
	}

	// ManualClock is a Clock that only advances when told to. It is safe for
	// concurrent use.
	ManualClock struct {
		mu  sync.Mutex
		now float64
	}
)

func (c *ManualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t. Attempts to move the clock backwards are ignored.
func (c *ManualClock) Set(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t > c.now {
		c.now = t
	}
}

// Advance moves the clock forward by dt seconds; negative dt is ignored.
func (c *ManualClock) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += dt
}
