package scene

import "time"

// Clock measures frame deltas. MaxDelta caps a single step so a stall does
// not fast-forward animations.
type Clock struct {
	MaxDelta float64

	now  func() time.Time
	last time.Time
}

// NewClock starts a clock; now may be nil to use the wall clock.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{MaxDelta: 0.25, now: now, last: now()}
}

// Tick returns the seconds since the previous Tick.
func (c *Clock) Tick() float64 {
	t := c.now()
	d := t.Sub(c.last).Seconds()
	c.last = t
	if d < 0 {
		return 0
	}
	if c.MaxDelta > 0 && d > c.MaxDelta {
		return c.MaxDelta
	}
	return d
}
