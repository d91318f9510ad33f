package combat

// Countdown is a simulation-time timer. It advances only when the owner feeds
// it elapsed time, so it scales with any fast-forward applied to the tick.
type Countdown struct {
	remaining float64
}

// NewCountdown returns a countdown that expires after seconds of simulation time.
//
// Precondition: seconds >= 0.
func NewCountdown(seconds float64) Countdown {
	return Countdown{remaining: seconds}
}

// Advance consumes dt seconds and reports whether the countdown has expired.
//
// Postcondition: once Advance returns true it returns true on every later call.
func (c *Countdown) Advance(dt float64) bool {
	if c.remaining > 0 {
		c.remaining -= dt
	}
	return c.remaining <= 0
}

// Expired reports whether the countdown has run out.
func (c Countdown) Expired() bool { return c.remaining <= 0 }

// Remaining returns the simulation time left, never below zero.
func (c Countdown) Remaining() float64 {
	if c.remaining < 0 {
		return 0
	}
	return c.remaining
}

