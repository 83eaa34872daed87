// Package clock provides the countdown that drives a typing session.
package clock

// DefaultDurationSeconds is the session length used when none is configured.
const DefaultDurationSeconds = 30

// Countdown counts whole seconds down to zero. It does not keep time on its
// own; a driver calls Tick once per second.
type Countdown struct {
	duration  int
	remaining int
	running   bool
	expired   bool
}

// Start resets the countdown to seconds and begins counting. It panics when
// seconds is not positive.
func (c *Countdown) Start(seconds int) {
	if seconds <= 0 {
		panic("clock: duration must be positive")
	}
	c.duration = seconds
	c.remaining = seconds
	c.running = true
	c.expired = false
}

// Tick decrements the remaining time and reports whether this tick expired
// the countdown. Expiry is reported once per Start.
func (c *Countdown) Tick() bool {
	if !c.running || c.remaining <= 0 {
		return false
	}
	c.remaining--
	if c.remaining == 0 {
		c.running = false
		c.expired = true
		return true
	}
	return false
}

// Cancel stops the countdown without expiring it.
func (c *Countdown) Cancel() {
	c.running = false
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int {
	return c.remaining
}

// Elapsed returns the seconds counted since Start.
func (c *Countdown) Elapsed() int {
	return c.duration - c.remaining
}

// Duration returns the length passed to the last Start.
func (c *Countdown) Duration() int {
	return c.duration
}

// Running reports whether ticks still decrement.
func (c *Countdown) Running() bool {
	return c.running
}

// Expired reports whether the countdown reached zero.
func (c *Countdown) Expired() bool {
	return c.expired
}
