// Package clock converts wall-clock elapsed time into animation time.
//
// The clock never reads the system time itself: callers feed it elapsed
// durations, which keeps playback deterministic under test.
package clock

import (
	"math"
	"time"
)

// Clock accumulates scaled animation time in seconds.
type Clock struct {
	speed   float64
	elapsed float64
}

// New returns a clock running at speed. Non-positive or non-finite speeds
// fall back to 1.
func New(speed float64) *Clock {
	c := &Clock{}
	c.SetSpeed(speed)
	return c
}

// Advance adds elapsed*speed to the clock and returns the scaled delta.
// Negative durations are ignored.
func (c *Clock) Advance(elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	delta := elapsed.Seconds() * c.speed
	c.elapsed += delta
	return delta
}

// Elapsed is the animation time accumulated since the last reset.
func (c *Clock) Elapsed() float64 {
	return c.elapsed
}

// Set moves the clock to an absolute animation time.
func (c *Clock) Set(seconds float64) {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	c.elapsed = seconds
}

// Reset rewinds the clock to zero.
func (c *Clock) Reset() {
	c.elapsed = 0
}

// Speed returns the current scale factor.
func (c *Clock) Speed() float64 {
	return c.speed
}

// SetSpeed changes the scale factor for subsequent advances.
func (c *Clock) SetSpeed(speed float64) {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed <= 0 {
		speed = 1
	}
	c.speed = speed
}
