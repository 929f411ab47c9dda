// Package tween interpolates the playhead between two frames over time.
//
// A tween is driven either by elapsed wall-clock time (Update) or by an
// explicit progress value (SetProgress), which suits scrubber-style input.
// While a tween is active the player suspends normal frame advancement.
package tween

import (
	"fmt"
	"math"
	"time"

	"github.com/aretw0/kinema/internal/clock"
	"github.com/aretw0/kinema/pkg/domain"
)

// Engine runs at most one tween at a time. It is not safe for concurrent use.
type Engine struct {
	active   bool
	from     float64
	to       float64
	duration float64
	progress float64
	easing   Easing
	clock    *clock.Clock
}

// New returns an idle engine.
func New() *Engine {
	return &Engine{clock: clock.New(1), easing: Linear}
}

// DefaultDuration is the time normal playback would need to cover the
// distance between from and to, in seconds.
func DefaultDuration(from, to, frameRate, speed float64) float64 {
	if frameRate <= 0 || speed <= 0 {
		return 0
	}
	return math.Abs(to-from) / frameRate / speed
}

// Start begins interpolating from -> to over duration seconds. A running
// tween is replaced. A nil easing is linear.
func (e *Engine) Start(from, to, duration float64, easing Easing) error {
	if !finite(from) || !finite(to) {
		return fmt.Errorf("%w: tween frames must be finite", domain.ErrInvalidParameter)
	}
	if !finite(duration) || duration <= 0 {
		return fmt.Errorf("%w: tween duration must be positive, got %v", domain.ErrInvalidParameter, duration)
	}
	if easing == nil {
		easing = Linear
	}
	e.active = true
	e.from, e.to = from, to
	e.duration = duration
	e.progress = 0
	e.easing = easing
	e.clock.Reset()
	return nil
}

// Update advances the tween by elapsed wall-clock time and returns the
// frame to display. done is true on the call that reaches the target.
func (e *Engine) Update(elapsed time.Duration) (frame float64, done bool) {
	if !e.active {
		return e.Frame(), false
	}
	e.clock.Advance(elapsed)
	return e.apply(e.clock.Elapsed() / e.duration)
}

// SetProgress jumps to an explicit progress, clamped to [0,1].
func (e *Engine) SetProgress(p float64) (frame float64, done bool, err error) {
	if math.IsNaN(p) {
		return e.Frame(), false, fmt.Errorf("%w: progress is NaN", domain.ErrInvalidParameter)
	}
	if !e.active {
		return e.Frame(), false, fmt.Errorf("%w: no active tween", domain.ErrInvalidParameter)
	}
	p = clamp01(p)
	e.clock.Set(p * e.duration)
	frame, done = e.apply(p)
	return frame, done, nil
}

func (e *Engine) apply(p float64) (float64, bool) {
	e.progress = clamp01(p)
	frame := e.Frame()
	if e.progress >= 1 {
		e.active = false
		return e.to, true
	}
	return frame, false
}

// Stop cancels the tween where it is. It reports whether a tween was running.
func (e *Engine) Stop() bool {
	if !e.active {
		return false
	}
	e.active = false
	return true
}

// Active reports whether a tween is in progress.
func (e *Engine) Active() bool { return e.active }

// Progress returns the linear progress in [0,1].
func (e *Engine) Progress() float64 { return e.progress }

// Target returns the frame the tween is heading to.
func (e *Engine) Target() float64 { return e.to }

// Frame returns the eased frame for the current progress.
func (e *Engine) Frame() float64 {
	return e.from + (e.to-e.from)*e.easing.Ease(e.progress)
}

func clamp01(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
