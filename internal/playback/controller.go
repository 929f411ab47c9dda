// Package playback implements the frame-advancing state machine of the player.
//
// A Controller owns the active segment, direction, loop counter and current
// frame. It is driven by Tick/RequestFrame and never renders by itself; every
// observable change is queued as a domain.PlayerEvent and handed out by Drain.
package playback

import (
	"math"
	"time"

	"github.com/aretw0/kinema/internal/clock"
	"github.com/aretw0/kinema/pkg/domain"
)

// Status is the playback lifecycle position.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPlaying   Status = "playing"
	StatusPaused    Status = "paused"
	StatusStopped   Status = "stopped"
	StatusCompleted Status = "completed"
)

type direction int

const (
	forward direction = 1
	reverse direction = -1
)

// Step is the outcome of RequestFrame.
type Step struct {
	Frame     float64
	Changed   bool // Frame differs from the current frame
	Looped    bool // a full cycle ended on this step
	Completed bool // playback ended on this step
}

// Controller advances the current frame across the active segment.
// It is not safe for concurrent use.
type Controller struct {
	config domain.Config
	info   domain.DocumentInfo
	loaded bool

	status   Status
	frame    float64
	start    float64
	end      float64
	dir      direction
	loops    uint32
	clock    *clock.Clock
	width    uint32
	height   uint32
	viewport [4]int32
	outbox   []domain.PlayerEvent
}

// New returns an unloaded controller using cfg.
func New(cfg domain.Config) *Controller {
	return &Controller{
		config: cfg,
		status: StatusIdle,
		dir:    forward,
		clock:  clock.New(cfg.Speed),
	}
}

// Load resets all playback state for a newly loaded document.
func (c *Controller) Load(info domain.DocumentInfo) {
	c.info = info
	c.loaded = true
	c.status = StatusIdle
	c.loops = 0
	c.resolveSegment()
	c.rewind()
}

// Unload forgets the document. Subsequent calls behave as not loaded.
func (c *Controller) Unload() {
	c.loaded = false
	c.info = domain.DocumentInfo{}
	c.status = StatusIdle
	c.frame, c.start, c.end, c.loops = 0, 0, 0, 0
	c.clock.Reset()
}

// IsLoaded reports whether a document is loaded.
func (c *Controller) IsLoaded() bool { return c.loaded }

// Config returns the active configuration.
func (c *Controller) Config() domain.Config { return c.config }

// SetConfig swaps the configuration. The loop counter restarts and the
// current frame is clamped into the new segment.
func (c *Controller) SetConfig(cfg domain.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	modeChanged := cfg.Mode != c.config.Mode
	c.config = cfg
	c.clock.SetSpeed(cfg.Speed)
	c.loops = 0
	if !c.loaded {
		return nil
	}

	c.resolveSegment()
	if modeChanged {
		c.dir = initialDirection(cfg.Mode)
	}
	clamped := math.Min(math.Max(c.frame, c.start), c.end)
	if clamped != c.frame {
		c.frame = clamped
		c.emit(domain.PlayerEvent{Type: domain.PlayerFrame, Frame: clamped})
	}
	c.syncClock()
	return nil
}

// Status returns the lifecycle position.
func (c *Controller) Status() Status { return c.status }

// IsPlaying reports whether ticks advance the frame.
func (c *Controller) IsPlaying() bool { return c.status == StatusPlaying }

// IsComplete reports whether playback ran to its end.
func (c *Controller) IsComplete() bool { return c.status == StatusCompleted }

// CurrentFrame returns the displayed frame.
func (c *Controller) CurrentFrame() float64 { return c.frame }

// LoopCount returns the number of full cycles completed since the last reset.
func (c *Controller) LoopCount() uint32 { return c.loops }

// Segment returns the active [start,end] frame range.
func (c *Controller) Segment() (float64, float64) { return c.start, c.end }

// Info returns the loaded document description.
func (c *Controller) Info() domain.DocumentInfo { return c.info }

// Tick advances the clock by elapsed*speed. It does nothing unless playing.
func (c *Controller) Tick(elapsed time.Duration) {
	if c.loaded && c.status == StatusPlaying {
		c.clock.Advance(elapsed)
	}
}

// RequestFrame computes the frame to display for the current clock. Loop and
// direction bookkeeping happen here; the frame itself is applied with
// SetFrame so that callers can skip redundant renders when !Changed.
func (c *Controller) RequestFrame() Step {
	if !c.loaded || c.status != StatusPlaying {
		return Step{Frame: c.frame}
	}

	span := c.end - c.start
	cycle := c.cycleDuration()
	if span <= 0 || cycle <= 0 {
		return Step{Frame: c.frame}
	}

	raw := c.clock.Elapsed() / cycle * span
	next := c.start + raw
	if c.dir == reverse {
		next = c.end - raw
	}
	next = c.round(next)
	next = math.Min(math.Max(next, c.start), c.end)

	step := Step{Frame: next}
	switch c.config.Mode {
	case domain.ModeForward:
		if next >= c.end {
			step.Frame = c.end
			c.boundary(&step)
		}
	case domain.ModeReverse:
		if next <= c.start {
			step.Frame = c.start
			c.boundary(&step)
		}
	case domain.ModeBounce, domain.ModeReverseBounce:
		origin := initialDirection(c.config.Mode)
		switch {
		case c.dir == forward && next >= c.end:
			step.Frame = c.end
			c.turn(origin, &step)
		case c.dir == reverse && next <= c.start:
			step.Frame = c.start
			c.turn(origin, &step)
		}
	}

	step.Changed = step.Frame != c.frame
	return step
}

// turn flips direction at a segment edge. Returning to the origin edge
// closes a bounce cycle.
func (c *Controller) turn(origin direction, step *Step) {
	if c.dir == origin {
		c.dir = -c.dir
		c.clock.Reset()
		return
	}
	c.boundary(step)
	if !step.Completed {
		c.dir = origin
	}
}

// boundary handles the end of a full cycle: loop or complete.
func (c *Controller) boundary(step *Step) {
	if c.shouldLoop() {
		c.loops++
		c.clock.Reset()
		step.Looped = true
		if c.config.LoopCount == 0 || c.loops < c.config.LoopCount {
			return
		}
	}
	c.status = StatusCompleted
	step.Completed = true
}

func (c *Controller) shouldLoop() bool {
	if !c.config.Loop {
		return false
	}
	return c.config.LoopCount == 0 || c.loops < c.config.LoopCount
}

// Finish queues the loop and completion notifications of a step. Callers
// invoke it after rendering so that render precedes loop/complete.
func (c *Controller) Finish(step Step) {
	if step.Looped {
		c.emit(domain.PlayerEvent{Type: domain.PlayerLoop, Loop: c.loops})
	}
	if step.Completed {
		c.emit(domain.PlayerEvent{Type: domain.PlayerComplete})
	}
}

// SetFrame displays frame n without moving the clock. It fails for
// non-finite values and for frames outside the active segment.
func (c *Controller) SetFrame(n float64) bool {
	if !c.loaded || math.IsNaN(n) || math.IsInf(n, 0) {
		return false
	}
	if n < c.start || n > c.end {
		return false
	}
	c.frame = n
	c.emit(domain.PlayerEvent{Type: domain.PlayerFrame, Frame: n})
	return true
}

// Seek is SetFrame followed by moving the clock so that playback continues
// from n.
func (c *Controller) Seek(n float64) bool {
	if !c.SetFrame(n) {
		return false
	}
	c.syncClock()
	return true
}

// SetProgress seeks to a fraction of the active segment.
func (c *Controller) SetProgress(p float64) bool {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return false
	}
	return c.Seek(c.start + p*(c.end-c.start))
}

// Play starts or resumes playback. From Stopped or Completed it restarts at
// the segment origin.
func (c *Controller) Play() bool {
	if !c.loaded || c.status == StatusPlaying {
		return false
	}
	if c.status == StatusCompleted || c.status == StatusStopped {
		if c.status == StatusCompleted {
			c.loops = 0
		}
		c.rewind()
		c.emit(domain.PlayerEvent{Type: domain.PlayerFrame, Frame: c.frame})
	} else {
		c.syncClock()
	}
	c.status = StatusPlaying
	c.emit(domain.PlayerEvent{Type: domain.PlayerPlay})
	return true
}

// Pause freezes playback; the loop counter is kept.
func (c *Controller) Pause() bool {
	if !c.loaded || c.status != StatusPlaying {
		return false
	}
	c.status = StatusPaused
	c.emit(domain.PlayerEvent{Type: domain.PlayerPause})
	return true
}

// Stop rewinds to the segment origin and clears the loop counter.
func (c *Controller) Stop() bool {
	if !c.loaded || c.status == StatusStopped {
		return false
	}
	c.status = StatusStopped
	c.loops = 0
	prev := c.frame
	c.rewind()
	if prev != c.frame {
		c.emit(domain.PlayerEvent{Type: domain.PlayerFrame, Frame: c.frame})
	}
	c.emit(domain.PlayerEvent{Type: domain.PlayerStop})
	return true
}

// SetTarget records the render target size. Frame and mode state are untouched.
func (c *Controller) SetTarget(width, height uint32) bool {
	if width == 0 || height == 0 {
		return false
	}
	c.width, c.height = width, height
	c.viewport = [4]int32{0, 0, int32(width), int32(height)}
	return true
}

// Target returns the render target size.
func (c *Controller) Target() (uint32, uint32) { return c.width, c.height }

// SetViewport restricts rendering to a sub-rectangle of the target.
func (c *Controller) SetViewport(x, y, w, h int32) bool {
	if w <= 0 || h <= 0 {
		return false
	}
	c.viewport = [4]int32{x, y, w, h}
	return true
}

// Viewport returns x, y, width and height of the viewport.
func (c *Controller) Viewport() [4]int32 { return c.viewport }

// Emit queues a notification produced outside the controller (e.g. render).
func (c *Controller) Emit(e domain.PlayerEvent) { c.emit(e) }

// Drain returns and clears the queued notifications.
func (c *Controller) Drain() []domain.PlayerEvent {
	out := c.outbox
	c.outbox = nil
	return out
}

func (c *Controller) emit(e domain.PlayerEvent) {
	c.outbox = append(c.outbox, e)
}

// resolveSegment applies marker > explicit segment > full range.
func (c *Controller) resolveSegment() {
	last := c.info.LastFrame()
	c.start, c.end = 0, last

	if c.config.Marker != "" {
		if m, ok := domain.FindMarker(c.info.Markers, c.config.Marker); ok {
			c.start, c.end = m.Segment(c.info.TotalFrames)
			return
		}
	}
	if c.config.HasSegment() {
		c.start = math.Max(0, c.config.Segment[0])
		c.end = math.Min(last, c.config.Segment[1])
		if c.start > c.end {
			c.start, c.end = 0, last
		}
	}
}

// rewind moves to the mode's origin edge with a fresh clock.
func (c *Controller) rewind() {
	c.dir = initialDirection(c.config.Mode)
	c.frame = c.start
	if c.dir == reverse {
		c.frame = c.end
	}
	c.clock.Reset()
}

// syncClock moves the clock to the time at which the current frame is shown
// in the current direction.
func (c *Controller) syncClock() {
	span := c.end - c.start
	if span <= 0 {
		c.clock.Reset()
		return
	}
	progress := (c.frame - c.start) / span
	if c.dir == reverse {
		progress = (c.end - c.frame) / span
	}
	c.clock.Set(progress * c.cycleDuration())
}

// cycleDuration is the unscaled time needed to cross the segment once.
func (c *Controller) cycleDuration() float64 {
	if c.info.TotalFrames <= 0 {
		return 0
	}
	return c.info.Duration * (c.end - c.start) / c.info.TotalFrames
}

func (c *Controller) round(f float64) float64 {
	if c.config.UseFrameInterpolation {
		return math.Round(f*1000) / 1000
	}
	return math.Round(f)
}

func initialDirection(m domain.Mode) direction {
	if m.StartsReversed() {
		return reverse
	}
	return forward
}
