package kinema

import (
	"math"
	"time"

	"github.com/aretw0/kinema/internal/playback"
	"github.com/aretw0/kinema/pkg/domain"
)

// Tick advances playback by elapsed wall-clock time and renders when the
// displayed frame changed. While a tween runs it is authoritative and normal
// advancement is suspended. Tick reports whether a frame was rendered.
func (p *Player) Tick(elapsed time.Duration) bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.tick(elapsed)
}

func (p *Player) tick(elapsed time.Duration) bool {
	if !p.controller.IsLoaded() {
		return false
	}
	if p.tween.Active() {
		frame, done := p.tween.Update(elapsed)
		p.emit(domain.PlayerEvent{Type: domain.PlayerFrame, Frame: frame})
		if done {
			p.finishTween(frame)
		}
		return p.render()
	}

	p.controller.Tick(elapsed)
	step := p.controller.RequestFrame()
	if step.Changed {
		p.controller.SetFrame(step.Frame)
	}
	rendered := false
	if step.Changed || p.dirty {
		rendered = p.render()
	}
	p.controller.Finish(step)
	if p.machine.Status() == domain.MachineRunning {
		p.looped = p.looped || step.Looped
		p.completed = p.completed || step.Completed
	}
	return rendered
}

// Render paints the displayed frame into the buffer.
func (p *Player) Render() bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.render()
}

func (p *Player) render() bool {
	if !p.controller.IsLoaded() {
		return false
	}
	frame := p.displayFrame()
	if err := p.raster.SetSlots(p.theme.Evaluate(frame)); err != nil {
		p.logger.Warn("Could not apply slots", "frame", frame, "err", err)
	}
	buf, err := p.raster.Render(frame)
	if err != nil {
		p.logger.Warn("Render failed", "frame", frame, "err", err)
		return false
	}
	p.buffer = buf
	p.dirty = false
	p.emit(domain.PlayerEvent{Type: domain.PlayerRender, Frame: frame})
	return true
}

func (p *Player) displayFrame() float64 {
	if p.tween.Active() {
		return p.tween.Frame()
	}
	return p.controller.CurrentFrame()
}

// Buffer returns the last rendered frame as 0xAARRGGBB pixels, row-major.
// The slice is owned by the player; it is invalidated by Resize and by
// every load.
func (p *Player) Buffer() []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer
}

// Play starts or resumes playback.
func (p *Player) Play() bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.controller.Play()
}

// Pause freezes playback. The loop counter is kept.
func (p *Player) Pause() bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.controller.Pause()
}

// Stop rewinds to the segment origin and clears the loop counter. A running
// tween is cancelled first.
func (p *Player) Stop() bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.stop()
}

func (p *Player) stop() bool {
	p.cancelTween()
	if !p.controller.Stop() {
		return false
	}
	p.render()
	return true
}

// SetFrame displays frame n. It fails for non-finite frames and frames
// outside the active segment, changing nothing.
func (p *Player) SetFrame(n float64) bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.setFrame(n)
}

func (p *Player) setFrame(n float64) bool {
	if !p.controller.SetFrame(n) {
		return false
	}
	p.render()
	return true
}

// Seek is SetFrame that also moves the playback clock, so playback
// continues from n.
func (p *Player) Seek(n float64) bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	if !p.controller.Seek(n) {
		return false
	}
	p.render()
	return true
}

// SetProgress seeks to a fraction in [0,1] of the active segment.
func (p *Player) SetProgress(progress float64) bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.setProgress(progress)
}

func (p *Player) setProgress(progress float64) bool {
	if !p.controller.SetProgress(progress) {
		return false
	}
	p.render()
	return true
}

// Resize changes the render target. Frame and mode state are untouched.
func (p *Player) Resize(width, height uint32) bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	if !p.controller.SetTarget(width, height) {
		return false
	}
	if err := p.raster.SetTarget(width, height); err != nil {
		p.logger.Warn("Could not resize", "width", width, "height", height, "err", err)
		return false
	}
	p.buffer = nil
	p.dirty = true
	p.render()
	return true
}

// SetViewport restricts rendering and hit-testing to a sub-rectangle of
// the target.
func (p *Player) SetViewport(x, y, width, height int32) bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	if !p.controller.SetViewport(x, y, width, height) {
		return false
	}
	if err := p.raster.SetViewport(x, y, width, height); err != nil {
		p.logger.Warn("Could not set viewport", "err", err)
		return false
	}
	p.dirty = true
	return true
}

// Config returns the active configuration.
func (p *Player) Config() domain.Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.config()
}

// config overlays the theme and animation that are actually active.
func (p *Player) config() domain.Config {
	cfg := p.controller.Config()
	cfg.ThemeID = p.theme.ThemeID()
	cfg.AnimationID = p.animationID
	return cfg
}

// SetConfig replaces the configuration wholesale. The loop counter
// restarts. Changing ThemeID applies or resets the theme; changing
// AnimationID loads that animation from the bundle or source.
func (p *Player) SetConfig(cfg domain.Config) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.setConfig(cfg)
}

func (p *Player) setConfig(cfg domain.Config) error {
	if err := p.controller.SetConfig(cfg); err != nil {
		return err
	}
	if err := p.applyRenderConfig(cfg); err != nil {
		p.logger.Warn("Could not configure rasterizer", "err", err)
	}

	if cfg.AnimationID != "" && cfg.AnimationID != p.animationID && (p.bundle != nil || p.source != nil) {
		w, h := p.controller.Target()
		if err := p.loadAnimation(cfg.AnimationID, w, h); err != nil {
			return err
		}
	}
	if cfg.ThemeID != p.theme.ThemeID() {
		if cfg.ThemeID == "" {
			p.theme.Reset()
		} else if err := p.setTheme(cfg.ThemeID); err != nil {
			return err
		}
	}
	p.dirty = true
	p.render()
	return nil
}

func (p *Player) applyRenderConfig(cfg domain.Config) error {
	if err := p.raster.SetLayout(cfg.Layout); err != nil {
		return err
	}
	return p.raster.SetBackground(cfg.BackgroundColor)
}

// HitTest reports whether the canvas pixel (x, y) lies on layer at the last
// rendered frame. Coordinates pass through the inverse layout transform.
func (p *Player) HitTest(layer string, x, y float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hitTest(layer, x, y)
}

func (p *Player) hitTest(layer string, x, y float64) bool {
	if !p.controller.IsLoaded() {
		return false
	}
	info := p.controller.Info()
	vp := p.controller.Viewport()
	px, py, ok := p.controller.Config().Layout.ToPicture(
		x-float64(vp[0]), y-float64(vp[1]),
		float64(vp[2]), float64(vp[3]),
		info.Width, info.Height,
	)
	return ok && p.raster.HitTest(layer, px, py)
}

// LayerBounds returns x, y, width and height of layer in picture space.
func (p *Player) LayerBounds(layer string) ([4]float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.controller.IsLoaded() {
		return [4]float64{}, false
	}
	return p.raster.LayerBounds(layer)
}

// IsLoaded reports whether a document is loaded.
func (p *Player) IsLoaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controller.IsLoaded()
}

// Status returns the playback lifecycle position.
func (p *Player) Status() playback.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controller.Status()
}

func (p *Player) IsPlaying() bool  { return p.Status() == playback.StatusPlaying }
func (p *Player) IsPaused() bool   { return p.Status() == playback.StatusPaused }
func (p *Player) IsStopped() bool  { return p.Status() == playback.StatusStopped }
func (p *Player) IsComplete() bool { return p.Status() == playback.StatusCompleted }

// CurrentFrame returns the displayed frame, including mid-tween frames.
func (p *Player) CurrentFrame() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayFrame()
}

// LoopCount returns the loops completed since the last reset.
func (p *Player) LoopCount() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controller.LoopCount()
}

// Segment returns the active frame range.
func (p *Player) Segment() (start, end float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controller.Segment()
}

// Info describes the loaded document.
func (p *Player) Info() domain.DocumentInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controller.Info()
}

// TotalFrames returns the document frame count.
func (p *Player) TotalFrames() float64 { return p.Info().TotalFrames }

// Duration returns the document duration in seconds.
func (p *Player) Duration() float64 { return p.Info().Duration }

// Framerate returns the frames per second implied by the document.
func (p *Player) Framerate() float64 { return p.Info().FrameRate() }

// Markers returns the document markers.
func (p *Player) Markers() []domain.Marker {
	markers := p.Info().Markers
	out := make([]domain.Marker, len(markers))
	copy(out, markers)
	return out
}

// Viewport returns x, y, width and height of the viewport.
func (p *Player) Viewport() [4]int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controller.Viewport()
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
