package kinema

import (
	"math"
	"time"

	"github.com/aretw0/kinema/internal/tween"
	"github.com/aretw0/kinema/pkg/domain"
)

// Tween interpolates from the displayed frame to frame to. duration is in
// wall-clock seconds and is not scaled by Config.Speed. A duration of zero
// or less uses the time playback at the current speed would need. A nil
// easing is linear, and curves whose x handles leave [0,1] are rejected.
func (p *Player) Tween(to, duration float64, easing []float64) bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	ease, err := tween.Parse(easing, "")
	if err != nil {
		p.logger.Debug("Tween rejected", "err", err)
		return false
	}
	return p.startTween(to, duration, ease, "")
}

// TweenPreset is Tween with a named easing curve such as "out-cubic".
func (p *Player) TweenPreset(to, duration float64, preset string) bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	ease, err := tween.Parse(nil, preset)
	if err != nil {
		p.logger.Debug("Tween rejected", "err", err)
		return false
	}
	return p.startTween(to, duration, ease, "")
}

// TweenToMarker tweens to the start of marker and makes it the active
// segment once the tween lands.
func (p *Player) TweenToMarker(marker string, duration float64, easing []float64) bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.tweenToMarker(marker, duration, easing)
}

func (p *Player) tweenToMarker(marker string, duration float64, easing []float64) bool {
	info := p.controller.Info()
	m, ok := domain.FindMarker(info.Markers, marker)
	if !ok {
		return false
	}
	ease, err := tween.Parse(easing, "")
	if err != nil {
		p.logger.Debug("Tween rejected", "marker", marker, "err", err)
		return false
	}
	start, _ := m.Segment(info.TotalFrames)
	return p.startTween(start, duration, ease, m.Name)
}

func (p *Player) startTween(to, duration float64, ease tween.Easing, marker string) bool {
	if !p.controller.IsLoaded() || !finite(to) {
		return false
	}
	info := p.controller.Info()
	if to < 0 || to > info.LastFrame() {
		return false
	}
	from := p.displayFrame()
	if duration <= 0 {
		duration = tween.DefaultDuration(from, to, info.FrameRate(), p.controller.Config().Speed)
	}
	p.tweenMarker = marker
	if duration <= 0 {
		// Nothing to interpolate.
		p.tween.Stop()
		p.finishTween(to)
		p.render()
		return true
	}
	if err := p.tween.Start(from, to, duration, ease); err != nil {
		p.tweenMarker = ""
		p.logger.Debug("Tween rejected", "err", err)
		return false
	}
	return true
}

// TweenUpdate sets the tween progress explicitly, clamped to [0,1], and
// renders. It reports false when no tween is running.
func (p *Player) TweenUpdate(progress float64) bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	frame, done, err := p.tween.SetProgress(progress)
	if err != nil {
		return false
	}
	p.emit(domain.PlayerEvent{Type: domain.PlayerFrame, Frame: frame})
	if done {
		p.finishTween(frame)
	}
	p.render()
	return true
}

// TweenAdvance moves the tween by elapsed wall-clock time without touching
// normal playback.
func (p *Player) TweenAdvance(elapsed time.Duration) bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	if !p.tween.Active() {
		return false
	}
	return p.tick(elapsed)
}

// TweenStop cancels the tween. The displayed frame stays where it is when
// it lies within the active segment. It is idempotent.
func (p *Player) TweenStop() bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.cancelTween()
}

func (p *Player) cancelTween() bool {
	if !p.tween.Active() {
		return false
	}
	frame := p.tween.Frame()
	p.tween.Stop()
	p.tweenMarker = ""
	p.controller.Seek(frame)
	p.resumeMachine()
	return true
}

// IsTweening reports whether a tween is in progress.
func (p *Player) IsTweening() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tween.Active()
}

// finishTween hands control back to normal playback at target.
func (p *Player) finishTween(target float64) {
	if p.tweenMarker != "" {
		cfg := p.controller.Config()
		cfg.Marker = p.tweenMarker
		p.tweenMarker = ""
		if err := p.controller.SetConfig(cfg); err != nil {
			p.logger.Warn("Could not activate marker", "marker", cfg.Marker, "err", err)
		}
	}
	start, end := p.controller.Segment()
	p.controller.Seek(math.Min(math.Max(target, start), end))
	p.dirty = true
	p.resumeMachine()
}

func (p *Player) resumeMachine() {
	if p.machine.Status() != domain.MachineTweening {
		return
	}
	if err := p.machine.ResumeFromTween(); err != nil {
		p.logger.Warn("State machine could not resume after tween", "err", err)
	}
}
