package kinema

import "github.com/aretw0/kinema/pkg/domain"

// host is the Player as seen by the state machine. Every method runs with
// the player lock already held by the caller.
type host struct {
	p *Player
}

func (h host) Config() domain.Config                   { return h.p.config() }
func (h host) ActiveAnimationID() string               { return h.p.animationID }
func (h host) Play() bool                              { return h.p.controller.Play() }
func (h host) Pause() bool                             { return h.p.controller.Pause() }
func (h host) Stop() bool                              { return h.p.stop() }
func (h host) SetFrame(frame float64) bool             { return h.p.setFrame(frame) }
func (h host) SetProgress(progress float64) bool       { return h.p.setProgress(progress) }
func (h host) SetSlots(data string) error              { return h.p.setSlots(data) }
func (h host) HitTest(layer string, x, y float64) bool { return h.p.hitTest(layer, x, y) }

// SetConfig applies a state's playback settings. Completions of the
// previous playback no longer count.
func (h host) SetConfig(cfg domain.Config) error {
	h.p.completed, h.p.looped = false, false
	return h.p.setConfig(cfg)
}

func (h host) LoadAnimation(id string) error {
	w, ht := h.p.controller.Target()
	return h.p.loadAnimation(id, w, ht)
}

func (h host) TweenToMarker(marker string, duration float64, easing []float64) bool {
	return h.p.tweenToMarker(marker, duration, easing)
}

func (h host) SetTheme(id string) error {
	if err := h.p.setTheme(id); err != nil {
		return err
	}
	h.p.render()
	return nil
}

func (h host) ResetTheme() { h.p.resetTheme() }
