package kinema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/kinema/pkg/domain"
)

// LoadAnimationData loads a Lottie JSON document and sizes the render
// target. Any bundle loaded before is released.
func (p *Player) LoadAnimationData(data []byte, width, height uint32) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	p.bundle = nil
	return p.loadDocument(data, "", width, height)
}

// LoadDotLottieData opens a dotLottie bundle and loads its initial
// animation: Config.AnimationID when the manifest lists it, otherwise the
// manifest's initial animation.
func (p *Player) LoadDotLottieData(data []byte, width, height uint32) error {
	p.mu.Lock()
	defer p.unlockAndPublish()

	b, err := p.loader.Open(data)
	if err != nil {
		p.failLoad()
		return err
	}
	p.bundle = b

	m := b.Manifest()
	id := p.controller.Config().AnimationID
	if _, ok := m.Animation(id); !ok {
		id = m.InitialAnimation()
	}
	return p.loadAnimation(id, width, height)
}

// LoadAnimationPath reads path and loads it. Files ending in .lottie are
// opened as bundles, everything else as Lottie JSON.
func (p *Player) LoadAnimationPath(path string, width, height uint32) error {
	data, err := os.ReadFile(path)
	if err != nil {
		p.mu.Lock()
		p.failLoad()
		p.unlockAndPublish()
		return fmt.Errorf("%w: %v", domain.ErrLoad, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".lottie") {
		return p.LoadDotLottieData(data, width, height)
	}
	return p.LoadAnimationData(data, width, height)
}

// LoadAnimation switches to the animation called id, resolved against the
// loaded bundle or the configured source. The render target size is kept.
func (p *Player) LoadAnimation(id string) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	w, h := p.controller.Target()
	return p.loadAnimation(id, w, h)
}

func (p *Player) loadAnimation(id string, width, height uint32) error {
	data, err := p.resolve(domain.EntryAnimation, id)
	if err != nil {
		p.failLoad()
		return err
	}
	if err := p.loadDocument(data, id, width, height); err != nil {
		return err
	}
	p.applyInitialTheme(id)
	return nil
}

// applyInitialTheme activates the bundle's initial theme for id unless a
// theme is already configured, in which case that theme is re-applied to
// the new document.
func (p *Player) applyInitialTheme(id string) {
	themeID := p.theme.ThemeID()
	if themeID == "" && p.bundle != nil {
		if a, ok := p.bundle.Manifest().Animation(id); ok {
			themeID = a.InitialTheme
		}
	}
	if themeID == "" {
		return
	}
	if err := p.setTheme(themeID); err != nil {
		p.logger.Warn("Could not apply theme", "theme", themeID, "animation", id, "err", err)
		return
	}
	p.render()
}

func (p *Player) loadDocument(data []byte, id string, width, height uint32) error {
	if width == 0 || height == 0 {
		p.failLoad()
		return fmt.Errorf("%w: render target %dx%d", domain.ErrInvalidParameter, width, height)
	}
	if err := p.raster.Load(data); err != nil {
		p.failLoad()
		if !errors.Is(err, domain.ErrLoad) {
			err = fmt.Errorf("%w: %v", domain.ErrLoad, err)
		}
		return err
	}
	if err := p.raster.SetTarget(width, height); err != nil {
		p.failLoad()
		return err
	}

	info := p.raster.Info()
	p.tween.Stop()
	p.tweenMarker = ""
	p.controller.Load(info)
	p.controller.SetTarget(width, height)
	p.theme.Declare(info.Slots)
	p.animationID = id
	p.buffer = nil
	p.completed, p.looped = false, false

	cfg := p.controller.Config()
	if err := p.applyRenderConfig(cfg); err != nil {
		p.logger.Warn("Could not configure rasterizer", "err", err)
	}

	p.logger.Debug("Animation loaded", "animation", id, "frames", info.TotalFrames, "duration", info.Duration)
	p.emit(domain.PlayerEvent{Type: domain.PlayerLoad})
	p.render()
	if cfg.Autoplay {
		p.controller.Play()
	}
	return nil
}

// failLoad leaves the player not loaded and queues OnLoadError.
func (p *Player) failLoad() {
	p.unload()
	p.emit(domain.PlayerEvent{Type: domain.PlayerLoadError})
}

func (p *Player) unload() {
	p.controller.Unload()
	p.tween.Stop()
	p.tweenMarker = ""
	p.animationID = ""
	p.buffer = nil
	p.dirty = false
	p.completed, p.looped = false, false
}

// resolve reads an entry from the loaded bundle, falling back to the
// configured source.
func (p *Player) resolve(kind domain.EntryKind, id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty %s id", domain.ErrInvalidParameter, kind)
	}
	var bundleErr error
	if p.bundle != nil {
		var data []byte
		switch kind {
		case domain.EntryAnimation:
			data, bundleErr = p.bundle.Animation(id)
		case domain.EntryTheme:
			data, bundleErr = p.bundle.Theme(id)
		case domain.EntryStateMachine:
			data, bundleErr = p.bundle.StateMachine(id)
		}
		if bundleErr == nil {
			return data, nil
		}
	}
	if p.source != nil {
		switch kind {
		case domain.EntryAnimation:
			return p.source.Animation(id)
		case domain.EntryTheme:
			return p.source.Theme(id)
		case domain.EntryStateMachine:
			return p.source.StateMachine(id)
		}
	}
	if bundleErr != nil {
		return nil, bundleErr
	}
	return nil, fmt.Errorf("%w: no bundle or source to resolve %s %q", domain.ErrNotLoaded, kind, id)
}

// Manifest returns the manifest of the loaded bundle, or nil.
func (p *Player) Manifest() *domain.Manifest {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bundle == nil {
		return nil
	}
	return p.bundle.Manifest()
}

// ActiveAnimationID returns the id of the loaded animation. It is empty for
// documents loaded from raw data.
func (p *Player) ActiveAnimationID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.animationID
}
