package kinema

import "github.com/aretw0/kinema/pkg/domain"

// SetTheme applies the theme called id from the bundle or source. An empty
// id resets the theme.
func (p *Player) SetTheme(id string) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	if id == "" {
		p.resetTheme()
		return nil
	}
	if err := p.setTheme(id); err != nil {
		return err
	}
	p.render()
	return nil
}

func (p *Player) setTheme(id string) error {
	data, err := p.resolve(domain.EntryTheme, id)
	if err != nil {
		return err
	}
	return p.applyThemeData(data, id)
}

// SetThemeData applies a theme document given inline.
func (p *Player) SetThemeData(data string) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	if err := p.applyThemeData([]byte(data), ""); err != nil {
		return err
	}
	p.render()
	return nil
}

func (p *Player) applyThemeData(data []byte, id string) error {
	theme, err := p.parser.ParseTheme(data)
	if err != nil {
		return err
	}
	if id != "" {
		theme.ID = id
	}
	if err := p.theme.Apply(*theme, p.animationID); err != nil {
		return err
	}
	p.dirty = true
	p.logger.Debug("Theme applied", "theme", theme.ID, "slots", p.theme.Slots())
	return nil
}

// ResetTheme removes the active theme and any slot data set with SetSlots.
func (p *Player) ResetTheme() {
	p.mu.Lock()
	defer p.unlockAndPublish()
	p.resetTheme()
}

func (p *Player) resetTheme() {
	p.theme.Reset()
	p.dirty = true
	p.render()
}

// ActiveThemeID returns the id of the active theme, or "".
func (p *Player) ActiveThemeID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.theme.ThemeID()
}

// SetSlots replaces the direct slot overrides with a JSON object mapping
// slot ids to {type, value|keyframes}. Validation fails closed. Unknown
// slot ids are ignored.
func (p *Player) SetSlots(data string) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.setSlots(data)
}

func (p *Player) setSlots(data string) error {
	if err := p.theme.SetSlots([]byte(data)); err != nil {
		return err
	}
	p.dirty = true
	p.render()
	return nil
}

// ClearSlots drops every direct slot override.
func (p *Player) ClearSlots() {
	p.mu.Lock()
	defer p.unlockAndPublish()
	p.theme.ClearSlots()
	p.dirty = true
	p.render()
}
