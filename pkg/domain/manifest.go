package domain

import (
	"encoding/json"
	"fmt"
)

// Manifest describes the content of a dotLottie bundle.
type Manifest struct {
	Version       string              `json:"version,omitempty" yaml:"version,omitempty"`
	Generator     string              `json:"generator,omitempty" yaml:"generator,omitempty"`
	Initial       *ManifestInitial    `json:"initial,omitempty" yaml:"initial,omitempty"`
	Animations    []ManifestAnimation `json:"animations" yaml:"animations"`
	Themes        []ManifestEntry     `json:"themes,omitempty" yaml:"themes,omitempty"`
	StateMachines []ManifestEntry     `json:"state_machines,omitempty" yaml:"state_machines,omitempty"`
}

// ManifestInitial names what the player should load first.
type ManifestInitial struct {
	Animation    string `json:"animation,omitempty" yaml:"animation,omitempty"`
	StateMachine string `json:"state_machine,omitempty" yaml:"state_machine,omitempty"`
}

// ManifestAnimation describes one animation of the bundle.
type ManifestAnimation struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	InitialTheme string   `json:"initial_theme,omitempty" yaml:"initial_theme,omitempty"`
	Themes       []string `json:"themes,omitempty" yaml:"themes,omitempty"`
	Background   string   `json:"background,omitempty" yaml:"background,omitempty"`
}

// ManifestEntry is a theme or state machine descriptor.
type ManifestEntry struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// ParseManifest decodes a manifest.json payload.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrLoad, err)
	}
	if len(m.Animations) == 0 {
		return nil, fmt.Errorf("%w: manifest lists no animations", ErrLoad)
	}
	return &m, nil
}

// InitialAnimation returns the animation to load when no ID is requested.
func (m *Manifest) InitialAnimation() string {
	if m.Initial != nil && m.Initial.Animation != "" {
		return m.Initial.Animation
	}
	if len(m.Animations) > 0 {
		return m.Animations[0].ID
	}
	return ""
}

// Animation returns the descriptor for id.
func (m *Manifest) Animation(id string) (ManifestAnimation, bool) {
	for _, a := range m.Animations {
		if a.ID == id {
			return a, true
		}
	}
	return ManifestAnimation{}, false
}

// EntryKind names a family of bundle or project entries.
type EntryKind string

const (
	EntryAnimation    EntryKind = "animation"
	EntryTheme        EntryKind = "theme"
	EntryStateMachine EntryKind = "state_machine"
)
