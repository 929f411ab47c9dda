package memory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/kinema/pkg/domain"
)

// Source implements ports.DefinitionSource over in-memory maps.
type Source struct {
	entries map[domain.EntryKind]map[string][]byte
}

// NewSource creates an empty source. Populate it with Add or the typed helpers.
func NewSource() *Source {
	return &Source{entries: make(map[domain.EntryKind]map[string][]byte)}
}

// Add stores raw content under kind and id, replacing any previous entry.
func (s *Source) Add(kind domain.EntryKind, id string, data []byte) *Source {
	m, ok := s.entries[kind]
	if !ok {
		m = make(map[string][]byte)
		s.entries[kind] = m
	}
	m[id] = data
	return s
}

// AddDefinition serializes def and stores it as a state machine.
// This handles serialization automatically, improving DX for tests.
func (s *Source) AddDefinition(def *domain.Definition) error {
	if def.ID == "" {
		return fmt.Errorf("definition missing ID")
	}
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition %s: %w", def.ID, err)
	}
	s.Add(domain.EntryStateMachine, def.ID, data)
	return nil
}

// AddTheme serializes theme and stores it.
func (s *Source) AddTheme(theme *domain.Theme) error {
	if theme.ID == "" {
		return fmt.Errorf("theme missing ID")
	}
	data, err := json.Marshal(theme)
	if err != nil {
		return fmt.Errorf("failed to marshal theme %s: %w", theme.ID, err)
	}
	s.Add(domain.EntryTheme, theme.ID, data)
	return nil
}

func (s *Source) StateMachine(id string) ([]byte, error) {
	return s.get(domain.EntryStateMachine, id)
}

func (s *Source) Theme(id string) ([]byte, error) {
	return s.get(domain.EntryTheme, id)
}

func (s *Source) Animation(id string) ([]byte, error) {
	return s.get(domain.EntryAnimation, id)
}

// List returns all ids of kind in deterministic order.
func (s *Source) List(kind domain.EntryKind) ([]string, error) {
	keys := make([]string, 0, len(s.entries[kind]))
	for k := range s.entries[kind] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Source) get(kind domain.EntryKind, id string) ([]byte, error) {
	content, ok := s.entries[kind][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q not found", domain.ErrLoad, kind, id)
	}
	return content, nil
}
