package dsl

import (
	"fmt"

	"github.com/aretw0/kinema/internal/runtime"
	"github.com/aretw0/kinema/pkg/adapters/memory"
	"github.com/aretw0/kinema/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Builder manages the definition construction.
type Builder struct {
	id           string
	initial      string
	order        []string
	states       map[string]*StateBuilder
	inputs       []domain.TriggerDecl
	interactions []domain.Interaction
}

// New creates a builder for the definition called id.
func New(id string) *Builder {
	return &Builder{
		id:     id,
		states: make(map[string]*StateBuilder),
	}
}

// Add creates a playback state. If the state already exists, it returns
// the existing builder. The first state added is the initial state unless
// another one calls Initial.
func (b *Builder) Add(name string) *StateBuilder {
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{
		state:   domain.State{Type: domain.StatePlayback, Name: name, Transitions: []domain.Transition{}},
		builder: b,
	}
	b.states[name] = sb
	b.order = append(b.order, name)
	if b.initial == "" {
		b.initial = name
	}
	return sb
}

// Global returns the builder of the global state, whose transitions are
// evaluated from every state.
func (b *Builder) Global() *StateBuilder {
	const name = "global"
	if sb, ok := b.states[name]; ok {
		return sb
	}
	sb := &StateBuilder{
		state:   domain.State{Type: domain.StateGlobal, Name: name, Transitions: []domain.Transition{}},
		builder: b,
	}
	b.states[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Boolean declares a Boolean input.
func (b *Builder) Boolean(name string, value bool) *Builder {
	return b.input(domain.TriggerBoolean, name, value)
}

// Numeric declares a Numeric input.
func (b *Builder) Numeric(name string, value float64) *Builder {
	return b.input(domain.TriggerNumeric, name, value)
}

// String declares a String input.
func (b *Builder) String(name, value string) *Builder {
	return b.input(domain.TriggerString, name, value)
}

// Event declares an Event input.
func (b *Builder) Event(name string) *Builder {
	return b.input(domain.TriggerEvent, name, nil)
}

func (b *Builder) input(t domain.TriggerType, name string, value any) *Builder {
	b.inputs = append(b.inputs, domain.TriggerDecl{Type: t, Name: name, Value: value})
	return b
}

// On binds an interaction. layer restricts pointer kinds to a layer and
// completion kinds to a state; pass "" for no restriction.
func (b *Builder) On(kind domain.InteractionType, layer string, actions ...domain.Action) *Builder {
	in := domain.Interaction{Type: kind, Actions: actions}
	switch kind {
	case domain.InteractOnComplete, domain.InteractOnLoopComplete:
		in.StateName = layer
	default:
		in.LayerName = layer
	}
	b.interactions = append(b.interactions, in)
	return b
}

// Definition assembles the definition without validating it.
func (b *Builder) Definition() *domain.Definition {
	def := &domain.Definition{
		ID:           b.id,
		Initial:      b.initial,
		States:       make([]domain.State, 0, len(b.order)),
		Inputs:       append([]domain.TriggerDecl(nil), b.inputs...),
		Interactions: append([]domain.Interaction(nil), b.interactions...),
	}
	for _, name := range b.order {
		def.States = append(def.States, b.states[name].state)
	}
	return def
}

// Build assembles and validates the definition.
func (b *Builder) Build() (*domain.Definition, error) {
	def := b.Definition()
	if err := runtime.New().Load(def); err != nil {
		return nil, fmt.Errorf("invalid definition %q: %w", b.id, err)
	}
	return def, nil
}

// YAML builds the definition and encodes it in the authoring format.
func (b *Builder) YAML() ([]byte, error) {
	def, err := b.Build()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(def)
}

// Source builds the definition into an in-memory definition source, so it
// can be loaded by id through kinema.WithSource.
func (b *Builder) Source() (*memory.Source, error) {
	def, err := b.Build()
	if err != nil {
		return nil, err
	}
	src := memory.NewSource()
	if err := src.AddDefinition(def); err != nil {
		return nil, fmt.Errorf("failed to build memory source: %w", err)
	}
	return src, nil
}
