package ports

import (
	"context"

	"github.com/aretw0/kinema/pkg/domain"
)

// Bundle is an opened dotLottie container.
type Bundle interface {
	Manifest() *domain.Manifest

	// Animation returns the raw animation document called id.
	Animation(id string) ([]byte, error)

	// Theme returns the raw theme document called id.
	Theme(id string) ([]byte, error)

	// StateMachine returns the raw state machine definition called id.
	StateMachine(id string) ([]byte, error)
}

// BundleLoader opens containers from their raw bytes.
type BundleLoader interface {
	Open(data []byte) (Bundle, error)
}

// DefinitionSource reads the content of a project: state machine
// definitions, themes and animation documents, each addressed by id.
// Lookups of unknown ids return an error wrapping domain.ErrLoad.
type DefinitionSource interface {
	StateMachine(id string) ([]byte, error)
	Theme(id string) ([]byte, error)
	Animation(id string) ([]byte, error)

	// List returns the ids of every entry of kind, sorted.
	List(kind domain.EntryKind) ([]string, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying content changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
