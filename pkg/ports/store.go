package ports

import (
	"context"

	"github.com/aretw0/kinema/pkg/domain"
)

// SnapshotStore persists state machine snapshots.
// This allows for durable sessions, enabling "Stop & Resume" of an
// interactive animation across restarts.
type SnapshotStore interface {
	// Save persists the snapshot for a given session ID.
	Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a given session ID.
	// Returns domain.ErrSnapshotNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns every stored session ID.
	List(ctx context.Context) ([]string, error)
}
