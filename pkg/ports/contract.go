package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/kinema/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSnapshot := func(id, state string) *domain.Snapshot {
		return &domain.Snapshot{
			ID:        id,
			MachineID: "button",
			State:     state,
			Status:    domain.MachineRunning,
			Triggers: map[string]domain.Value{
				"hovered": domain.BoolValue(true),
				"clicks":  domain.NumberValue(3),
				"label":   domain.StringValue("ok"),
			},
			Frame: 12.5,
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := newSnapshot(sessionID, "idle")
		require.NoError(t, store.Save(ctx, sessionID, snap), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.State, loaded.State)
		assert.Equal(t, snap.Status, loaded.Status)
		assert.Equal(t, snap.Frame, loaded.Frame)
		// Trigger values keep their declared type through persistence.
		assert.Equal(t, snap.Triggers, loaded.Triggers)
	})

	t.Run("Save isolates the caller", func(t *testing.T) {
		snap := newSnapshot(sessionID, "idle")
		require.NoError(t, store.Save(ctx, sessionID, snap))
		snap.Triggers["clicks"] = domain.NumberValue(99)
		snap.State = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "idle", loaded.State)
		assert.Equal(t, 3.0, loaded.Triggers["clicks"].Number)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, newSnapshot(sessionID, "idle")))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSnapshotNotFound, "Load after Delete should return ErrSnapshotNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, newSnapshot(id1, "idle"))
		_ = store.Save(ctx, id2, newSnapshot(id2, "hover"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
