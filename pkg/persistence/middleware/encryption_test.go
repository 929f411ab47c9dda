package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/kinema/pkg/adapters/memory"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/persistence/middleware"
	"github.com/aretw0/kinema/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sealed(t *testing.T, cfg middleware.EncryptionConfig, next ports.SnapshotStore) ports.SnapshotStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func secretSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		ID:        "s1",
		MachineID: "login",
		State:     "typing",
		Status:    domain.MachineRunning,
		Triggers:  map[string]domain.Value{"password": domain.StringValue("hunter2")},
		Frame:     4,
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunSnapshotStoreContract(t, sealed(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, memory.NewStore()))
}

func TestEncryptionMiddleware_HidesSnapshot(t *testing.T) {
	ctx := context.Background()
	under := memory.NewStore()
	store := sealed(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, under)

	require.NoError(t, store.Save(ctx, "s1", secretSnapshot()))

	raw, err := under.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, raw.State)
	assert.Zero(t, raw.Frame)
	assert.Equal(t, "login", raw.MachineID)
	assert.Equal(t, domain.MachineRunning, raw.Status)
	assert.NotContains(t, raw.Triggers, "password")
	assert.Contains(t, raw.Triggers, middleware.SealedInput)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "typing", loaded.State)
	assert.Equal(t, "hunter2", loaded.Triggers["password"].Text)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	under := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	require.NoError(t, sealed(t, middleware.EncryptionConfig{ActiveKey: oldKey}, under).Save(ctx, "s1", secretSnapshot()))

	rotated := sealed(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}}, under)
	loaded, err := rotated.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "typing", loaded.State)

	_, err = sealed(t, middleware.EncryptionConfig{ActiveKey: newKey}, under).Load(ctx, "s1")
	assert.ErrorContains(t, err, "decryption failed")
}

func TestEncryptionMiddleware_Rejects(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	ctx := context.Background()
	under := memory.NewStore()
	require.NoError(t, under.Save(ctx, "plain", secretSnapshot()))

	_, err = sealed(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, under).Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}
