package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/kinema/pkg/adapters/memory"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskMiddleware(t *testing.T) {
	ctx := context.Background()
	mw, err := middleware.NewMaskMiddleware([]string{"(?i)password", "^email$"})
	require.NoError(t, err)
	under := memory.NewStore()
	store := mw(under)

	snap := &domain.Snapshot{
		State: "form",
		Triggers: map[string]domain.Value{
			"Password": domain.StringValue("hunter2"),
			"email":    domain.StringValue("a@b.c"),
			"emails":   domain.StringValue("kept"),
			"password": domain.NumberValue(3),
		},
	}
	require.NoError(t, store.Save(ctx, "s1", snap))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Triggers["Password"].Text)
	assert.Equal(t, middleware.Mask, loaded.Triggers["email"].Text)
	assert.Equal(t, "kept", loaded.Triggers["emails"].Text)
	// Only string inputs carry free text.
	assert.Equal(t, 3.0, loaded.Triggers["password"].Number)

	assert.Equal(t, "hunter2", snap.Triggers["Password"].Text, "caller snapshot must be untouched")
}

func TestMaskMiddleware_BadPattern(t *testing.T) {
	_, err := middleware.NewMaskMiddleware([]string{"("})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	mask, err := middleware.NewMaskMiddleware([]string{"secret"})
	require.NoError(t, err)
	seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	under := memory.NewStore()
	store := middleware.Chain(under, mask, seal)
	require.NoError(t, store.Save(ctx, "s1", &domain.Snapshot{
		State:    "a",
		Triggers: map[string]domain.Value{"secret": domain.StringValue("x")},
	}))

	raw, err := under.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Contains(t, raw.Triggers, middleware.SealedInput)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, loaded.Triggers["secret"].Text)
}
