package memory_test

import (
	"testing"

	"github.com/aretw0/kinema/internal/compiler"
	"github.com/aretw0/kinema/pkg/adapters/memory"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSnapshotStoreContract(t, store)
}

func TestSource(t *testing.T) {
	var _ ports.DefinitionSource = (*memory.Source)(nil)

	src := memory.NewSource()
	require.NoError(t, src.AddDefinition(&domain.Definition{
		ID:      "toggle",
		Initial: "off",
		States:  []domain.State{{Name: "off"}},
	}))
	require.NoError(t, src.AddTheme(&domain.Theme{ID: "dark"}))
	src.Add(domain.EntryAnimation, "b", []byte(`{}`)).Add(domain.EntryAnimation, "a", []byte(`{}`))

	data, err := src.StateMachine("toggle")
	require.NoError(t, err)
	def, err := compiler.NewParser().ParseDefinition(data)
	require.NoError(t, err)
	assert.Equal(t, "off", def.Initial)

	ids, err := src.List(domain.EntryAnimation)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	_, err = src.Theme("light")
	assert.ErrorIs(t, err, domain.ErrLoad)

	assert.Error(t, src.AddDefinition(&domain.Definition{}))
}
