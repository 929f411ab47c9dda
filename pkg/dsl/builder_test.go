package dsl_test

import (
	"testing"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/testutils"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func button() *dsl.Builder {
	b := dsl.New("button")
	b.Numeric("clicks", 0).Event("reset")

	b.Add("idle").
		Go("pressed", dsl.AtLeast("clicks", 2))
	b.Add("pressed").
		Segment("hover").
		Autoplay().
		OnEntry(dsl.CustomEvent("pressed")).
		TweenTo("idle", 0.5, nil, dsl.On("reset"))
	b.Global().
		Go("idle", dsl.All(dsl.On("reset"), dsl.Not(dsl.AtLeast("clicks", 10))))

	b.On(domain.InteractClick, "button", dsl.Increment("clicks"))
	return b
}

func TestBuilder_Definition(t *testing.T) {
	def, err := button().Build()
	require.NoError(t, err)

	assert.Equal(t, "button", def.ID)
	assert.Equal(t, "idle", def.Initial)
	require.Len(t, def.States, 3)

	pressed, ok := def.State("pressed")
	require.True(t, ok)
	assert.Equal(t, domain.StatePlayback, pressed.Type)
	assert.Equal(t, "hover", pressed.Segment)
	require.NotNil(t, pressed.Autoplay)
	assert.True(t, *pressed.Autoplay)
	require.Len(t, pressed.Transitions, 1)
	assert.Equal(t, 0.5, pressed.Transitions[0].Tween.Duration)

	global, ok := def.Global()
	require.True(t, ok)
	assert.Equal(t, domain.GuardAll, global.Transitions[0].Guards[0].Type)

	require.Len(t, def.Interactions, 1)
	assert.Equal(t, "button", def.Interactions[0].LayerName)
}

func TestBuilder_AddIsIdempotent(t *testing.T) {
	b := dsl.New("m")
	first := b.Add("a")
	assert.Same(t, first, b.Add("a"))
	b.Add("b").Initial()

	def := b.Definition()
	assert.Equal(t, "b", def.Initial)
	assert.Len(t, def.States, 2)
}

func TestBuilder_CompletionInteractionTargetsState(t *testing.T) {
	b := dsl.New("m")
	b.Numeric("loops", 0)
	b.Add("a")
	b.On(domain.InteractOnLoopComplete, "a", dsl.Increment("loops"))

	def, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "a", def.Interactions[0].StateName)
	assert.Empty(t, def.Interactions[0].LayerName)
}

func TestBuilder_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		build func() *dsl.Builder
	}{
		{"Empty", func() *dsl.Builder { return dsl.New("empty") }},
		{"UnknownTarget", func() *dsl.Builder {
			b := dsl.New("m")
			b.Add("a").Go("ghost")
			return b
		}},
		{"UndeclaredInput", func() *dsl.Builder {
			b := dsl.New("m")
			b.Add("a").Go("a", dsl.Is("ready", true))
			return b
		}},
		{"BadSpeed", func() *dsl.Builder {
			b := dsl.New("m")
			b.Add("a").Speed(-1)
			return b
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build().Build()
			assert.ErrorIs(t, err, domain.ErrStateMachine)
		})
	}
}

func TestBuilder_DrivesPlayer(t *testing.T) {
	def, err := button().Build()
	require.NoError(t, err)

	p, err := kinema.New(domain.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, p.LoadAnimationData([]byte(testutils.Animation), 100, 100))
	require.NoError(t, p.StateMachineLoadDefinition(def))
	require.NoError(t, p.StateMachineStart())

	require.NoError(t, p.StateMachinePostEvent(domain.Click(20, 20)))
	assert.Equal(t, "idle", p.StateMachineCurrentState())
	require.NoError(t, p.StateMachinePostEvent(domain.Click(20, 20)))
	assert.Equal(t, "pressed", p.StateMachineCurrentState())
	assert.True(t, p.IsPlaying())
}

func TestBuilder_YAMLRoundTrip(t *testing.T) {
	data, err := button().YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "segment: hover")

	p, err := kinema.New(domain.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, p.LoadAnimationData([]byte(testutils.Animation), 100, 100))
	require.NoError(t, p.StateMachineLoadData(data))
	assert.Equal(t, "button", p.ActiveStateMachineID())
}

func TestBuilder_Source(t *testing.T) {
	src, err := button().Source()
	require.NoError(t, err)

	p, err := kinema.New(domain.DefaultConfig(), kinema.WithSource(src))
	require.NoError(t, err)
	require.NoError(t, p.LoadAnimationData([]byte(testutils.Animation), 100, 100))
	require.NoError(t, p.StateMachineLoad("button"))
	assert.Equal(t, domain.MachineLoaded, p.StateMachineStatus())
}
