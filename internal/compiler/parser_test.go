package compiler

import (
	"testing"

	"github.com/aretw0/kinema/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonDefinition = `{
  "initial": "idle",
  "inputs": [
    {"type": "Boolean", "name": "ready", "value": false},
    {"type": "Numeric", "name": "rating", "value": 3}
  ],
  "states": [
    {
      "type": "PlaybackState",
      "name": "idle",
      "animation": "",
      "loop": true,
      "loopCount": 2,
      "speed": 1.5,
      "transitions": [
        {"type": "Transition", "toState": "done", "guards": [
          {"type": "Boolean", "inputName": "ready", "conditionType": "Equal", "compareTo": true}
        ]}
      ]
    },
    {"type": "PlaybackState", "name": "done", "final": true, "transitions": []}
  ],
  "interactions": [
    {"type": "Click", "layerName": "button", "actions": [{"type": "Toggle", "inputName": "ready"}]}
  ]
}`

const yamlDefinition = `
initial: idle
inputs:
  - {type: Numeric, name: rating, value: 3}
states:
  - name: idle
    mode: Bounce
    backgroundColor: 0xff0000ff
    entryActions:
      - {type: Increment, inputName: rating, value: 2}
    transitions:
      - toState: done
        tween: {duration: 0.5, easing: [0.4, 0, 0.2, 1]}
        guards:
          - {type: Numeric, inputName: rating, conditionType: GreaterThan, compareTo: 4}
  - name: done
    transitions: []
`

func TestParseJSONDefinition(t *testing.T) {
	def, err := NewParser().ParseDefinition([]byte(jsonDefinition))
	require.NoError(t, err)

	assert.Equal(t, "idle", def.Initial)
	require.Len(t, def.States, 2)
	idle := def.States[0]
	require.NotNil(t, idle.Loop)
	assert.True(t, *idle.Loop)
	require.NotNil(t, idle.LoopCount)
	assert.Equal(t, uint32(2), *idle.LoopCount)
	assert.Equal(t, 1.5, *idle.Speed)
	require.Len(t, idle.Transitions, 1)
	assert.Equal(t, domain.CondEqual, idle.Transitions[0].Guards[0].ConditionType)
	assert.Equal(t, true, idle.Transitions[0].Guards[0].CompareTo)
	assert.True(t, def.States[1].Final)

	require.Len(t, def.Interactions, 1)
	assert.Equal(t, domain.InteractClick, def.Interactions[0].Type)
	assert.Equal(t, "button", def.Interactions[0].LayerName)
}

func TestParseYAMLDefinition(t *testing.T) {
	def, err := NewParser().ParseDefinition([]byte(yamlDefinition))
	require.NoError(t, err)

	idle := def.States[0]
	assert.Equal(t, domain.StatePlayback, idle.Type, "type defaults to PlaybackState")
	assert.Equal(t, "Bounce", idle.Mode)
	require.NotNil(t, idle.BackgroundColor)
	assert.Equal(t, uint32(0xff0000ff), *idle.BackgroundColor)
	assert.Equal(t, domain.ActionIncrement, idle.EntryActions[0].Type)

	tr := idle.Transitions[0]
	require.NotNil(t, tr.Tween)
	assert.Equal(t, 0.5, tr.Tween.Duration)
	assert.Equal(t, []float64{0.4, 0, 0.2, 1}, tr.Tween.Easing)
}

func TestParseDefinitionErrors(t *testing.T) {
	p := NewParser()

	_, err := p.ParseDefinition([]byte(`{not json`))
	assert.ErrorIs(t, err, domain.ErrStateMachine)

	_, err = p.ParseDefinition([]byte(`{"initial": "a", "states": []}`))
	var defErr *domain.DefinitionError
	require.ErrorAs(t, err, &defErr)
	assert.Equal(t, "states", defErr.Path)

	_, err = p.ParseDefinition([]byte(`{"initial": "a", "states": [{"name": "a", "loopCount": "many"}]}`))
	assert.ErrorIs(t, err, domain.ErrStateMachine)
}

func TestParseTheme(t *testing.T) {
	data := `
id: dark
rules:
  - type: Color
    id: bg
    value: [0.1, 0.1, 0.1]
  - type: Scalar
    id: stroke
    animations: [intro]
    keyframes:
      - {frame: 0, value: 1}
      - {frame: 10, value: 4}
`
	theme, err := NewParser().ParseTheme([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "dark", theme.ID)
	require.Len(t, theme.Rules, 2)
	assert.JSONEq(t, `[0.1, 0.1, 0.1]`, string(theme.Rules[0].Value))
	assert.Equal(t, []string{"intro"}, theme.Rules[1].Animations)
	assert.NotEmpty(t, theme.Rules[1].Keyframes)

	_, err = NewParser().ParseTheme([]byte(`{"rules": [{"type": "Color"}]}`))
	assert.ErrorIs(t, err, domain.ErrLoad)
}
