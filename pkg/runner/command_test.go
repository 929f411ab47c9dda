package runner

import (
	"testing"

	"github.com/aretw0/kinema/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    Command
		wantErr bool
	}{
		{"play", Command{Verb: "play", Args: []string{}}, false},
		{"  Click 20   30 ", Command{Verb: "click", Args: []string{"20", "30"}}, false},
		{`{"cmd":"SET","args":["name","a b"]}`, Command{Verb: "set", Args: []string{"name", "a b"}}, false},
		{`{"args":["x"]}`, Command{}, true},
		{`{broken`, Command{}, true},
		{"   ", Command{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValue(t *testing.T) {
	v, err := parseValue(domain.TriggerNumeric, "2.5")
	require.NoError(t, err)
	assert.Equal(t, domain.NumberValue(2.5), v)

	v, err = parseValue(domain.TriggerBoolean, "true")
	require.NoError(t, err)
	assert.Equal(t, domain.BoolValue(true), v)

	v, err = parseValue(domain.TriggerString, "true")
	require.NoError(t, err)
	assert.Equal(t, domain.StringValue("true"), v)

	v, err = parseValue(domain.TriggerNumeric, float64(4))
	require.NoError(t, err)
	assert.Equal(t, domain.NumberValue(4), v)

	_, err = parseValue(domain.TriggerBoolean, "maybe")
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestFormatNotification(t *testing.T) {
	old, cur := domain.NumberValue(1), domain.NumberValue(2)
	tests := []struct {
		n    Notification
		want string
	}{
		{Notification{Player: &domain.PlayerEvent{Type: domain.PlayerPlay}}, "play"},
		{Notification{Session: "s", Player: &domain.PlayerEvent{Type: domain.PlayerLoop, Loop: 2}}, "[s] loop 2"},
		{Notification{Machine: &domain.MachineEvent{Type: domain.MachineTransition, From: "a", To: "b"}}, "transition a -> b"},
		{Notification{Machine: &domain.MachineEvent{Type: domain.MachineStateEntered, State: "b"}}, "state_entered b"},
		{Notification{Machine: &domain.MachineEvent{Type: domain.MachineNumericChange, Name: "n", Old: &old, New: &cur}}, "numeric_input_change n: 1 -> 2"},
		{Notification{Machine: &domain.MachineEvent{Type: domain.MachineError, Message: "boom"}}, "error: boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNotification(tt.n))
	}
}
