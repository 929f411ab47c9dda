package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockIOHandler records system messages and answers Input from a script.
type MockIOHandler struct {
	System        []string
	Notifications []Notification
	InputBehavior func() (string, error)
}

func (m *MockIOHandler) Input(ctx context.Context) (string, error) {
	if m.InputBehavior != nil {
		return m.InputBehavior()
	}
	return "", nil
}

func (m *MockIOHandler) Output(ctx context.Context, n Notification) error {
	m.Notifications = append(m.Notifications, n)
	return nil
}

func (m *MockIOHandler) SystemOutput(ctx context.Context, msg string) error {
	m.System = append(m.System, msg)
	return nil
}

func TestConfirmationMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		cmd     Command
		allowed bool
		prompts int
	}{
		{"Allow", "y", Command{Verb: "play"}, true, 1},
		{"AllowYes", "yes", Command{Verb: "seek", Args: []string{"3"}}, true, 1},
		{"Deny", "n", Command{Verb: "stop"}, false, 1},
		{"DenyEmpty", "", Command{Verb: "stop"}, false, 1},
		{"ReadOnlyPassesWithoutPrompt", "n", Command{Verb: "status"}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockIOHandler{InputBehavior: func() (string, error) { return tt.answer, nil }}
			_, allowed, reason, err := ConfirmationMiddleware(mock)(context.Background(), tt.cmd)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
			assert.Len(t, mock.System, tt.prompts)
			if !allowed {
				assert.Equal(t, "denied by user", reason)
			}
		})
	}
}

func TestMultiInterceptor(t *testing.T) {
	rewrite := func(ctx context.Context, cmd Command) (Command, bool, string, error) {
		if cmd.Verb == "go" {
			cmd.Verb = "play"
		}
		return cmd, true, "", nil
	}
	chain := MultiInterceptor(rewrite, AllowListMiddleware("play", "status"))

	cmd, allowed, _, err := chain(context.Background(), Command{Verb: "go"})
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, "play", cmd.Verb)

	_, allowed, reason, err := chain(context.Background(), Command{Verb: "stop"})
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Contains(t, reason, "stop")

	_, allowed, _, _ = chain(context.Background(), Command{Verb: "quit"})
	assert.True(t, allowed, "quit is always allowed")
}

func TestReadOnlyMiddleware(t *testing.T) {
	mw := ReadOnlyMiddleware()
	for verb, want := range map[string]bool{"status": true, "help": true, "quit": true, "click": false, "set": false} {
		_, allowed, _, err := mw(context.Background(), Command{Verb: verb})
		require.NoError(t, err)
		assert.Equal(t, want, allowed, verb)
	}
}
