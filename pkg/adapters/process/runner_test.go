package process

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/kinema/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Execute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	runner := NewRunner()
	runner.Register("pressed", "echo", "hello")

	t.Run("Executes Registered Command", func(t *testing.T) {
		out, err := runner.Execute(context.Background(), registry.Event{Name: "pressed"})
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("Fails For Unregistered Event", func(t *testing.T) {
		_, err := runner.Execute(context.Background(), registry.Event{Name: "rm -rf /"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not registered")
	})

	t.Run("Passes Event via Env Vars", func(t *testing.T) {
		runner.Register("echo_env", "sh", "-c", "echo $KINEMA_SESSION:$KINEMA_EVENT")

		out, err := runner.Execute(context.Background(), registry.Event{Session: "s1", Name: "echo_env"})
		require.NoError(t, err)
		assert.Equal(t, "s1:echo_env", out)
	})

	t.Run("Substitutes URL Argument", func(t *testing.T) {
		runner.Register(registry.OpenURLEvent, "echo", "open", URLArg)

		ev := registry.ParseEvent("s1", "OpenUrl:https://example.com/a b")
		out, err := runner.Execute(context.Background(), ev)
		require.NoError(t, err)
		assert.Equal(t, "open https://example.com/a b", out)
	})

	t.Run("Reports Failures", func(t *testing.T) {
		runner.Register("broken", "sh", "-c", "echo oops >&2; exit 3")

		_, err := runner.Execute(context.Background(), registry.Event{Name: "broken"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "oops")
	})

	t.Run("Honors Context", func(t *testing.T) {
		runner.Register("slow", "sleep", "5")

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := runner.Execute(ctx, registry.Event{Name: "slow"})
		assert.Error(t, err)
	})
}

func TestRunner_Bind(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	dir := t.TempDir()
	runner := NewRunner(WithBaseDir(dir), WithHooks(map[string]HookConfig{
		"pressed": {Event: "pressed", Command: "sh", Args: []string{"-c", "echo $KINEMA_EVENT > out.txt"}},
	}))
	reg := registry.NewRegistry()
	runner.Bind(reg)
	assert.Equal(t, []string{"pressed"}, reg.Names())

	ran, err := reg.Dispatch(context.Background(), registry.Event{Name: "pressed"})
	require.NoError(t, err)
	assert.True(t, ran)

	data, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "pressed\n", string(data))
}

func TestLoadHooks(t *testing.T) {
	dir := t.TempDir()

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "hooks.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
hooks:
  - event: OpenUrl
    command: xdg-open
    args: ["{url}"]
  - event: pressed
    command: notify-send
    args: [pressed]
    env:
      LEVEL: info
  - command: orphan
`), 0o644))

		hooks, err := LoadHooks(path)
		require.NoError(t, err)
		require.Len(t, hooks, 2)
		assert.Equal(t, []string{URLArg}, hooks["OpenUrl"].Args)
		assert.Equal(t, "info", hooks["pressed"].Environment["LEVEL"])
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(dir, "hooks.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"hooks":[{"event":"done","command":"true"}]}`), 0o644))

		hooks, err := LoadHooks(path)
		require.NoError(t, err)
		assert.Equal(t, "true", hooks["done"].Command)
	})

	t.Run("Missing", func(t *testing.T) {
		hooks, err := LoadHooks(filepath.Join(dir, "nope.yaml"))
		require.NoError(t, err)
		assert.Empty(t, hooks)
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("hooks: ["), 0o644))
		_, err := LoadHooks(path)
		assert.Error(t, err)
	})
}
