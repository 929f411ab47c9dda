package registry_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/kinema/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEvent(t *testing.T) {
	ev := registry.ParseEvent("s1", "OpenUrl:https://example.com/x?y=1")
	assert.Equal(t, registry.Event{Session: "s1", Name: registry.OpenURLEvent, URL: "https://example.com/x?y=1"}, ev)

	ev = registry.ParseEvent("s1", "pressed")
	assert.Equal(t, registry.Event{Session: "s1", Name: "pressed"}, ev)
}

func TestRegistry_Dispatch(t *testing.T) {
	reg := registry.NewRegistry()
	var got registry.Event
	reg.Register("pressed", func(_ context.Context, ev registry.Event) error {
		got = ev
		return nil
	})
	reg.Register("broken", func(context.Context, registry.Event) error {
		return errors.New("boom")
	})

	ran, err := reg.Dispatch(context.Background(), registry.Event{Session: "a", Name: "pressed"})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, "a", got.Session)

	ran, err = reg.Dispatch(context.Background(), registry.Event{Name: "unknown"})
	require.NoError(t, err)
	assert.False(t, ran)

	ran, err = reg.Dispatch(context.Background(), registry.Event{Name: "broken"})
	assert.True(t, ran)
	assert.ErrorContains(t, err, "boom")

	assert.Equal(t, []string{"broken", "pressed"}, reg.Names())
}

func TestDispatcher(t *testing.T) {
	reg := registry.NewRegistry()
	var (
		mu   sync.Mutex
		urls []string
	)
	reg.Register(registry.OpenURLEvent, func(_ context.Context, ev registry.Event) error {
		mu.Lock()
		defer mu.Unlock()
		urls = append(urls, ev.URL)
		return nil
	})

	d := registry.NewDispatcher(context.Background(), reg, "s1", nil)
	obs := d.Observer()
	obs.OnTransition("a", "b")
	obs.OnCustomEvent("OpenUrl:https://example.com")
	obs.OnCustomEvent("ignored")
	d.Wait()

	assert.Equal(t, []string{"https://example.com"}, urls)
}
