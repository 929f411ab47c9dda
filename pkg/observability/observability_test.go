package observability_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogObservers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	player := observability.NewLogObserver(logger)
	domain.PlayerEvent{Type: domain.PlayerLoop, Loop: 3}.Dispatch(player)
	domain.PlayerEvent{Type: domain.PlayerComplete}.Dispatch(player)

	machine := observability.NewMachineLogObserver(logger)
	domain.MachineEvent{Type: domain.MachineTransition, From: "idle", To: "hover"}.Dispatch(machine)
	domain.MachineEvent{Type: domain.MachineError, Message: "InfiniteLoop"}.Dispatch(machine)

	out := buf.String()
	assert.Contains(t, out, "count=3")
	assert.Contains(t, out, "Playback complete")
	assert.Contains(t, out, "from=idle to=hover")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "message=InfiniteLoop")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	player := m.Player("main")
	for _, e := range []domain.PlayerEvent{
		{Type: domain.PlayerPlay},
		{Type: domain.PlayerRender, Frame: 1},
		{Type: domain.PlayerRender, Frame: 2},
		{Type: domain.PlayerLoop, Loop: 1},
	} {
		e.Dispatch(player)
	}

	machine := m.Machine("main")
	domain.MachineEvent{Type: domain.MachineTransition, From: "a", To: "b"}.Dispatch(machine)
	domain.MachineEvent{Type: domain.MachineInputFired, Name: "tap"}.Dispatch(machine)
	v := domain.BoolValue(true)
	domain.MachineEvent{Type: domain.MachineBooleanChange, Name: "tap", Old: &v, New: &v}.Dispatch(machine)

	events, err := testutil.GatherAndCount(reg, "kinema_player_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, events, "play and loop series")

	inputs, err := testutil.GatherAndCount(reg, "kinema_state_machine_inputs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, inputs)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err, "collectors are registered once per registry")
}
