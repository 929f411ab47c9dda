package runner_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/testutils"
	"github.com/aretw0/kinema/pkg/adapters/memory"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toggle = `
id: toggle
initial: idle
inputs:
  - {type: Numeric, name: clicks}
  - {type: Boolean, name: armed}
states:
  - type: PlaybackState
    name: idle
    transitions:
      - toState: active
        guards:
          - {type: Boolean, inputName: armed, conditionType: Equal, compareTo: true}
  - type: PlaybackState
    name: active
    segment: hover
    autoplay: true
    transitions: []
interactions:
  - type: Click
    layerName: button
    actions:
      - {type: Increment, inputName: clicks}
`

// newPlayer loads the test animation at 100x speed so a run completes in
// a few milliseconds.
func newPlayer(t *testing.T, machine string, autoplay bool) *kinema.Player {
	t.Helper()
	cfg := domain.DefaultConfig()
	cfg.Speed = 100
	cfg.Autoplay = autoplay
	p, err := kinema.New(cfg, kinema.WithName("test"))
	require.NoError(t, err)
	require.NoError(t, p.LoadAnimationData([]byte(testutils.Animation), 100, 100))
	if machine != "" {
		require.NoError(t, p.StateMachineLoadData([]byte(machine)))
	}
	t.Cleanup(p.Destroy)
	return p
}

func decodeLines(t *testing.T, out string) (notes []runner.Notification, system []string) {
	t.Helper()
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var sys map[string]string
		if json.Unmarshal([]byte(line), &sys) == nil && sys["system"] != "" {
			system = append(system, sys["system"])
			continue
		}
		var n runner.Notification
		require.NoError(t, json.Unmarshal([]byte(line), &n), line)
		notes = append(notes, n)
	}
	return notes, system
}

func TestRunner_StopOnComplete(t *testing.T) {
	p := newPlayer(t, "", true)
	var out bytes.Buffer

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader(""), &out)),
		runner.WithFPS(1000),
		runner.WithFixedStep(true),
		runner.WithStopOnComplete(true),
		runner.WithMaxDuration(5*time.Second),
	)
	require.NoError(t, r.Run(context.Background(), p))

	assert.True(t, p.IsComplete())
	notes, _ := decodeLines(t, out.String())
	require.NotEmpty(t, notes)
	last := notes[len(notes)-1]
	require.NotNil(t, last.Player)
	assert.Equal(t, domain.PlayerComplete, last.Player.Type)
}

func TestRunner_CommandsDriveStateMachine(t *testing.T) {
	p := newPlayer(t, toggle, false)
	var out bytes.Buffer
	input := strings.Join([]string{
		"click 20 20",
		`{"cmd":"click","args":["20","20"]}`,
		"set armed true",
		"bogus",
		"status",
	}, "\n") + "\n"

	// After the input ends the runner keeps ticking until MaxDuration.
	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader(input), &out)),
		runner.WithFPS(1000),
		runner.WithMaxDuration(100*time.Millisecond),
	)
	require.NoError(t, r.Run(context.Background(), p))

	clicks, ok := p.Trigger("clicks")
	require.True(t, ok)
	assert.Equal(t, 2.0, clicks.Number)

	// The boolean write is picked up by the next state machine tick.
	assert.Equal(t, "active", p.StateMachineCurrentState())

	notes, system := decodeLines(t, out.String())
	require.Len(t, system, 5)
	assert.Contains(t, system[3], "unknown command")
	assert.Contains(t, system[4], "state=")

	var entered []string
	for _, n := range notes {
		if n.Machine != nil && n.Machine.Type == domain.MachineStateEntered {
			entered = append(entered, n.Machine.State)
		}
	}
	assert.Equal(t, []string{"idle", "active"}, entered)
}

func TestRunner_ResumesAndSavesSnapshot(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first := newPlayer(t, toggle, false)
	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader("click 20 20\nquit\n"), &bytes.Buffer{})),
		runner.WithStore(store),
		runner.WithSessionID("s1"),
		runner.WithFPS(1000),
	)
	require.NoError(t, r.Run(ctx, first))

	snap, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", snap.ID)
	assert.Equal(t, 1.0, snap.Triggers["clicks"].Number)

	second := newPlayer(t, toggle, false)
	r.Handler = runner.NewJSONHandler(strings.NewReader("click 20 20\nquit\n"), &bytes.Buffer{})
	require.NoError(t, r.Run(ctx, second))

	clicks, _ := second.Trigger("clicks")
	assert.Equal(t, 2.0, clicks.Number)
}

func TestRunner_InterceptorBlocks(t *testing.T) {
	p := newPlayer(t, toggle, false)
	var out bytes.Buffer

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader("click 20 20\nstatus\nexit\n"), &out)),
		runner.WithInterceptor(runner.ReadOnlyMiddleware()),
		runner.WithFPS(1000),
	)
	require.NoError(t, r.Run(context.Background(), p))

	clicks, _ := p.Trigger("clicks")
	assert.Equal(t, 0.0, clicks.Number)
	_, system := decodeLines(t, out.String())
	require.Len(t, system, 2)
	assert.True(t, strings.HasPrefix(system[0], "Blocked:"))
}

func TestRunner_MaxDurationIsNotAnError(t *testing.T) {
	p := newPlayer(t, toggle, false)
	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader(""), &bytes.Buffer{})),
		runner.WithMaxDuration(20*time.Millisecond),
	)
	start := time.Now()
	require.NoError(t, r.Run(context.Background(), p))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, domain.MachineRunning, p.StateMachineStatus())
}

func TestStep_PostsCompletionToMachine(t *testing.T) {
	const machine = `
initial: intro
states:
  - {type: PlaybackState, name: intro, autoplay: true, transitions: [{toState: done, guards: [{type: Event, inputName: Complete}]}]}
  - {type: PlaybackState, name: done, final: true, transitions: []}
`
	p := newPlayer(t, machine, false)
	r := runner.NewRunner()
	require.NoError(t, r.Resume(context.Background(), p))
	assert.False(t, runner.Done(p))

	for i := 0; i < 5 && !runner.Done(p); i++ {
		require.NoError(t, r.Step(p, 10*time.Millisecond))
	}
	assert.Equal(t, "done", p.StateMachineCurrentState())
	assert.True(t, runner.Done(p))
}

func TestApply_Report(t *testing.T) {
	p := newPlayer(t, toggle, false)

	out, err := runner.Apply(p, runner.Command{Verb: "report"})
	require.NoError(t, err)
	assert.Contains(t, out, "| Playback |")
	assert.Contains(t, out, "## State machine")
	assert.False(t, runner.Command{Verb: "report"}.Mutates())
}
