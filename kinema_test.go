package kinema_test

import (
	"archive/zip"
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/testutils"
	"github.com/aretw0/kinema/pkg/adapters/memory"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	red  = 0xFFFF0000
	blue = 0xFF0000FF
	tick = 100 * time.Millisecond
)

// recorder collects notification types in delivery order.
type recorder struct {
	mu      sync.Mutex
	player  []domain.PlayerEventType
	machine []domain.MachineEventType
	custom  []string
}

func (r *recorder) add(t domain.PlayerEventType) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.player = append(r.player, t)
	}
}

func (r *recorder) observer() domain.Observer {
	return domain.PlayerHooks{
		Load:      r.add(domain.PlayerLoad),
		LoadError: r.add(domain.PlayerLoadError),
		Play:      r.add(domain.PlayerPlay),
		Pause:     r.add(domain.PlayerPause),
		Stop:      r.add(domain.PlayerStop),
		Complete:  r.add(domain.PlayerComplete),
		Loop:      func(uint32) { r.add(domain.PlayerLoop)() },
		Render:    func(float64) { r.add(domain.PlayerRender)() },
	}
}

func (r *recorder) machineObserver() domain.StateMachineObserver {
	add := func(t domain.MachineEventType) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.machine = append(r.machine, t)
	}
	return domain.MachineHooks{
		Start:        func() { add(domain.MachineStart) },
		Stop:         func() { add(domain.MachineStop) },
		Transition:   func(string, string) { add(domain.MachineTransition) },
		StateEntered: func(string) { add(domain.MachineStateEntered) },
		StateExit:    func(string) { add(domain.MachineStateExit) },
		Error:        func(string) { add(domain.MachineError) },
		CustomEvent: func(name string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.custom = append(r.custom, name)
		},
	}
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.player, r.machine, r.custom = nil, nil, nil
}

func newPlayer(t *testing.T, mutate func(*domain.Config), opts ...kinema.Option) (*kinema.Player, *recorder) {
	t.Helper()
	cfg := domain.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	rec := &recorder{}
	opts = append(opts, kinema.WithObserver(rec.observer()), kinema.WithStateMachineObserver(rec.machineObserver()))
	p, err := kinema.New(cfg, opts...)
	require.NoError(t, err)
	return p, rec
}

func loaded(t *testing.T, mutate func(*domain.Config), opts ...kinema.Option) (*kinema.Player, *recorder) {
	t.Helper()
	p, rec := newPlayer(t, mutate, opts...)
	require.NoError(t, p.LoadAnimationData([]byte(testutils.Animation), 100, 100))
	return p, rec
}

func pixel(p *kinema.Player, x, y int) uint32 {
	return p.Buffer()[y*100+x]
}

func TestLoadRendersFirstFrame(t *testing.T) {
	p, rec := loaded(t, nil)

	assert.True(t, p.IsLoaded())
	assert.Equal(t, []domain.PlayerEventType{domain.PlayerLoad, domain.PlayerRender}, rec.player)
	assert.Equal(t, uint32(red), pixel(p, 20, 20))
	assert.Equal(t, 11.0, p.TotalFrames())
	assert.Len(t, p.Markers(), 2)
	assert.Empty(t, p.ActiveAnimationID())
}

func TestLoadFailureLeavesPlayerUnloaded(t *testing.T) {
	p, rec := loaded(t, nil)
	rec.reset()

	err := p.LoadAnimationData([]byte(`{"fr": 0}`), 100, 100)
	assert.ErrorIs(t, err, domain.ErrLoad)
	assert.False(t, p.IsLoaded())
	assert.Nil(t, p.Buffer())
	assert.Equal(t, []domain.PlayerEventType{domain.PlayerLoadError}, rec.player)

	assert.ErrorIs(t, p.LoadAnimationData([]byte(testutils.Animation), 0, 100), domain.ErrInvalidParameter)
	assert.False(t, p.Play())
}

func TestTickPlaysToCompletion(t *testing.T) {
	p, rec := loaded(t, nil)
	require.True(t, p.Play())
	rec.reset()

	for i := 0; i < 10; i++ {
		assert.True(t, p.Tick(tick), "tick %d renders", i)
	}
	assert.True(t, p.IsComplete())
	assert.Equal(t, 10.0, p.CurrentFrame())
	assert.False(t, p.Tick(tick), "nothing left to render")

	last := rec.player[len(rec.player)-2:]
	assert.Equal(t, []domain.PlayerEventType{domain.PlayerRender, domain.PlayerComplete}, last,
		"render precedes complete")
}

func TestLoopCounting(t *testing.T) {
	p, rec := loaded(t, func(cfg *domain.Config) {
		cfg.Loop = true
		cfg.Autoplay = true
	})
	assert.True(t, p.IsPlaying())

	for i := 0; i < 21; i++ {
		p.Tick(tick)
	}
	assert.Equal(t, uint32(2), p.LoopCount())
	assert.Contains(t, rec.player, domain.PlayerLoop)

	require.True(t, p.Stop())
	assert.Zero(t, p.LoopCount())
	assert.Equal(t, 0.0, p.CurrentFrame())
}

func TestObserversMayCallBack(t *testing.T) {
	p, _ := loaded(t, nil)
	p.Subscribe(domain.PlayerHooks{Complete: func() { p.Stop() }})

	require.True(t, p.Play())
	for i := 0; i < 10; i++ {
		p.Tick(tick)
	}
	assert.True(t, p.IsStopped())
}

func TestUnsubscribe(t *testing.T) {
	p, _ := newPlayer(t, nil)
	calls := 0
	id := p.Subscribe(domain.PlayerHooks{Load: func() { calls++ }})

	require.NoError(t, p.LoadAnimationData([]byte(testutils.Animation), 100, 100))
	assert.True(t, p.Unsubscribe(id))
	assert.False(t, p.Unsubscribe(id))
	require.NoError(t, p.LoadAnimationData([]byte(testutils.Animation), 100, 100))
	assert.Equal(t, 1, calls)
}

func TestSetFrameOutsideSegmentIsRejected(t *testing.T) {
	p, _ := loaded(t, func(cfg *domain.Config) { cfg.Segment = []float64{2, 8} })

	assert.False(t, p.SetFrame(9))
	assert.Equal(t, 2.0, p.CurrentFrame())
	assert.True(t, p.SetFrame(8))
	assert.Equal(t, 8.0, p.CurrentFrame())
}

func TestSlotOverrideIsVisibleInNextRender(t *testing.T) {
	p, _ := loaded(t, nil)

	require.NoError(t, p.SetSlots(`{
	  "accent": {"type": "Color", "value": [0, 0, 1, 1]},
	  "nowhere": {"type": "Color", "value": [0, 1, 0, 1]}
	}`))
	assert.Equal(t, uint32(blue), pixel(p, 20, 20))

	assert.ErrorIs(t, p.SetSlots(`{"accent": {"type": "Color"}}`), domain.ErrInvalidParameter)
	assert.Equal(t, uint32(blue), pixel(p, 20, 20), "failed writes change nothing")

	p.ClearSlots()
	assert.Equal(t, uint32(red), pixel(p, 20, 20))
}

func TestResetThemeDropsSlotOverrides(t *testing.T) {
	p, _ := loaded(t, nil)

	require.NoError(t, p.SetSlots(`{"accent": {"type": "Color", "value": [0, 0, 1, 1]}}`))
	assert.Equal(t, uint32(blue), pixel(p, 20, 20))

	p.ResetTheme()
	assert.Equal(t, uint32(red), pixel(p, 20, 20))
}

func TestThemeData(t *testing.T) {
	p, _ := loaded(t, nil)

	require.NoError(t, p.SetThemeData(`{"rules": [{"type": "Color", "id": "accent", "value": "#0000ff"}]}`))
	assert.Equal(t, uint32(blue), pixel(p, 20, 20))

	p.ResetTheme()
	assert.Equal(t, uint32(red), pixel(p, 20, 20))

	assert.ErrorIs(t, p.SetTheme("missing"), domain.ErrNotLoaded, "no bundle or source")
}

func TestResizeKeepsPlayback(t *testing.T) {
	p, _ := loaded(t, nil)
	require.True(t, p.Play())
	p.Tick(tick)

	require.True(t, p.Resize(200, 100))
	assert.Len(t, p.Buffer(), 200*100)
	assert.Equal(t, 1.0, p.CurrentFrame())
	assert.True(t, p.IsPlaying())
	assert.False(t, p.Resize(0, 10))
}

func TestHitTestUsesLayout(t *testing.T) {
	p, _ := newPlayer(t, nil)
	require.NoError(t, p.LoadAnimationData([]byte(testutils.Animation), 200, 100))

	// The square picture is centered: picture x = canvas x - 50.
	assert.True(t, p.HitTest("button", 70, 20))
	assert.False(t, p.HitTest("button", 20, 20))

	b, ok := p.LayerBounds("button")
	require.True(t, ok)
	assert.Equal(t, [4]float64{10, 10, 30, 30}, b)
}

func TestTweenMidpoint(t *testing.T) {
	p, _ := loaded(t, nil)

	require.True(t, p.Tween(10, 1, nil))
	assert.True(t, p.IsTweening())
	require.True(t, p.TweenUpdate(0.5))
	assert.Equal(t, 5.0, p.CurrentFrame())

	require.True(t, p.TweenUpdate(1))
	assert.False(t, p.IsTweening())
	assert.Equal(t, 10.0, p.CurrentFrame())
	assert.False(t, p.TweenUpdate(0.5), "no tween running")
}

func TestTweenDurationIsWallClock(t *testing.T) {
	p, _ := loaded(t, func(cfg *domain.Config) { cfg.Speed = 2 })

	require.True(t, p.Tween(10, 1, nil))
	p.Tick(500 * time.Millisecond)
	assert.InDelta(t, 5.0, p.CurrentFrame(), 1e-9, "explicit durations ignore speed")
	require.True(t, p.TweenStop())

	require.True(t, p.SetFrame(0))
	require.True(t, p.Tween(10, 0, nil))
	p.Tick(250 * time.Millisecond)
	assert.InDelta(t, 5.0, p.CurrentFrame(), 1e-9, "the default duration already divides by speed")
}

func TestTweenRejectsBadInput(t *testing.T) {
	p, _ := loaded(t, nil)

	assert.False(t, p.Tween(11, 1, nil), "past the last frame")
	assert.False(t, p.Tween(5, 1, []float64{0, 0, 1.5, 1}), "non-monotonic easing")
	assert.False(t, p.TweenPreset(5, 1, "wobbly"))
	assert.True(t, p.TweenPreset(5, 1, "out-cubic"))

	assert.True(t, p.TweenStop())
	assert.False(t, p.TweenStop(), "idempotent")
}

func TestTweenToMarkerActivatesSegment(t *testing.T) {
	p, _ := loaded(t, nil)

	require.True(t, p.TweenToMarker("middle", 0.5, nil))
	assert.False(t, p.TweenToMarker("missing", 0.5, nil))

	p.Tick(250 * time.Millisecond)
	assert.InDelta(t, 1.5, p.CurrentFrame(), 1e-9)
	p.Tick(250 * time.Millisecond)

	assert.False(t, p.IsTweening())
	start, end := p.Segment()
	assert.Equal(t, 3.0, start)
	assert.Equal(t, 7.0, end)
	assert.Equal(t, 3.0, p.CurrentFrame())
}

const buttonMachine = `
id: button
initial: idle
inputs:
  - {type: Numeric, name: clicks, value: 0}
states:
  - name: idle
    transitions:
      - toState: pressed
        guards: [{type: Event, inputName: Click, layerName: button}]
  - name: pressed
    segment: hover
    autoplay: true
    loop: true
    entryActions: [{type: Increment, inputName: clicks}]
    transitions:
      - toState: idle
        guards: [{type: Event, inputName: Click}]
`

func TestStateMachineDrivesPlayback(t *testing.T) {
	p, rec := loaded(t, nil)
	require.NoError(t, p.StateMachineLoadData([]byte(buttonMachine)))
	assert.Equal(t, "button", p.ActiveStateMachineID())
	require.NoError(t, p.StateMachineStart())
	assert.Equal(t, "idle", p.StateMachineCurrentState())

	require.NoError(t, p.StateMachinePostEvent(domain.Click(80, 60)))
	assert.Equal(t, "idle", p.StateMachineCurrentState(), "click missed the button")

	require.NoError(t, p.StateMachinePostEvent(domain.Click(20, 20)))
	assert.Equal(t, "pressed", p.StateMachineCurrentState())
	assert.True(t, p.IsPlaying())
	start, end := p.Segment()
	assert.Equal(t, 5.0, start)
	assert.Equal(t, 10.0, end)

	clicks, ok := p.Trigger("clicks")
	require.True(t, ok)
	assert.Equal(t, 1.0, clicks.Number)

	assert.Equal(t, []domain.MachineEventType{
		domain.MachineStart,
		domain.MachineStateEntered,
		domain.MachineTransition,
		domain.MachineStateEntered,
		domain.MachineStateExit,
	}, rec.machine)

	require.True(t, p.StateMachineStop())
	assert.Equal(t, domain.MachineStopped, p.StateMachineStatus())
	start, end = p.Segment()
	assert.Equal(t, 0.0, start, "config restored on stop")
	assert.Equal(t, 10.0, end)
}

func TestStateMachineTickPostsCompletion(t *testing.T) {
	p, _ := loaded(t, nil)
	require.NoError(t, p.StateMachineLoadData([]byte(`
initial: intro
states:
  - name: intro
    segment: middle
    autoplay: true
    transitions: [{toState: done, guards: [{type: Event, inputName: Complete}]}]
  - name: done
    transitions: []
`)))
	require.NoError(t, p.StateMachineStart())
	assert.Equal(t, 3.0, p.CurrentFrame())

	for i := 0; i < 3; i++ {
		p.Tick(tick)
		require.NoError(t, p.StateMachineTick())
	}
	assert.Equal(t, "intro", p.StateMachineCurrentState())

	p.Tick(tick)
	assert.True(t, p.IsComplete())
	assert.Equal(t, "intro", p.StateMachineCurrentState(), "completion waits for the machine tick")
	require.NoError(t, p.StateMachineTick())
	assert.Equal(t, "done", p.StateMachineCurrentState())
}

func TestStaleCompletionIsNotPosted(t *testing.T) {
	const machine = `
initial: intro
states:
  - name: intro
    autoplay: true
    transitions:
      - {toState: done, guards: [{type: Event, inputName: Complete}]}
      - {toState: outro, guards: [{type: Event, inputName: Click}]}
  - name: outro
    segment: middle
    autoplay: true
    transitions: [{toState: done, guards: [{type: Event, inputName: Complete}]}]
  - name: done
    transitions: []
`

	t.Run("BeforeStart", func(t *testing.T) {
		p, _ := loaded(t, nil)
		require.True(t, p.Play())
		for i := 0; i < 100 && !p.IsComplete(); i++ {
			p.Tick(tick)
		}
		require.True(t, p.IsComplete())

		require.NoError(t, p.StateMachineLoadData([]byte(machine)))
		require.NoError(t, p.StateMachineStart())
		assert.True(t, p.IsPlaying())

		require.NoError(t, p.StateMachineTick())
		assert.Equal(t, "intro", p.StateMachineCurrentState())
	})

	t.Run("FromLeftState", func(t *testing.T) {
		p, _ := loaded(t, nil)
		require.NoError(t, p.StateMachineLoadData([]byte(machine)))
		require.NoError(t, p.StateMachineStart())
		for i := 0; i < 100 && !p.IsComplete(); i++ {
			p.Tick(tick)
		}
		require.True(t, p.IsComplete())

		require.NoError(t, p.StateMachinePostEvent(domain.Click(0, 0)))
		assert.Equal(t, "outro", p.StateMachineCurrentState())

		require.NoError(t, p.StateMachineTick())
		assert.Equal(t, "outro", p.StateMachineCurrentState(), "intro's completion does not apply to outro")
	})
}

func TestTriggerWritesWaitForTick(t *testing.T) {
	p, _ := loaded(t, nil)
	require.NoError(t, p.StateMachineLoadData([]byte(`
initial: a
inputs: [{type: Boolean, name: ready, value: false}]
states:
  - name: a
    transitions:
      - toState: b
        guards: [{type: Boolean, inputName: ready, conditionType: Equal, compareTo: true}]
  - {name: b, transitions: []}
`)))
	require.NoError(t, p.StateMachineStart())

	require.NoError(t, p.SetBooleanTrigger("ready", true))
	assert.Equal(t, "a", p.StateMachineCurrentState())
	require.NoError(t, p.StateMachineTick())
	assert.Equal(t, "b", p.StateMachineCurrentState())

	var typeErr *domain.TriggerTypeError
	assert.ErrorAs(t, p.SetNumericTrigger("ready", 1), &typeErr)
	assert.Error(t, p.FireTrigger("nope"))
}

func TestTweenedTransitionResumesMachine(t *testing.T) {
	p, rec := loaded(t, nil)
	require.NoError(t, p.StateMachineLoadData([]byte(`
initial: a
states:
  - name: a
    transitions:
      - toState: b
        tween: {duration: 0.2}
        guards: [{type: Event, inputName: go}]
  - {name: b, segment: middle, transitions: []}
`)))
	require.NoError(t, p.StateMachineStart())
	require.NoError(t, p.StateMachinePostEvent(domain.Custom("go")))

	assert.Equal(t, domain.MachineTweening, p.StateMachineStatus())
	assert.True(t, p.IsTweening())

	p.Tick(tick)
	p.Tick(tick)
	assert.False(t, p.IsTweening())
	assert.Equal(t, domain.MachineRunning, p.StateMachineStatus())
	assert.Equal(t, "b", p.StateMachineCurrentState())
	assert.Equal(t, domain.MachineStateEntered, rec.machine[len(rec.machine)-1])
}

func TestInvalidDefinitionNotifies(t *testing.T) {
	p, rec := loaded(t, nil)

	assert.Error(t, p.StateMachineLoadData([]byte(`states: [`)))
	assert.Error(t, p.StateMachineLoadData([]byte(`{initial: x, states: [{name: a}]}`)))
	assert.Equal(t, []domain.MachineEventType{domain.MachineError, domain.MachineError}, rec.machine)
	assert.Equal(t, domain.MachineUnloaded, p.StateMachineStatus())
	assert.ErrorIs(t, p.StateMachineStart(), domain.ErrNotLoaded)
}

func TestSnapshotRestore(t *testing.T) {
	p, _ := loaded(t, nil)
	require.NoError(t, p.StateMachineLoadData([]byte(buttonMachine)))
	require.NoError(t, p.StateMachineStart())
	require.NoError(t, p.StateMachinePostEvent(domain.Click(20, 20)))
	p.Tick(tick)
	snap := p.Snapshot()
	assert.Equal(t, "pressed", snap.State)
	assert.Equal(t, 6.0, snap.Frame)

	q, rec := loaded(t, nil)
	require.NoError(t, q.StateMachineLoadData([]byte(buttonMachine)))
	require.NoError(t, q.Restore(snap))

	assert.Equal(t, "pressed", q.StateMachineCurrentState())
	assert.Equal(t, domain.MachineRunning, q.StateMachineStatus())
	assert.Equal(t, q.Triggers(), p.Triggers())
	assert.Empty(t, rec.custom)
}

func TestOpenURLBecomesCustomEvent(t *testing.T) {
	p, rec := loaded(t, nil)
	require.NoError(t, p.StateMachineLoadData([]byte(`
initial: a
states:
  - {name: a, transitions: []}
interactions:
  - type: Click
    layerName: button
    actions: [{type: OpenUrl, url: "https://lottiefiles.com"}]
`)))
	require.NoError(t, p.StateMachineStart())
	require.NoError(t, p.StateMachinePostEvent(domain.Click(20, 20)))
	assert.Equal(t, []string{"OpenUrl:https://lottiefiles.com"}, rec.custom)
}

func bundleArchive(t *testing.T) []byte {
	t.Helper()
	files := map[string]string{
		"manifest.json": `{
		  "version": "2",
		  "initial": {"animation": "main", "state_machine": "button"},
		  "animations": [{"id": "main", "initial_theme": "blue"}, {"id": "alt"}],
		  "themes": [{"id": "blue"}],
		  "state_machines": [{"id": "button"}]
		}`,
		"a/main.json":   testutils.Animation,
		"a/alt.json":    testutils.Animation,
		"t/blue.json":   `{"rules": [{"type": "Color", "id": "accent", "value": [0, 0, 1, 1]}]}`,
		"s/button.json": buttonMachine,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDotLottieBundle(t *testing.T) {
	p, _ := newPlayer(t, nil)
	require.NoError(t, p.LoadDotLottieData(bundleArchive(t), 100, 100))

	assert.Equal(t, "main", p.ActiveAnimationID())
	assert.Equal(t, "blue", p.ActiveThemeID())
	assert.Equal(t, uint32(blue), pixel(p, 20, 20))
	require.NotNil(t, p.Manifest())

	require.NoError(t, p.StateMachineLoad("button"))
	assert.Equal(t, "button", p.ActiveStateMachineID())

	require.NoError(t, p.LoadAnimation("alt"))
	assert.Equal(t, "alt", p.ActiveAnimationID())
	assert.Equal(t, "blue", p.Config().ThemeID, "the active theme follows the animation")

	assert.ErrorIs(t, p.LoadAnimation("ghost"), domain.ErrLoad)
	assert.False(t, p.IsLoaded())
}

func TestSourceResolvesIDs(t *testing.T) {
	src := memory.NewSource().
		Add(domain.EntryAnimation, "main", []byte(testutils.Animation)).
		Add(domain.EntryTheme, "blue", []byte(`{"rules": [{"type": "Color", "id": "accent", "value": "#0000ff"}]}`)).
		Add(domain.EntryStateMachine, "button", []byte(buttonMachine))

	p, _ := newPlayer(t, nil, kinema.WithSource(src))
	require.True(t, p.Resize(100, 100))
	require.NoError(t, p.LoadAnimation("main"))
	assert.Equal(t, "main", p.ActiveAnimationID())
	require.NoError(t, p.SetTheme("blue"))
	assert.Equal(t, uint32(blue), pixel(p, 20, 20))
	require.NoError(t, p.StateMachineLoad("button"))

	assert.Error(t, p.StateMachineLoad("nope"))
	assert.Equal(t, domain.MachineUnloaded, p.StateMachineStatus())
}

func TestReplayIsDeterministic(t *testing.T) {
	run := func() ([]domain.PlayerEventType, []domain.MachineEventType, []uint32) {
		p, rec := loaded(t, nil)
		require.NoError(t, p.StateMachineLoadData([]byte(buttonMachine)))
		require.NoError(t, p.StateMachineStart())
		for i := 0; i < 12; i++ {
			if i%4 == 0 {
				require.NoError(t, p.StateMachinePostEvent(domain.Click(20, 20)))
			}
			p.Tick(tick)
			require.NoError(t, p.StateMachineTick())
		}
		buf := append([]uint32(nil), p.Buffer()...)
		return rec.player, rec.machine, buf
	}

	p1, m1, b1 := run()
	p2, m2, b2 := run()
	assert.Equal(t, p1, p2)
	assert.Equal(t, m1, m2)
	assert.Equal(t, b1, b2)
}

func TestDestroy(t *testing.T) {
	p, _ := loaded(t, nil)
	require.NoError(t, p.StateMachineLoadData([]byte(buttonMachine)))

	p.Destroy()
	assert.False(t, p.IsLoaded())
	assert.Nil(t, p.Buffer())
	assert.Equal(t, domain.MachineUnloaded, p.StateMachineStatus())
}
