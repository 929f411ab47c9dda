package runtime_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/kinema/internal/compiler"
	"github.com/aretw0/kinema/internal/runtime"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/stretchr/testify/require"
)

// fakeHost records what the engine asks of the player.
type fakeHost struct {
	cfg     domain.Config
	anim    string
	calls   []string
	layers  map[string][4]float64
	noTween bool
	theme   string
	slots   string
}

func newHost() *fakeHost {
	return &fakeHost{cfg: domain.DefaultConfig(), layers: map[string][4]float64{}}
}

func (h *fakeHost) Config() domain.Config { return h.cfg }

func (h *fakeHost) SetConfig(cfg domain.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	h.cfg = cfg
	h.calls = append(h.calls, "config:"+cfg.Mode.String())
	return nil
}

func (h *fakeHost) ActiveAnimationID() string { return h.anim }

func (h *fakeHost) LoadAnimation(id string) error {
	h.anim = id
	h.calls = append(h.calls, "load:"+id)
	return nil
}

func (h *fakeHost) Play() bool  { h.calls = append(h.calls, "play"); return true }
func (h *fakeHost) Pause() bool { h.calls = append(h.calls, "pause"); return true }
func (h *fakeHost) Stop() bool  { h.calls = append(h.calls, "stop"); return true }

func (h *fakeHost) SetFrame(f float64) bool {
	h.calls = append(h.calls, fmt.Sprintf("frame:%g", f))
	return f >= 0
}

func (h *fakeHost) SetProgress(p float64) bool {
	h.calls = append(h.calls, fmt.Sprintf("progress:%g", p))
	return p >= 0 && p <= 1
}

func (h *fakeHost) TweenToMarker(marker string, duration float64, _ []float64) bool {
	if h.noTween {
		return false
	}
	h.calls = append(h.calls, fmt.Sprintf("tween:%s:%g", marker, duration))
	return true
}

func (h *fakeHost) SetTheme(id string) error {
	h.theme = id
	return nil
}

func (h *fakeHost) ResetTheme() { h.theme = "" }

func (h *fakeHost) SetSlots(data string) error {
	h.slots = data
	return nil
}

func (h *fakeHost) HitTest(layer string, x, y float64) bool {
	r, ok := h.layers[layer]
	return ok && x >= r[0] && y >= r[1] && x < r[0]+r[2] && y < r[1]+r[3]
}

func (h *fakeHost) has(call string) bool {
	for _, c := range h.calls {
		if c == call {
			return true
		}
	}
	return false
}

func parse(t *testing.T, src string) *domain.Definition {
	t.Helper()
	def, err := compiler.NewParser().ParseDefinition([]byte(src))
	require.NoError(t, err)
	return def
}

// started loads src, starts it against a fresh host and drops the start
// notifications.
func started(t *testing.T, src string, opts ...runtime.Option) (*runtime.Engine, *fakeHost) {
	t.Helper()
	e := runtime.New(opts...)
	require.NoError(t, e.Load(parse(t, src)))
	h := newHost()
	require.NoError(t, e.Start(h))
	e.Drain()
	return e, h
}

func types(events []domain.MachineEvent) []domain.MachineEventType {
	out := make([]domain.MachineEventType, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Type)
	}
	return out
}

func entered(events []domain.MachineEvent) []string {
	var out []string
	for _, ev := range events {
		if ev.Type == domain.MachineStateEntered {
			out = append(out, ev.State)
		}
	}
	return out
}
