package observability

import (
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts player and state machine notifications. One Metrics value
// is shared by every player of a process; the player label keeps their
// series apart.
type Metrics struct {
	events      *prometheus.CounterVec
	renders     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	inputs      *prometheus.CounterVec
	errors      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kinema_player_events_total",
			Help: "Playback lifecycle notifications by type.",
		}, []string{"player", "event"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kinema_frames_rendered_total",
			Help: "Frames rendered.",
		}, []string{"player"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kinema_state_transitions_total",
			Help: "State machine transitions taken.",
		}, []string{"player", "from", "to"}),
		inputs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kinema_state_machine_inputs_total",
			Help: "Trigger changes and fired inputs.",
		}, []string{"player", "input"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kinema_state_machine_errors_total",
			Help: "State machine errors.",
		}, []string{"player"}),
	}
	for _, c := range []prometheus.Collector{m.events, m.renders, m.transitions, m.inputs, m.errors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Player returns an observer recording playback notifications of player.
func (m *Metrics) Player(player string) domain.Observer {
	event := func(name string) func() {
		return func() { m.events.WithLabelValues(player, name).Inc() }
	}
	return domain.PlayerHooks{
		Load:      event("load"),
		LoadError: event("load_error"),
		Play:      event("play"),
		Pause:     event("pause"),
		Stop:      event("stop"),
		Complete:  event("complete"),
		Loop:      func(uint32) { m.events.WithLabelValues(player, "loop").Inc() },
		Render:    func(float64) { m.renders.WithLabelValues(player).Inc() },
	}
}

// Machine returns an observer recording state machine notifications of
// player.
func (m *Metrics) Machine(player string) domain.StateMachineObserver {
	input := func(name string) { m.inputs.WithLabelValues(player, name).Inc() }
	return domain.MachineHooks{
		Transition: func(from, to string) {
			m.transitions.WithLabelValues(player, from, to).Inc()
		},
		StringChange:  func(name, _, _ string) { input(name) },
		NumericChange: func(name string, _, _ float64) { input(name) },
		BooleanChange: func(name string, _, _ bool) { input(name) },
		InputFired:    input,
		Error:         func(string) { m.errors.WithLabelValues(player).Inc() },
	}
}
