// Package runtime implements the interactive state machine that drives a
// player: guarded transitions over a typed trigger context, entry and exit
// actions, pointer interactions and tweened transitions.
//
// The engine is single-owner. Every notification is queued and handed out
// by Drain so that the owner can publish after releasing its lock.
package runtime

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/kinema/internal/logging"
	"github.com/aretw0/kinema/pkg/domain"
)

// DefaultMaxCycles bounds the transitions taken by a single evaluation.
const DefaultMaxCycles = 20

// Engine runs one state machine definition against a Host.
type Engine struct {
	logger    *slog.Logger
	maxCycles int
	openURL   OpenURLPolicy

	prog    *program
	status  domain.MachineStatus
	host    Host
	current string
	saved   domain.Config

	dirty       bool
	fired       string
	lastEvent   *domain.Event
	entered     string
	tweenTarget string

	outbox []domain.MachineEvent
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxCycles overrides DefaultMaxCycles.
func WithMaxCycles(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxCycles = n
		}
	}
}

// WithOpenURLPolicy overrides DefaultOpenURLPolicy.
func WithOpenURLPolicy(p OpenURLPolicy) Option {
	return func(e *Engine) {
		e.openURL = p
	}
}

// New returns an unloaded engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:    logging.NewNop(),
		maxCycles: DefaultMaxCycles,
		openURL:   DefaultOpenURLPolicy(),
		status:    domain.MachineUnloaded,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load validates def and makes it the active definition. A running machine
// is stopped first. On failure the engine is left Unloaded and the error is
// also queued as an error notification.
func (e *Engine) Load(def *domain.Definition) error {
	if e.status == domain.MachineRunning || e.status == domain.MachineTweening {
		e.Stop()
	}
	e.unload()

	prog, err := compile(def)
	if err != nil {
		e.emit(domain.MachineEvent{Type: domain.MachineError, Message: err.Error()})
		return err
	}
	e.prog = prog
	e.status = domain.MachineLoaded
	e.logger.Debug("State machine loaded", "id", def.ID, "states", len(def.States))
	return nil
}

// Fail queues an error notification for a failure detected before the
// definition reached the engine, such as a parse error.
func (e *Engine) Fail(err error) {
	e.emit(domain.MachineEvent{Type: domain.MachineError, Message: err.Error()})
}

// Unload releases the definition.
func (e *Engine) Unload() {
	if e.status == domain.MachineRunning || e.status == domain.MachineTweening {
		e.Stop()
	}
	e.unload()
}

func (e *Engine) unload() {
	e.prog = nil
	e.host = nil
	e.status = domain.MachineUnloaded
	e.current = ""
	e.dirty = false
	e.fired = ""
	e.lastEvent = nil
	e.entered = ""
	e.tweenTarget = ""
}

// Definition returns the loaded definition, or nil.
func (e *Engine) Definition() *domain.Definition {
	if e.prog == nil {
		return nil
	}
	return e.prog.def
}

// Status returns the lifecycle position.
func (e *Engine) Status() domain.MachineStatus { return e.status }

// CurrentState returns the active state name, or "" when not started.
func (e *Engine) CurrentState() string { return e.current }

// Unreachable lists states that no transition chain from the initial
// state reaches, sorted.
func (e *Engine) Unreachable() []string {
	if e.prog == nil {
		return nil
	}
	seen := e.prog.reachable()
	var out []string
	for name := range e.prog.states {
		if !seen[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Start enters the initial state and evaluates it once. The host config
// in effect is restored by Stop.
func (e *Engine) Start(h Host) error {
	if e.status != domain.MachineLoaded && e.status != domain.MachineStopped {
		if e.status == domain.MachineUnloaded {
			return fmt.Errorf("%w: no state machine loaded", domain.ErrNotLoaded)
		}
		return fmt.Errorf("%w: already %s", domain.ErrStateMachine, e.status)
	}
	e.host = h
	e.saved = h.Config()
	e.status = domain.MachineRunning
	e.current = ""
	e.entered = ""
	e.emit(domain.MachineEvent{Type: domain.MachineStart})

	e.enter(e.prog.def.Initial)
	e.emit(domain.MachineEvent{Type: domain.MachineStateEntered, State: e.current})
	if e.prog.states[e.current].def.Final {
		e.Stop()
		return nil
	}
	return e.evaluate(nil)
}

// Stop runs the active state's exit actions and restores the host config
// saved by Start. It reports false when the machine was not running.
func (e *Engine) Stop() bool {
	if e.status != domain.MachineRunning && e.status != domain.MachineTweening {
		return false
	}
	// Exit actions of a tweening machine already ran when the tween began.
	if e.status == domain.MachineRunning {
		if st, ok := e.prog.states[e.current]; ok {
			e.runActions(st.def.ExitActions)
		}
	}
	e.status = domain.MachineStopped
	e.tweenTarget = ""
	if err := e.host.SetConfig(e.saved); err != nil {
		e.logger.Warn("Could not restore player config", "err", err)
	}
	e.emit(domain.MachineEvent{Type: domain.MachineStop})
	return true
}

// PostEvent runs matching interactions, then evaluates transitions with ev
// as the pending event.
func (e *Engine) PostEvent(ev domain.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if err := e.running(); err != nil {
		return err
	}
	e.lastEvent = &ev
	e.interact(ev)
	if e.status != domain.MachineRunning {
		return nil
	}
	return e.evaluate(&ev)
}

// Tick lets the machine observe playback. A completed or looped playback is
// posted as an implicit Complete or LoopComplete event; otherwise guards are
// re-evaluated only when triggers changed since the last evaluation.
func (e *Engine) Tick(completed, looped bool) error {
	if e.status != domain.MachineRunning {
		return nil
	}
	switch {
	case completed:
		return e.PostEvent(domain.Complete())
	case looped:
		return e.PostEvent(domain.LoopComplete())
	case e.dirty:
		return e.evaluate(nil)
	}
	return nil
}

// ResumeFromTween finishes a tweened transition once the host tween ended.
func (e *Engine) ResumeFromTween() error {
	if e.status != domain.MachineTweening {
		return nil
	}
	e.status = domain.MachineRunning
	target := e.tweenTarget
	e.tweenTarget = ""
	e.enter(target)
	e.emit(domain.MachineEvent{Type: domain.MachineStateEntered, State: target})
	if e.prog.states[target].def.Final {
		e.Stop()
		return nil
	}
	return e.evaluate(nil)
}

// OverrideState jumps to name without evaluating guards or running exit
// actions. With evaluate set, transitions are evaluated afterwards.
func (e *Engine) OverrideState(name string, evaluate bool) error {
	if err := e.running(); err != nil {
		return err
	}
	st, ok := e.prog.states[name]
	if !ok || st.def.IsGlobal() {
		return fmt.Errorf("%w: unknown state %q", domain.ErrStateMachine, name)
	}
	from := e.current
	e.enter(name)
	e.emit(
		domain.MachineEvent{Type: domain.MachineTransition, From: from, To: name},
		domain.MachineEvent{Type: domain.MachineStateEntered, State: name},
		domain.MachineEvent{Type: domain.MachineStateExit, State: from},
	)
	if evaluate {
		return e.evaluate(nil)
	}
	return nil
}

// evaluate takes transitions until none matches. The pending event (posted
// or fired) is consumed by the first transition taken.
func (e *Engine) evaluate(ev *domain.Event) error {
	fired := e.fired
	e.fired = ""
	defer func() { e.dirty = false }()

	for cycles := 0; e.status == domain.MachineRunning; cycles++ {
		if cycles >= e.maxCycles {
			msg := "InfiniteLoop"
			e.logger.Warn("State machine cycle bound reached", "state", e.current, "max", e.maxCycles)
			e.emit(domain.MachineEvent{Type: domain.MachineError, Message: msg})
			e.Stop()
			return fmt.Errorf("%w: %s after %d transitions", domain.ErrStateMachine, msg, e.maxCycles)
		}

		ctx := &evalContext{triggers: e.prog.triggers, event: ev, fired: fired, host: e.host}
		t, ok := e.match(ctx)
		if !ok {
			return nil
		}
		ev, fired = nil, ""
		e.take(t)
		if e.fired != "" {
			fired = e.fired
			e.fired = ""
		}
	}
	return nil
}

// match returns the first satisfied transition: GlobalState transitions
// first, then the active state's. Within each list guarded transitions are
// tried in declaration order and the first guardless one is the fallback.
func (e *Engine) match(ctx *evalContext) (transition, bool) {
	if e.prog.global != nil {
		if t, ok := firstMatch(e.prog.global.transitions, ctx, e.current); ok {
			return t, true
		}
	}
	return firstMatch(e.prog.states[e.current].transitions, ctx, "")
}

// firstMatch skips transitions targeting skip.
func firstMatch(ts []transition, ctx *evalContext, skip string) (transition, bool) {
	var fallback *transition
	for i, t := range ts {
		if skip != "" && t.to == skip {
			continue
		}
		if t.guard == nil {
			if fallback == nil {
				fallback = &ts[i]
			}
			continue
		}
		if t.guard.eval(ctx) {
			return t, true
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return transition{}, false
}

// take performs a transition: exit actions, then entry (or the start of a
// tween), then notifications.
func (e *Engine) take(t transition) {
	from := e.current
	e.runActions(e.prog.states[from].def.ExitActions)
	e.logger.Debug("Transition", "from", from, "to", t.to)

	target := e.prog.states[t.to].def
	if t.tween != nil && target.Segment != "" {
		// The host may finish a zero-length tween synchronously and call
		// ResumeFromTween before TweenToMarker returns.
		e.status = domain.MachineTweening
		e.tweenTarget = t.to
		e.emit(
			domain.MachineEvent{Type: domain.MachineTransition, From: from, To: t.to},
			domain.MachineEvent{Type: domain.MachineStateExit, State: from},
		)
		if e.host.TweenToMarker(target.Segment, t.tween.Duration, t.tween.Easing) {
			return
		}
		e.logger.Debug("Tween unavailable, entering directly", "marker", target.Segment)
		e.status = domain.MachineRunning
		e.tweenTarget = ""
		e.enter(t.to)
		e.emit(domain.MachineEvent{Type: domain.MachineStateEntered, State: t.to})
		if target.Final {
			e.Stop()
		}
		return
	}

	e.enter(t.to)
	e.emit(
		domain.MachineEvent{Type: domain.MachineTransition, From: from, To: t.to},
		domain.MachineEvent{Type: domain.MachineStateEntered, State: t.to},
		domain.MachineEvent{Type: domain.MachineStateExit, State: from},
	)
	if target.Final {
		e.Stop()
	}
}

// enter makes name current, applies its playback settings and runs its
// entry actions.
func (e *Engine) enter(name string) {
	e.current = name
	s := e.prog.states[name].def
	if s.Animation != "" && s.Animation != e.host.ActiveAnimationID() {
		if err := e.host.LoadAnimation(s.Animation); err != nil {
			e.logger.Warn("Could not load state animation", "state", name, "animation", s.Animation, "err", err)
		}
	}
	if !s.IsGlobal() {
		e.applyPlayback(s)
	}
	e.runActions(s.EntryActions)
}

// applyPlayback resets the player config to the state's settings, keeping
// interpolation, layout and theme from the current config.
func (e *Engine) applyPlayback(s *domain.State) {
	cur := e.host.Config()
	cfg := domain.DefaultConfig()
	cfg.UseFrameInterpolation = cur.UseFrameInterpolation
	cfg.Layout = cur.Layout
	cfg.ThemeID = cur.ThemeID
	cfg.AnimationID = cur.AnimationID
	cfg.BackgroundColor = cur.BackgroundColor

	if s.Mode != "" {
		cfg.Mode, _ = domain.ParseMode(s.Mode)
	}
	if s.Loop != nil {
		cfg.Loop = *s.Loop
	}
	if s.LoopCount != nil {
		cfg.LoopCount = *s.LoopCount
	}
	if s.Speed != nil {
		cfg.Speed = *s.Speed
	}
	if s.Autoplay != nil {
		cfg.Autoplay = *s.Autoplay
	}
	if s.BackgroundColor != nil {
		cfg.BackgroundColor = *s.BackgroundColor
	}
	cfg.Marker = s.Segment

	if err := e.host.SetConfig(cfg); err != nil {
		e.logger.Warn("Could not apply state config", "state", s.Name, "err", err)
		return
	}
	e.host.Stop()
	if cfg.Autoplay {
		e.host.Play()
	}
}

func (e *Engine) running() error {
	switch e.status {
	case domain.MachineRunning:
		return nil
	case domain.MachineUnloaded:
		return fmt.Errorf("%w: no state machine loaded", domain.ErrNotLoaded)
	}
	return fmt.Errorf("%w: state machine is %s", domain.ErrStateMachine, e.status)
}

func (e *Engine) emit(events ...domain.MachineEvent) {
	e.outbox = append(e.outbox, events...)
}

// Drain returns and clears the queued notifications.
func (e *Engine) Drain() []domain.MachineEvent {
	out := e.outbox
	e.outbox = nil
	return out
}
