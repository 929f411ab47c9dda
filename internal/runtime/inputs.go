package runtime

import (
	"fmt"
	"math"

	"github.com/aretw0/kinema/pkg/domain"
)

// SetBoolean writes a Boolean trigger.
func (e *Engine) SetBoolean(name string, v bool) error {
	return e.write(name, domain.BoolValue(v), false)
}

// SetNumeric writes a Numeric trigger. Non-finite values are rejected.
func (e *Engine) SetNumeric(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be finite", domain.ErrInvalidParameter, name)
	}
	return e.write(name, domain.NumberValue(v), false)
}

// SetString writes a String trigger.
func (e *Engine) SetString(name string, v string) error {
	return e.write(name, domain.StringValue(v), false)
}

// Fire fires an Event trigger and evaluates transitions right away, since
// the fired name only lives until the next evaluation.
func (e *Engine) Fire(name string) error {
	if err := e.fire(name); err != nil {
		return err
	}
	if e.status != domain.MachineRunning {
		e.fired = ""
		return nil
	}
	return e.evaluate(nil)
}

// ResetTrigger restores the declared default of name.
func (e *Engine) ResetTrigger(name string) error {
	return e.reset(name, false)
}

// Trigger returns the current value of name.
func (e *Engine) Trigger(name string) (domain.Value, bool) {
	if e.prog == nil {
		return domain.Value{}, false
	}
	return e.prog.triggers.Get(name)
}

// Triggers copies every non-event trigger value.
func (e *Engine) Triggers() map[string]domain.Value {
	if e.prog == nil {
		return nil
	}
	return e.prog.triggers.Values()
}

// TriggerNames lists the declared inputs in declaration order.
func (e *Engine) TriggerNames() []string {
	if e.prog == nil {
		return nil
	}
	return e.prog.triggers.Names()
}

func (e *Engine) writable() error {
	switch e.status {
	case domain.MachineUnloaded:
		return fmt.Errorf("%w: no state machine loaded", domain.ErrNotLoaded)
	case domain.MachineTweening:
		return fmt.Errorf("%w: triggers are frozen while tweening", domain.ErrStateMachine)
	}
	return nil
}

// write sets a trigger and queues its value-change notification. Every
// successful write notifies, even when the value is unchanged.
func (e *Engine) write(name string, v domain.Value, fromAction bool) error {
	if err := e.writable(); err != nil {
		return err
	}
	if v.Type == domain.TriggerEvent {
		return fmt.Errorf("%w: event trigger %q can only be fired", domain.ErrStateMachine, name)
	}
	old, _, err := e.prog.triggers.Set(name, v)
	if err != nil {
		if !fromAction {
			e.logger.Warn("Rejected trigger write", "name", name, "err", err)
		}
		return err
	}
	e.dirty = true
	e.emitChange(name, old, v)
	return nil
}

func (e *Engine) reset(name string, fromAction bool) error {
	if err := e.writable(); err != nil {
		return err
	}
	typ, ok := e.prog.triggers.Type(name)
	if ok && typ == domain.TriggerEvent {
		return fmt.Errorf("%w: event trigger %q has no value", domain.ErrStateMachine, name)
	}
	old, def, err := e.prog.triggers.Reset(name)
	if err != nil {
		return err
	}
	e.dirty = true
	e.emitChange(name, old, def)
	return nil
}

func (e *Engine) fire(name string) error {
	if err := e.writable(); err != nil {
		return err
	}
	typ, ok := e.prog.triggers.Type(name)
	if !ok {
		return fmt.Errorf("%w: unknown trigger %q", domain.ErrStateMachine, name)
	}
	if typ != domain.TriggerEvent {
		return &domain.TriggerTypeError{Name: name, Want: typ, Got: domain.TriggerEvent}
	}
	e.fired = name
	e.dirty = true
	e.emit(domain.MachineEvent{Type: domain.MachineInputFired, Name: name})
	return nil
}

func (e *Engine) emitChange(name string, old, v domain.Value) {
	ev := domain.MachineEvent{Name: name, Old: &old, New: &v}
	switch v.Type {
	case domain.TriggerBoolean:
		ev.Type = domain.MachineBooleanChange
	case domain.TriggerNumeric:
		ev.Type = domain.MachineNumericChange
	case domain.TriggerString:
		ev.Type = domain.MachineStringChange
	}
	e.emit(ev)
}

// Snapshot captures the active state and trigger values. Frame is left for
// the caller, who owns playback.
func (e *Engine) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{State: e.current, Status: e.status}
	if e.prog != nil {
		snap.MachineID = e.prog.def.ID
		snap.Triggers = e.prog.triggers.Values()
	}
	if snap.Status == domain.MachineTweening {
		snap.State = e.tweenTarget
		snap.Status = domain.MachineRunning
	}
	return snap
}

// Restore puts the machine back into a snapshotted state. It never runs
// actions or applies playback settings; a running snapshot needs a host.
func (e *Engine) Restore(h Host, snap domain.Snapshot) error {
	if e.prog == nil {
		return fmt.Errorf("%w: no state machine loaded", domain.ErrNotLoaded)
	}
	if snap.MachineID != "" && e.prog.def.ID != "" && snap.MachineID != e.prog.def.ID {
		return fmt.Errorf("%w: snapshot of %q cannot restore %q", domain.ErrStateMachine, snap.MachineID, e.prog.def.ID)
	}
	if snap.State != "" {
		st, ok := e.prog.states[snap.State]
		if !ok || st.def.IsGlobal() {
			return fmt.Errorf("%w: snapshot state %q is not defined", domain.ErrStateMachine, snap.State)
		}
	}
	live := snap.Status == domain.MachineRunning || snap.Status == domain.MachineTweening
	if live && (h == nil || snap.State == "") {
		return fmt.Errorf("%w: running snapshot needs a host and a state", domain.ErrStateMachine)
	}
	if err := e.prog.triggers.restore(snap.Triggers); err != nil {
		return err
	}

	e.current = snap.State
	e.tweenTarget = ""
	e.fired = ""
	e.dirty = false
	switch {
	case live:
		if e.status != domain.MachineRunning {
			e.saved = h.Config()
		}
		e.host = h
		e.status = domain.MachineRunning
	case snap.Status == domain.MachineStopped:
		e.status = domain.MachineStopped
	default:
		e.status = domain.MachineLoaded
		e.current = ""
	}
	return nil
}
