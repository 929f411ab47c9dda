package kinema

import (
	"fmt"

	"github.com/aretw0/kinema/pkg/domain"
)

// StateMachineLoad loads the definition called id from the bundle or
// source. A running machine is stopped first.
func (p *Player) StateMachineLoad(id string) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	data, err := p.resolve(domain.EntryStateMachine, id)
	if err != nil {
		p.machine.Unload()
		p.machineID = ""
		return err
	}
	return p.loadMachine(data, id)
}

// StateMachineLoadData loads a JSON or YAML definition given inline.
func (p *Player) StateMachineLoadData(data []byte) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.loadMachine(data, "")
}

// loadMachine parses and validates a definition. On failure the machine is
// left unloaded and an error notification is queued.
func (p *Player) loadMachine(data []byte, id string) error {
	def, err := p.parser.ParseDefinition(data)
	if err != nil {
		p.machine.Unload()
		p.machineID = ""
		p.machine.Fail(err)
		return err
	}
	if def.ID == "" {
		def.ID = id
	}
	return p.loadDefinition(def)
}

// StateMachineLoadDefinition loads an already parsed definition, such as
// one produced by package dsl.
func (p *Player) StateMachineLoadDefinition(def *domain.Definition) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	if def == nil {
		return fmt.Errorf("%w: nil definition", domain.ErrInvalidParameter)
	}
	return p.loadDefinition(def)
}

func (p *Player) loadDefinition(def *domain.Definition) error {
	if err := p.machine.Load(def); err != nil {
		p.machineID = ""
		return err
	}
	p.machineID = def.ID
	return nil
}

// StateMachineStart enters the initial state.
func (p *Player) StateMachineStart() error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	p.completed, p.looped = false, false
	return p.machine.Start(host{p})
}

// StateMachineStop runs the active state's exit actions and restores the
// playback config in effect at start. It is idempotent.
func (p *Player) StateMachineStop() bool {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.machine.Stop()
}

// StateMachinePostEvent runs matching interactions and evaluates
// transitions with ev as the pending event.
func (p *Player) StateMachinePostEvent(ev domain.Event) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.machine.PostEvent(ev)
}

// StateMachineTick posts Complete or LoopComplete when playback completed
// or looped since the last call, and re-evaluates guards when triggers
// changed. It never advances playback.
func (p *Player) StateMachineTick() error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	completed, looped := p.completed, p.looped
	p.completed, p.looped = false, false
	return p.machine.Tick(completed, looped)
}

// StateMachineOverrideState jumps to state without evaluating guards. With
// evaluate set, transitions are evaluated afterwards.
func (p *Player) StateMachineOverrideState(state string, evaluate bool) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.machine.OverrideState(state, evaluate)
}

// SetBooleanTrigger writes a boolean input. Writes mark the context dirty;
// transitions are evaluated on the next StateMachineTick.
func (p *Player) SetBooleanTrigger(name string, v bool) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.machine.SetBoolean(name, v)
}

// SetNumericTrigger writes a numeric input.
func (p *Player) SetNumericTrigger(name string, v float64) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.machine.SetNumeric(name, v)
}

// SetStringTrigger writes a string input.
func (p *Player) SetStringTrigger(name string, v string) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.machine.SetString(name, v)
}

// FireTrigger fires an event input and evaluates transitions immediately.
func (p *Player) FireTrigger(name string) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.machine.Fire(name)
}

// ResetTrigger restores an input to its declared default.
func (p *Player) ResetTrigger(name string) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	return p.machine.ResetTrigger(name)
}

// Trigger returns the current value of an input.
func (p *Player) Trigger(name string) (domain.Value, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machine.Trigger(name)
}

// Triggers returns a copy of every input value.
func (p *Player) Triggers() map[string]domain.Value {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machine.Triggers()
}

// StateMachineCurrentState returns the active state, or "".
func (p *Player) StateMachineCurrentState() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machine.CurrentState()
}

// StateMachineStatus returns the machine lifecycle position.
func (p *Player) StateMachineStatus() domain.MachineStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machine.Status()
}

// ActiveStateMachineID returns the id of the loaded definition.
func (p *Player) ActiveStateMachineID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machineID
}

// StateMachineDefinition returns the loaded definition, or nil. Callers
// must not modify it.
func (p *Player) StateMachineDefinition() *domain.Definition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.machine.Definition()
}

// Snapshot captures the state machine and the playback position.
func (p *Player) Snapshot() domain.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	snap := p.machine.Snapshot()
	snap.Frame = p.displayFrame()
	return snap
}

// Restore puts the state machine back into snap and seeks to its frame.
// No actions run. A frame outside the active segment is ignored.
func (p *Player) Restore(snap domain.Snapshot) error {
	p.mu.Lock()
	defer p.unlockAndPublish()
	if err := p.machine.Restore(host{p}, snap); err != nil {
		return err
	}
	if p.controller.IsLoaded() {
		if !p.controller.Seek(snap.Frame) {
			p.logger.Debug("Snapshot frame outside segment", "frame", snap.Frame)
		}
		p.render()
	}
	return nil
}

// Unreachable lists the states of the loaded definition that no
// transition chain from the initial state reaches.
func (p *Player) Unreachable() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.machine.Definition() == nil {
		return nil, fmt.Errorf("%w: no state machine loaded", domain.ErrNotLoaded)
	}
	return p.machine.Unreachable(), nil
}
