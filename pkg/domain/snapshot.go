package domain

// MachineStatus is the lifecycle position of a state machine.
type MachineStatus string

const (
	MachineUnloaded MachineStatus = "unloaded"
	MachineLoaded   MachineStatus = "loaded"
	MachineRunning  MachineStatus = "running"
	MachineTweening MachineStatus = "tweening"
	MachineStopped  MachineStatus = "stopped"
)

// Snapshot captures what is needed to resume a state machine: the active
// state and the trigger context. It never carries the definition itself.
type Snapshot struct {
	// ID identifies the snapshot in a store (usually the player session).
	ID string `json:"id"`

	// MachineID is the definition the snapshot was taken from.
	MachineID string `json:"machine_id,omitempty"`

	// State is the active state name.
	State string `json:"state"`

	Status MachineStatus `json:"status"`

	// Triggers holds the current value of every declared input.
	Triggers map[string]Value `json:"triggers,omitempty"`

	// Frame is the playback position when the snapshot was taken.
	Frame float64 `json:"frame"`
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	if s.Triggers != nil {
		c.Triggers = make(map[string]Value, len(s.Triggers))
		for k, v := range s.Triggers {
			c.Triggers[k] = v
		}
	}
	return &c
}
