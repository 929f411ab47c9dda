package domain

// StateKind distinguishes states that drive playback from the global state
// whose transitions apply everywhere.
type StateKind string

const (
	StatePlayback StateKind = "PlaybackState"
	StateGlobal   StateKind = "GlobalState"
)

// Definition is a parsed, not yet validated state machine.
type Definition struct {
	ID           string        `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Initial      string        `json:"initial" yaml:"initial" mapstructure:"initial"`
	States       []State       `json:"states" yaml:"states" mapstructure:"states"`
	Interactions []Interaction `json:"interactions,omitempty" yaml:"interactions,omitempty" mapstructure:"interactions"`
	Inputs       []TriggerDecl `json:"inputs,omitempty" yaml:"inputs,omitempty" mapstructure:"inputs"`
}

// State returns the state called name.
func (d *Definition) State(name string) (*State, bool) {
	for i := range d.States {
		if d.States[i].Name == name {
			return &d.States[i], true
		}
	}
	return nil, false
}

// Global returns the global state, if the definition declares one.
func (d *Definition) Global() (*State, bool) {
	for i := range d.States {
		if d.States[i].Type == StateGlobal {
			return &d.States[i], true
		}
	}
	return nil, false
}

// Input returns the declaration of the trigger called name.
func (d *Definition) Input(name string) (TriggerDecl, bool) {
	for _, in := range d.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return TriggerDecl{}, false
}

// State is a node of the state machine. Playback fields are optional and
// only applied when set; a nil pointer leaves the player config untouched.
type State struct {
	Type            StateKind    `json:"type" yaml:"type" mapstructure:"type"`
	Name            string       `json:"name" yaml:"name" mapstructure:"name"`
	Animation       string       `json:"animation,omitempty" yaml:"animation,omitempty" mapstructure:"animation"`
	Loop            *bool        `json:"loop,omitempty" yaml:"loop,omitempty" mapstructure:"loop"`
	LoopCount       *uint32      `json:"loopCount,omitempty" yaml:"loopCount,omitempty" mapstructure:"loopCount"`
	Final           bool         `json:"final,omitempty" yaml:"final,omitempty" mapstructure:"final"`
	Autoplay        *bool        `json:"autoplay,omitempty" yaml:"autoplay,omitempty" mapstructure:"autoplay"`
	Mode            string       `json:"mode,omitempty" yaml:"mode,omitempty" mapstructure:"mode"`
	Speed           *float64     `json:"speed,omitempty" yaml:"speed,omitempty" mapstructure:"speed"`
	Segment         string       `json:"segment,omitempty" yaml:"segment,omitempty" mapstructure:"segment"`
	BackgroundColor *uint32      `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty" mapstructure:"backgroundColor"`
	EntryActions    []Action     `json:"entryActions,omitempty" yaml:"entryActions,omitempty" mapstructure:"entryActions"`
	ExitActions     []Action     `json:"exitActions,omitempty" yaml:"exitActions,omitempty" mapstructure:"exitActions"`
	Transitions     []Transition `json:"transitions" yaml:"transitions" mapstructure:"transitions"`
}

// IsGlobal reports whether s is the global state.
func (s *State) IsGlobal() bool {
	return s.Type == StateGlobal
}
