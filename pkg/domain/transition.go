package domain

// Transition is a guarded edge from the enclosing state to ToState.
// All guards must hold; a transition without guards always matches.
type Transition struct {
	Type    string     `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	ToState string     `json:"toState" yaml:"toState" mapstructure:"toState"`
	Guards  []Guard    `json:"guards,omitempty" yaml:"guards,omitempty" mapstructure:"guards"`
	Tween   *TweenSpec `json:"tween,omitempty" yaml:"tween,omitempty" mapstructure:"tween"`
}

// IsWildcard reports whether the transition matches unconditionally.
func (t Transition) IsWildcard() bool {
	return len(t.Guards) == 0
}

// TweenSpec makes a transition interpolate towards the target state's
// segment instead of jumping.
type TweenSpec struct {
	Duration float64   `json:"duration" yaml:"duration" mapstructure:"duration"` // seconds
	Easing   []float64 `json:"easing,omitempty" yaml:"easing,omitempty" mapstructure:"easing"`
}

// GuardKind tags a guard node. Leaf kinds compare a trigger or match an
// event; All, Any and Not combine child guards.
type GuardKind string

const (
	GuardNumeric GuardKind = "Numeric"
	GuardString  GuardKind = "String"
	GuardBoolean GuardKind = "Boolean"
	GuardEvent   GuardKind = "Event"
	GuardAll     GuardKind = "All"
	GuardAny     GuardKind = "Any"
	GuardNot     GuardKind = "Not"
)

// Condition is a comparison operator used by trigger guards.
type Condition string

const (
	CondEqual              Condition = "Equal"
	CondNotEqual           Condition = "NotEqual"
	CondGreaterThan        Condition = "GreaterThan"
	CondGreaterThanOrEqual Condition = "GreaterThanOrEqual"
	CondLessThan           Condition = "LessThan"
	CondLessThanOrEqual    Condition = "LessThanOrEqual"
)

// Ordered reports whether the operator needs an ordering (numeric only).
func (c Condition) Ordered() bool {
	switch c {
	case CondGreaterThan, CondGreaterThanOrEqual, CondLessThan, CondLessThanOrEqual:
		return true
	}
	return false
}

// Guard is the authored form of a guard expression. CompareTo may be a
// literal or a "$name" reference to another input.
type Guard struct {
	Type          GuardKind `json:"type" yaml:"type" mapstructure:"type"`
	InputName     string    `json:"inputName,omitempty" yaml:"inputName,omitempty" mapstructure:"inputName"`
	ConditionType Condition `json:"conditionType,omitempty" yaml:"conditionType,omitempty" mapstructure:"conditionType"`
	CompareTo     any       `json:"compareTo,omitempty" yaml:"compareTo,omitempty" mapstructure:"compareTo"`
	LayerName     string    `json:"layerName,omitempty" yaml:"layerName,omitempty" mapstructure:"layerName"`
	Guards        []Guard   `json:"guards,omitempty" yaml:"guards,omitempty" mapstructure:"guards"`
}

// ReferencesEvent reports whether the guard tree contains an event match.
func (g Guard) ReferencesEvent() bool {
	if g.Type == GuardEvent {
		return true
	}
	for _, c := range g.Guards {
		if c.ReferencesEvent() {
			return true
		}
	}
	return false
}
