package domain

// ActionType tags an Action.
type ActionType string

const (
	ActionIncrement       ActionType = "Increment"
	ActionDecrement       ActionType = "Decrement"
	ActionToggle          ActionType = "Toggle"
	ActionSetBoolean      ActionType = "SetBoolean"
	ActionSetString       ActionType = "SetString"
	ActionSetNumeric      ActionType = "SetNumeric"
	ActionFire            ActionType = "Fire"
	ActionReset           ActionType = "Reset"
	ActionSetTheme        ActionType = "SetTheme"
	ActionResetTheme      ActionType = "ResetTheme"
	ActionSetThemeData    ActionType = "SetThemeData"
	ActionSetFrame        ActionType = "SetFrame"
	ActionSetProgress     ActionType = "SetProgress"
	ActionSetMode         ActionType = "SetMode"
	ActionPlay            ActionType = "Play"
	ActionPause           ActionType = "Pause"
	ActionStop            ActionType = "Stop"
	ActionTweenToMarker   ActionType = "TweenToMarker"
	ActionFireCustomEvent ActionType = "FireCustomEvent"
	ActionOpenURL         ActionType = "OpenUrl"
)

// Action is an entry, exit or interaction side effect. Which fields apply
// depends on Type; Value may be a literal or a "$name" input reference.
type Action struct {
	Type      ActionType `json:"type" yaml:"type" mapstructure:"type"`
	InputName string     `json:"inputName,omitempty" yaml:"inputName,omitempty" mapstructure:"inputName"`
	Value     any        `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
	URL       string     `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`
	Target    string     `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`
	Duration  float64    `json:"duration,omitempty" yaml:"duration,omitempty" mapstructure:"duration"`
	Easing    []float64  `json:"easing,omitempty" yaml:"easing,omitempty" mapstructure:"easing"`
}

// TargetsInput reports whether the action reads or writes a trigger.
func (a Action) TargetsInput() bool {
	switch a.Type {
	case ActionIncrement, ActionDecrement, ActionToggle, ActionSetBoolean,
		ActionSetString, ActionSetNumeric, ActionFire, ActionReset:
		return true
	}
	return false
}

// InteractionType tags an Interaction.
type InteractionType string

const (
	InteractPointerUp      InteractionType = "PointerUp"
	InteractPointerDown    InteractionType = "PointerDown"
	InteractPointerEnter   InteractionType = "PointerEnter"
	InteractPointerMove    InteractionType = "PointerMove"
	InteractPointerExit    InteractionType = "PointerExit"
	InteractClick          InteractionType = "Click"
	InteractOnComplete     InteractionType = "OnComplete"
	InteractOnLoopComplete InteractionType = "OnLoopComplete"
)

// Interaction binds an incoming event to a list of actions, optionally
// restricted to a layer (pointer kinds) or a state (completion kinds).
type Interaction struct {
	Type      InteractionType `json:"type" yaml:"type" mapstructure:"type"`
	LayerName string          `json:"layerName,omitempty" yaml:"layerName,omitempty" mapstructure:"layerName"`
	StateName string          `json:"stateName,omitempty" yaml:"stateName,omitempty" mapstructure:"stateName"`
	Actions   []Action        `json:"actions" yaml:"actions" mapstructure:"actions"`
}
