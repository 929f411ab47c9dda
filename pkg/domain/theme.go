package domain

import "encoding/json"

// SlotType tags a theme rule and the slot value it produces.
type SlotType string

const (
	SlotColor    SlotType = "Color"
	SlotScalar   SlotType = "Scalar"
	SlotGradient SlotType = "Gradient"
)

// Theme is a named set of slot overrides.
type Theme struct {
	ID    string      `json:"id,omitempty"`
	Rules []ThemeRule `json:"rules"`
}

// ThemeRule overrides one slot. Value and Keyframes are kept raw here and
// decoded per Type by the theming package.
type ThemeRule struct {
	Type       SlotType        `json:"type"`
	ID         string          `json:"id"`
	Animations []string        `json:"animations,omitempty"`
	Value      json.RawMessage `json:"value,omitempty"`
	Keyframes  json.RawMessage `json:"keyframes,omitempty"`
}

// AppliesTo reports whether the rule is active for the given animation.
func (r ThemeRule) AppliesTo(animationID string) bool {
	if len(r.Animations) == 0 {
		return true
	}
	for _, id := range r.Animations {
		if id == animationID {
			return true
		}
	}
	return false
}

// GradientStop is a color at an offset in [0,1].
type GradientStop struct {
	Offset float64    `json:"offset"`
	Color  [4]float64 `json:"color"`
}

// Tangent is a bezier handle of a keyframe, in normalized time/value space.
type Tangent struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SlotValue is a resolved override handed to the rasterizer for one frame.
type SlotValue struct {
	Type   SlotType       `json:"type"`
	Color  [4]float64     `json:"color,omitempty"`
	Scalar float64        `json:"scalar,omitempty"`
	Stops  []GradientStop `json:"stops,omitempty"`
}
