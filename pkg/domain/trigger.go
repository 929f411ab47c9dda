package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// TriggerType is the declared type of a state machine input.
type TriggerType string

const (
	TriggerBoolean TriggerType = "Boolean"
	TriggerString  TriggerType = "String"
	TriggerNumeric TriggerType = "Numeric"
	TriggerEvent   TriggerType = "Event"
)

// Valid reports whether t is a known trigger type.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerBoolean, TriggerString, TriggerNumeric, TriggerEvent:
		return true
	}
	return false
}

// Value is a typed trigger value. Only the field matching Type is meaningful.
// Event triggers carry no value.
type Value struct {
	Type   TriggerType
	Bool   bool
	Number float64
	Text   string
}

// BoolValue wraps b as a Boolean value.
func BoolValue(b bool) Value { return Value{Type: TriggerBoolean, Bool: b} }

// NumberValue wraps n as a Numeric value.
func NumberValue(n float64) Value { return Value{Type: TriggerNumeric, Number: n} }

// StringValue wraps s as a String value.
func StringValue(s string) Value { return Value{Type: TriggerString, Text: s} }

// Equal compares two values including their type.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TriggerBoolean:
		return v.Bool == o.Bool
	case TriggerNumeric:
		return v.Number == o.Number
	case TriggerString:
		return v.Text == o.Text
	}
	return true
}

// Interface returns the plain Go value (bool, float64, string or nil).
func (v Value) Interface() any {
	switch v.Type {
	case TriggerBoolean:
		return v.Bool
	case TriggerNumeric:
		return v.Number
	case TriggerString:
		return v.Text
	}
	return nil
}

func (v Value) String() string {
	switch v.Type {
	case TriggerBoolean:
		return strconv.FormatBool(v.Bool)
	case TriggerNumeric:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case TriggerString:
		return v.Text
	}
	return string(v.Type)
}

type valueJSON struct {
	Type  TriggerType `json:"type"`
	Value any         `json:"value,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(valueJSON{Type: v.Type, Value: v.Interface()})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw valueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw.Type, raw.Value)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ValueOf converts a decoded JSON/YAML scalar into a Value of type t.
// A nil raw yields the zero value of the type.
func ValueOf(t TriggerType, raw any) (Value, error) {
	switch t {
	case TriggerBoolean:
		if raw == nil {
			return BoolValue(false), nil
		}
		b, ok := raw.(bool)
		if !ok {
			return Value{}, fmt.Errorf("%w: expected bool, got %T", ErrInvalidParameter, raw)
		}
		return BoolValue(b), nil
	case TriggerNumeric:
		if raw == nil {
			return NumberValue(0), nil
		}
		n, ok := toFloat(raw)
		if !ok {
			return Value{}, fmt.Errorf("%w: expected number, got %T", ErrInvalidParameter, raw)
		}
		return NumberValue(n), nil
	case TriggerString:
		if raw == nil {
			return StringValue(""), nil
		}
		s, ok := raw.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: expected string, got %T", ErrInvalidParameter, raw)
		}
		return StringValue(s), nil
	case TriggerEvent:
		return Value{Type: TriggerEvent}, nil
	}
	return Value{}, fmt.Errorf("%w: unknown trigger type %q", ErrInvalidParameter, t)
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// TriggerDecl declares a state machine input and its default value.
type TriggerDecl struct {
	Type  TriggerType `json:"type" yaml:"type" mapstructure:"type"`
	Name  string      `json:"name" yaml:"name" mapstructure:"name"`
	Value any         `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}
