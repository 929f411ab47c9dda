package schema

import (
	"fmt"
	"sort"

	"github.com/aretw0/kinema/pkg/domain"
)

var tangent = Object(Schema{"x": Number(), "y": Number()})

var stop = Object(Schema{"offset": Unit(), "color": Color()})

func keyframes(value Type) Type {
	return NonEmpty(Object(Schema{
		"frame":      Number(),
		"value":      value,
		"inTangent":  Optional(tangent),
		"outTangent": Optional(tangent),
		"hold":       Optional(Bool()),
	}))
}

// RuleSchema returns the schema of a slot override of type t. Exactly one
// of "value" and "keyframes" must be present; RuleSchema covers the shape,
// ValidateSlot checks the exclusivity.
func RuleSchema(t domain.SlotType) (Schema, error) {
	var value Type
	switch t {
	case domain.SlotColor:
		value = Color()
	case domain.SlotScalar:
		value = Number()
	case domain.SlotGradient:
		value = NonEmpty(stop)
	default:
		return nil, fmt.Errorf("%w: unknown slot type %q", domain.ErrInvalidParameter, t)
	}
	return Schema{
		"type":      String(),
		"value":     Optional(value),
		"keyframes": Optional(keyframes(value)),
	}, nil
}

// ValidateSlot checks one decoded slot override.
func ValidateSlot(id string, raw any) error {
	obj, ok := raw.(map[string]any)
	if !ok {
		return &ValidationError{Key: id, Reason: "expected object", Value: raw}
	}
	typ, _ := obj["type"].(string)
	s, err := RuleSchema(domain.SlotType(typ))
	if err != nil {
		return &ValidationError{Key: id, Reason: err.Error(), Value: obj["type"]}
	}
	if err := Validate(s, obj); err != nil {
		return fmt.Errorf("slot %q: %w", id, err)
	}
	_, hasValue := obj["value"]
	_, hasFrames := obj["keyframes"]
	if hasValue == hasFrames {
		return &ValidationError{Key: id, Reason: "exactly one of value or keyframes is required"}
	}
	return nil
}

// ValidateSlots checks a whole slot payload (slot id to override). All
// failures are reported, sorted by slot id.
func ValidateSlots(payload map[string]any) error {
	ids := make([]string, 0, len(payload))
	for id := range payload {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs []error
	for _, id := range ids {
		if err := ValidateSlot(id, payload[id]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
