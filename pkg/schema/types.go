package schema

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "color").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// NumberType validates finite numeric values, optionally within a range.
type NumberType struct {
	min, max float64
}

func (t *NumberType) Name() string {
	if t.min == 0 && t.max == 1 {
		return "unit"
	}
	return "number"
}

func (t *NumberType) Validate(value any) error {
	f, ok := toFloat(value)
	if !ok {
		return fmt.Errorf("expected number, got %T", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("expected finite number, got %v", f)
	}
	if f < t.min || f > t.max {
		return fmt.Errorf("expected number in [%g, %g], got %g", t.min, t.max, f)
	}
	return nil
}

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

// ColorType validates an RGB(A) color: 3 or 4 numbers in [0,1], or a
// "#rrggbb" hex string.
type ColorType struct{}

func (t *ColorType) Name() string { return "color" }

func (t *ColorType) Validate(value any) error {
	if s, ok := value.(string); ok {
		if _, err := colorful.Hex(s); err != nil {
			return fmt.Errorf("invalid hex color %q", s)
		}
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected color, got %T", value)
	}
	if rv.Len() != 3 && rv.Len() != 4 {
		return fmt.Errorf("expected 3 or 4 color channels, got %d", rv.Len())
	}
	unit := Unit()
	for i := 0; i < rv.Len(); i++ {
		if err := unit.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
	}
	return nil
}

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
	minLen   int
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}
	if rv.Len() < t.minLen {
		return fmt.Errorf("expected at least %d elements, got %d", t.minLen, rv.Len())
	}

	// Validate each element
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// ObjectType validates a JSON object against a nested Schema.
type ObjectType struct {
	fields Schema
}

func (t *ObjectType) Name() string {
	keys := make([]string, 0, len(t.fields))
	for k := range t.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "{" + strings.Join(keys, ",") + "}"
}

func (t *ObjectType) Validate(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	return Validate(t.fields, m)
}

// OptionalType marks a schema field that may be absent.
type OptionalType struct {
	Type
}

func (t *OptionalType) Name() string { return t.Type.Name() + "?" }

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Number creates a validator for any finite number.
func Number() Type { return &NumberType{min: math.Inf(-1), max: math.Inf(1)} }

// Unit creates a validator for numbers in [0,1].
func Unit() Type { return &NumberType{min: 0, max: 1} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Color creates a color validator.
func Color() Type { return &ColorType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// NonEmpty creates a slice validator that requires at least one element.
func NonEmpty(elemType Type) Type {
	return &SliceType{elemType: elemType, minLen: 1}
}

// Object creates a validator for nested objects.
func Object(fields Schema) Type {
	return &ObjectType{fields: fields}
}

// Optional allows the field to be missing from the data.
func Optional(t Type) Type {
	return &OptionalType{Type: t}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	}
	return 0, false
}
