package schema

import (
	"fmt"
	"math"
	"testing"
)

func TestStringType(t *testing.T) {
	typ := String()

	if typ.Name() != "string" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "string")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"hello", false},
		{"", false},
		{42, true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestNumberTypes(t *testing.T) {
	tests := []struct {
		typ     Type
		value   any
		wantErr bool
	}{
		{Number(), 42.5, false},
		{Number(), -3, false},
		{Number(), math.NaN(), true},
		{Number(), math.Inf(1), true},
		{Number(), "1", true},
		{Unit(), 0.0, false},
		{Unit(), 1.0, false},
		{Unit(), 0.5, false},
		{Unit(), 1.01, true},
		{Unit(), -0.1, true},
	}

	for _, tt := range tests {
		err := tt.typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Validate(%v) error = %v, wantErr %v", tt.typ.Name(), tt.value, err, tt.wantErr)
		}
	}
}

func TestBoolType(t *testing.T) {
	typ := Bool()
	if err := typ.Validate(true); err != nil {
		t.Errorf("Validate(true) error = %v", err)
	}
	if err := typ.Validate("true"); err == nil {
		t.Error("Validate(\"true\") should fail")
	}
}

func TestColorType(t *testing.T) {
	typ := Color()

	tests := []struct {
		value   any
		wantErr bool
	}{
		{[]any{1.0, 0.0, 0.0}, false},
		{[]any{1.0, 0.0, 0.0, 0.5}, false},
		{[]float64{0.2, 0.4, 0.6}, false},
		{"#ff8800", false},
		{"#FF8800", false},
		{"red", true},
		{[]any{1.0, 0.0}, true},
		{[]any{1.0, 0.0, 0.0, 0.0, 0.0}, true},
		{[]any{2.0, 0.0, 0.0}, true},
		{[]any{"1", 0.0, 0.0}, true},
		{42, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestSliceType(t *testing.T) {
	typ := Slice(Number())

	if typ.Name() != "[number]" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "[number]")
	}

	if err := typ.Validate([]any{1.0, 2.0}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := typ.Validate([]any{}); err != nil {
		t.Errorf("empty slice should pass: %v", err)
	}
	if err := typ.Validate([]any{1.0, "x"}); err == nil {
		t.Error("mixed slice should fail")
	}
	if err := NonEmpty(Number()).Validate([]any{}); err == nil {
		t.Error("NonEmpty should reject an empty slice")
	}
}

func TestObjectType(t *testing.T) {
	typ := Object(Schema{"x": Number(), "y": Number()})

	if typ.Name() != "{x,y}" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "{x,y}")
	}
	if err := typ.Validate(map[string]any{"x": 1.0, "y": 2.0}); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	if err := typ.Validate(map[string]any{"x": 1.0}); err == nil {
		t.Error("missing y should fail")
	}
	if err := typ.Validate([]any{1.0}); err == nil {
		t.Error("non-object should fail")
	}
}

func TestCustomType(t *testing.T) {
	positive := Custom("positive", func(v any) error {
		f, ok := v.(float64)
		if !ok || f <= 0 {
			return fmt.Errorf("must be positive")
		}
		return nil
	})

	if positive.Name() != "positive" {
		t.Errorf("Name() = %q", positive.Name())
	}
	if err := positive.Validate(3.0); err != nil {
		t.Errorf("Validate(3) error = %v", err)
	}
	if err := positive.Validate(-1.0); err == nil {
		t.Error("Validate(-1) should fail")
	}
}
