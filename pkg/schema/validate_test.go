package schema

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	s := Schema{
		"name":   String(),
		"offset": Unit(),
		"hold":   Optional(Bool()),
	}

	tests := []struct {
		name       string
		data       map[string]any
		wantErrors int
	}{
		{"valid", map[string]any{"name": "a", "offset": 0.5}, 0},
		{"optional present", map[string]any{"name": "a", "offset": 0.5, "hold": true}, 0},
		{"optional wrong type", map[string]any{"name": "a", "offset": 0.5, "hold": "yes"}, 1},
		{"missing required", map[string]any{"name": "a"}, 1},
		{"all wrong", map[string]any{"name": 1, "offset": 2.0}, 2},
		{"extra fields ignored", map[string]any{"name": "a", "offset": 0.0, "other": 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(s, tt.data)
			got := len(ValidationErrors(err))
			if got != tt.wantErrors {
				t.Errorf("Validate() = %v, want %d errors", err, tt.wantErrors)
			}
		})
	}
}

func TestValidateEmptySchema(t *testing.T) {
	if err := Validate(nil, map[string]any{"x": 1}); err != nil {
		t.Errorf("empty schema should accept anything: %v", err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := Validate(Schema{"offset": Unit()}, map[string]any{})
	var ve *ValidationError
	if !errors.As(ValidationErrors(err)[0], &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.Key != "offset" || ve.Reason != "required" {
		t.Errorf("unexpected error: %+v", ve)
	}
	if !strings.Contains(err.Error(), "offset") {
		t.Errorf("message should name the field: %s", err)
	}
}

func TestAggregateErrorMessage(t *testing.T) {
	err := Validate(Schema{"offset": Unit(), "scale": Unit()}, map[string]any{})
	if got := len(ValidationErrors(fmt.Errorf("wrapped: %w", err))); got != 2 {
		t.Fatalf("expected 2 errors through wrapping, got %d", got)
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "2 invalid slots: ") || !strings.Contains(msg, `slot "offset": required`) {
		t.Errorf("unexpected message: %s", msg)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("errors.As should reach the first ValidationError")
	}
}
