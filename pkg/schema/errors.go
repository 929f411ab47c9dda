package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is one rejected slot or schema key.
type ValidationError struct {
	Key    string
	Reason string
	// Value is the offending input; nil when the key was missing.
	Value any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("slot %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("slot %q: %s, have %T", e.Key, e.Reason, e.Value)
}

// AggregateError collects every failure of one payload so a caller can
// report them together.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("%d invalid slots: %s", len(e.Errors), strings.Join(parts, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error { return e.Errors }

// ValidationErrors returns the failures collected in err, or nil when err
// holds no AggregateError.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
