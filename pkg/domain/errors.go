package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned for non-finite, out-of-range or malformed arguments.
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrNotLoaded is returned when an operation needs a document or definition that is not loaded.
var ErrNotLoaded = errors.New("not loaded")

// ErrLoad is returned when a document, bundle or theme cannot be parsed.
var ErrLoad = errors.New("load error")

// ErrStateMachine is returned for invalid definitions and illegal state machine operations.
var ErrStateMachine = errors.New("state machine error")

// ErrRender is returned when the rasterizer fails.
var ErrRender = errors.New("render error")

// ErrSnapshotNotFound is returned when a snapshot ID cannot be found in the store.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// DefinitionError describes why a state machine definition was rejected.
type DefinitionError struct {
	Path   string // e.g. states[2].transitions[0]
	Reason string
}

func (e *DefinitionError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid definition: %s", e.Reason)
	}
	return fmt.Sprintf("invalid definition at %s: %s", e.Path, e.Reason)
}

func (e *DefinitionError) Unwrap() error {
	return ErrStateMachine
}

// TriggerTypeError is returned when a trigger is written with a value of the wrong type.
type TriggerTypeError struct {
	Name string
	Want TriggerType
	Got  TriggerType
}

func (e *TriggerTypeError) Error() string {
	return fmt.Sprintf("trigger %q is %s, got %s", e.Name, e.Want, e.Got)
}

func (e *TriggerTypeError) Unwrap() error {
	return ErrStateMachine
}
