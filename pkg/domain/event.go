package domain

import (
	"fmt"
	"math"
)

// EventKind identifies the variant of an Event.
type EventKind string

const (
	EventPointerDown  EventKind = "PointerDown"
	EventPointerUp    EventKind = "PointerUp"
	EventPointerMove  EventKind = "PointerMove"
	EventPointerEnter EventKind = "PointerEnter"
	EventPointerExit  EventKind = "PointerExit"
	EventClick        EventKind = "Click"
	EventCustom       EventKind = "Custom"
	EventComplete     EventKind = "Complete"
	EventLoopComplete EventKind = "LoopComplete"
)

// Event is an input posted to the state machine. Pointer variants carry
// pixel coordinates; Custom carries a name.
type Event struct {
	Kind EventKind `json:"kind"`
	X    float64   `json:"x,omitempty"`
	Y    float64   `json:"y,omitempty"`
	Name string    `json:"name,omitempty"`
}

func PointerDown(x, y float64) Event  { return Event{Kind: EventPointerDown, X: x, Y: y} }
func PointerUp(x, y float64) Event    { return Event{Kind: EventPointerUp, X: x, Y: y} }
func PointerMove(x, y float64) Event  { return Event{Kind: EventPointerMove, X: x, Y: y} }
func PointerEnter(x, y float64) Event { return Event{Kind: EventPointerEnter, X: x, Y: y} }
func PointerExit(x, y float64) Event  { return Event{Kind: EventPointerExit, X: x, Y: y} }
func Click(x, y float64) Event        { return Event{Kind: EventClick, X: x, Y: y} }
func Custom(name string) Event        { return Event{Kind: EventCustom, Name: name} }
func Complete() Event                 { return Event{Kind: EventComplete} }
func LoopComplete() Event             { return Event{Kind: EventLoopComplete} }

// IsPointer reports whether the event carries coordinates.
func (e Event) IsPointer() bool {
	switch e.Kind {
	case EventPointerDown, EventPointerUp, EventPointerMove, EventPointerEnter, EventPointerExit, EventClick:
		return true
	}
	return false
}

// Matches reports whether an event guard naming name accepts this event.
// Custom events match by their own name, everything else by kind.
func (e Event) Matches(name string) bool {
	if e.Kind == EventCustom {
		return e.Name == name
	}
	return string(e.Kind) == name
}

func (e Event) String() string {
	switch {
	case e.Kind == EventCustom:
		return fmt.Sprintf("Custom(%s)", e.Name)
	case e.IsPointer():
		return fmt.Sprintf("%s(%g,%g)", e.Kind, e.X, e.Y)
	}
	return string(e.Kind)
}

// Validate rejects malformed events before they reach the engine.
func (e Event) Validate() error {
	switch {
	case e.IsPointer():
		if !finite(e.X) || !finite(e.Y) {
			return fmt.Errorf("%w: pointer coordinates must be finite", ErrInvalidParameter)
		}
	case e.Kind == EventCustom:
		if e.Name == "" {
			return fmt.Errorf("%w: custom event needs a name", ErrInvalidParameter)
		}
	case e.Kind == EventComplete, e.Kind == EventLoopComplete:
	default:
		return fmt.Errorf("%w: unknown event kind %q", ErrInvalidParameter, e.Kind)
	}
	return nil
}

// ParseEvent builds an Event from its kind name, as received over the wire.
func ParseEvent(kind string, x, y float64, name string) (Event, error) {
	e := Event{Kind: EventKind(kind), X: x, Y: y, Name: name}
	if math.IsNaN(x) || math.IsNaN(y) {
		return Event{}, fmt.Errorf("%w: NaN coordinate", ErrInvalidParameter)
	}
	if !e.IsPointer() {
		e.X, e.Y = 0, 0
	}
	return e, e.Validate()
}
