package dsl

import "github.com/aretw0/kinema/pkg/domain"

// On matches an event: an Event input name, a pointer kind or a completion
// kind.
func On(event string) domain.Guard {
	return domain.Guard{Type: domain.GuardEvent, InputName: event}
}

// OnLayer matches a pointer event over a layer.
func OnLayer(event, layer string) domain.Guard {
	return domain.Guard{Type: domain.GuardEvent, InputName: event, LayerName: layer}
}

// Numeric compares a Numeric input. value may be a "$name" reference.
func Numeric(name string, cond domain.Condition, value any) domain.Guard {
	return domain.Guard{Type: domain.GuardNumeric, InputName: name, ConditionType: cond, CompareTo: value}
}

// AtLeast holds when the Numeric input is >= value.
func AtLeast(name string, value float64) domain.Guard {
	return Numeric(name, domain.CondGreaterThanOrEqual, value)
}

// Is holds when the Boolean input equals value.
func Is(name string, value bool) domain.Guard {
	return domain.Guard{Type: domain.GuardBoolean, InputName: name, ConditionType: domain.CondEqual, CompareTo: value}
}

// Text compares a String input for equality or inequality.
func Text(name string, cond domain.Condition, value string) domain.Guard {
	return domain.Guard{Type: domain.GuardString, InputName: name, ConditionType: cond, CompareTo: value}
}

func All(guards ...domain.Guard) domain.Guard {
	return domain.Guard{Type: domain.GuardAll, Guards: guards}
}

func Any(guards ...domain.Guard) domain.Guard {
	return domain.Guard{Type: domain.GuardAny, Guards: guards}
}

func Not(g domain.Guard) domain.Guard {
	return domain.Guard{Type: domain.GuardNot, Guards: []domain.Guard{g}}
}
