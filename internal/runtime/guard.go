package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/kinema/pkg/domain"
)

// evalContext is what a guard can observe during one evaluation step.
type evalContext struct {
	triggers *Triggers
	event    *domain.Event
	fired    string
	host     Host
}

// guard is a compiled guard expression. Evaluation is total: a missing
// value or an unsatisfiable comparison yields false.
type guard interface {
	eval(c *evalContext) bool
}

type compareGuard struct {
	input   string
	cond    domain.Condition
	literal domain.Value
	ref     string
}

func (g compareGuard) eval(c *evalContext) bool {
	left, ok := c.triggers.Get(g.input)
	if !ok {
		return false
	}
	right := g.literal
	if g.ref != "" {
		if right, ok = c.triggers.Get(g.ref); !ok {
			return false
		}
	}
	if left.Type != right.Type {
		return false
	}

	switch g.cond {
	case domain.CondEqual:
		return left.Equal(right)
	case domain.CondNotEqual:
		return !left.Equal(right)
	}
	if left.Type != domain.TriggerNumeric {
		return false
	}
	switch g.cond {
	case domain.CondGreaterThan:
		return left.Number > right.Number
	case domain.CondGreaterThanOrEqual:
		return left.Number >= right.Number
	case domain.CondLessThan:
		return left.Number < right.Number
	case domain.CondLessThanOrEqual:
		return left.Number <= right.Number
	}
	return false
}

// eventGuard matches a fired event trigger, or a posted event by kind or
// custom name. With a layer, pointer events must also hit that layer.
type eventGuard struct {
	name  string
	layer string
}

func (g eventGuard) eval(c *evalContext) bool {
	if c.fired != "" && c.fired == g.name {
		return true
	}
	if c.event == nil || !c.event.Matches(g.name) {
		return false
	}
	if g.layer == "" {
		return true
	}
	return c.event.IsPointer() && c.host != nil && c.host.HitTest(g.layer, c.event.X, c.event.Y)
}

type allGuard []guard

func (g allGuard) eval(c *evalContext) bool {
	for _, child := range g {
		if !child.eval(c) {
			return false
		}
	}
	return true
}

type anyGuard []guard

func (g anyGuard) eval(c *evalContext) bool {
	for _, child := range g {
		if child.eval(c) {
			return true
		}
	}
	return false
}

type notGuard struct{ inner guard }

func (g notGuard) eval(c *evalContext) bool { return !g.inner.eval(c) }

// compileGuards AND-s a transition's guard list. An empty list compiles to
// nil, which always matches.
func compileGuards(gs []domain.Guard, t *Triggers, path string) (guard, error) {
	if len(gs) == 0 {
		return nil, nil
	}
	out := make(allGuard, 0, len(gs))
	for i, g := range gs {
		c, err := compileGuard(g, t, fmt.Sprintf("%s.guards[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}

func compileGuard(g domain.Guard, t *Triggers, path string) (guard, error) {
	fail := func(format string, args ...any) (guard, error) {
		return nil, &domain.DefinitionError{Path: path, Reason: fmt.Sprintf(format, args...)}
	}

	switch g.Type {
	case domain.GuardNumeric, domain.GuardString, domain.GuardBoolean:
		want := domain.TriggerType(g.Type)
		typ, ok := t.Type(g.InputName)
		if !ok {
			return fail("guard references undeclared input %q", g.InputName)
		}
		if typ != want {
			return fail("%s guard on %s input %q", g.Type, typ, g.InputName)
		}
		switch g.ConditionType {
		case domain.CondEqual, domain.CondNotEqual:
		case domain.CondGreaterThan, domain.CondGreaterThanOrEqual, domain.CondLessThan, domain.CondLessThanOrEqual:
			if want != domain.TriggerNumeric {
				return fail("%s is only valid for numeric guards", g.ConditionType)
			}
		default:
			return fail("unknown condition %q", g.ConditionType)
		}

		out := compareGuard{input: g.InputName, cond: g.ConditionType}
		if ref, isRef := reference(g.CompareTo); isRef {
			refType, ok := t.Type(ref)
			if !ok {
				return fail("compareTo references undeclared input %q", ref)
			}
			if refType != want {
				return fail("compareTo input %q is %s, want %s", ref, refType, want)
			}
			out.ref = ref
			return out, nil
		}
		if g.CompareTo == nil {
			return fail("guard has no compareTo")
		}
		v, err := domain.ValueOf(want, g.CompareTo)
		if err != nil {
			return fail("compareTo: %v", err)
		}
		out.literal = v
		return out, nil

	case domain.GuardEvent:
		if g.InputName == "" {
			return fail("event guard needs an inputName")
		}
		if typ, ok := t.Type(g.InputName); ok && typ != domain.TriggerEvent {
			return fail("event guard on %s input %q", typ, g.InputName)
		}
		return eventGuard{name: g.InputName, layer: g.LayerName}, nil

	case domain.GuardAll, domain.GuardAny:
		if len(g.Guards) == 0 {
			return fail("%s guard needs children", g.Type)
		}
		children := make([]guard, 0, len(g.Guards))
		for i, child := range g.Guards {
			c, err := compileGuard(child, t, fmt.Sprintf("%s.guards[%d]", path, i))
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		if g.Type == domain.GuardAll {
			return allGuard(children), nil
		}
		return anyGuard(children), nil

	case domain.GuardNot:
		if len(g.Guards) != 1 {
			return fail("Not guard needs exactly one child")
		}
		inner, err := compileGuard(g.Guards[0], t, path+".guards[0]")
		if err != nil {
			return nil, err
		}
		return notGuard{inner: inner}, nil
	}
	return fail("unknown guard type %q", g.Type)
}

// reference reports whether v is a "$name" input reference.
func reference(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "$") || len(s) < 2 {
		return "", false
	}
	return s[1:], true
}
