package runtime

import (
	"fmt"

	"github.com/aretw0/kinema/internal/tween"
	"github.com/aretw0/kinema/pkg/domain"
)

type transition struct {
	to    string
	guard guard
	tween *domain.TweenSpec
}

type state struct {
	def         *domain.State
	transitions []transition
}

// program is a validated definition with compiled guards.
type program struct {
	def      *domain.Definition
	states   map[string]*state
	global   *state
	triggers *Triggers
	// layers that have PointerEnter/PointerExit interactions, in declaration order
	hoverLayers []string
}

// compile validates def and builds its program. Errors are
// *domain.DefinitionError values naming the offending path.
func compile(def *domain.Definition) (*program, error) {
	if def == nil || len(def.States) == 0 {
		return nil, &domain.DefinitionError{Path: "states", Reason: "at least one state is required"}
	}
	triggers, err := newTriggers(def.Inputs)
	if err != nil {
		return nil, err
	}
	p := &program{
		def:      def,
		states:   make(map[string]*state, len(def.States)),
		triggers: triggers,
	}

	for i := range def.States {
		s := &def.States[i]
		path := fmt.Sprintf("states[%d]", i)
		if s.Name == "" {
			return nil, &domain.DefinitionError{Path: path, Reason: "state has no name"}
		}
		if _, dup := p.states[s.Name]; dup {
			return nil, &domain.DefinitionError{Path: path, Reason: fmt.Sprintf("duplicate state %q", s.Name)}
		}
		switch s.Type {
		case domain.StatePlayback:
		case domain.StateGlobal:
			if p.global != nil {
				return nil, &domain.DefinitionError{Path: path, Reason: "only one GlobalState is allowed"}
			}
		default:
			return nil, &domain.DefinitionError{Path: path, Reason: fmt.Sprintf("unknown state type %q", s.Type)}
		}
		if s.Mode != "" {
			if _, err := domain.ParseMode(s.Mode); err != nil {
				return nil, &domain.DefinitionError{Path: path + ".mode", Reason: err.Error()}
			}
		}
		if s.Speed != nil && !(*s.Speed > 0) {
			return nil, &domain.DefinitionError{Path: path + ".speed", Reason: "speed must be positive"}
		}
		st := &state{def: s}
		p.states[s.Name] = st
		if s.IsGlobal() {
			p.global = st
		}
	}

	initial, ok := p.states[def.Initial]
	if !ok {
		return nil, &domain.DefinitionError{Path: "initial", Reason: fmt.Sprintf("unknown initial state %q", def.Initial)}
	}
	if initial.def.IsGlobal() {
		return nil, &domain.DefinitionError{Path: "initial", Reason: "initial state cannot be the GlobalState"}
	}

	for i := range def.States {
		s := &def.States[i]
		st := p.states[s.Name]
		path := fmt.Sprintf("states[%d]", i)
		for j, t := range s.Transitions {
			tpath := fmt.Sprintf("%s.transitions[%d]", path, j)
			target, ok := p.states[t.ToState]
			if !ok {
				return nil, &domain.DefinitionError{Path: tpath, Reason: fmt.Sprintf("unknown target state %q", t.ToState)}
			}
			if target.def.IsGlobal() {
				return nil, &domain.DefinitionError{Path: tpath, Reason: "cannot transition into the GlobalState"}
			}
			g, err := compileGuards(t.Guards, triggers, tpath)
			if err != nil {
				return nil, err
			}
			if t.Tween != nil {
				if err := checkTween(t.Tween); err != nil {
					return nil, &domain.DefinitionError{Path: tpath + ".tween", Reason: err.Error()}
				}
			}
			st.transitions = append(st.transitions, transition{to: t.ToState, guard: g, tween: t.Tween})
		}
		if err := checkActions(s.EntryActions, triggers, path+".entryActions"); err != nil {
			return nil, err
		}
		if err := checkActions(s.ExitActions, triggers, path+".exitActions"); err != nil {
			return nil, err
		}
	}

	seen := map[string]bool{}
	for i, in := range def.Interactions {
		path := fmt.Sprintf("interactions[%d]", i)
		switch in.Type {
		case domain.InteractPointerUp, domain.InteractPointerDown, domain.InteractPointerMove, domain.InteractClick:
		case domain.InteractPointerEnter, domain.InteractPointerExit:
			if in.LayerName != "" && !seen[in.LayerName] {
				seen[in.LayerName] = true
				p.hoverLayers = append(p.hoverLayers, in.LayerName)
			}
		case domain.InteractOnComplete, domain.InteractOnLoopComplete:
			if _, ok := p.states[in.StateName]; !ok {
				return nil, &domain.DefinitionError{Path: path, Reason: fmt.Sprintf("unknown state %q", in.StateName)}
			}
		default:
			return nil, &domain.DefinitionError{Path: path, Reason: fmt.Sprintf("unknown interaction type %q", in.Type)}
		}
		if err := checkActions(in.Actions, triggers, path+".actions"); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func checkTween(spec *domain.TweenSpec) error {
	if !(spec.Duration > 0) {
		return fmt.Errorf("duration must be positive")
	}
	if len(spec.Easing) > 0 {
		if _, err := tween.NewCubicBezier(spec.Easing); err != nil {
			return err
		}
	}
	return nil
}

// actionInputType is the trigger type an action needs, or "" when any type
// will do.
var actionInputType = map[domain.ActionType]domain.TriggerType{
	domain.ActionIncrement:  domain.TriggerNumeric,
	domain.ActionDecrement:  domain.TriggerNumeric,
	domain.ActionSetNumeric: domain.TriggerNumeric,
	domain.ActionToggle:     domain.TriggerBoolean,
	domain.ActionSetBoolean: domain.TriggerBoolean,
	domain.ActionSetString:  domain.TriggerString,
	domain.ActionFire:       domain.TriggerEvent,
	domain.ActionReset:      "",
}

func checkActions(actions []domain.Action, t *Triggers, path string) error {
	for i, a := range actions {
		apath := fmt.Sprintf("%s[%d]", path, i)
		fail := func(format string, args ...any) error {
			return &domain.DefinitionError{Path: apath, Reason: fmt.Sprintf(format, args...)}
		}

		if a.TargetsInput() {
			typ, ok := t.Type(a.InputName)
			if !ok {
				return fail("action references undeclared input %q", a.InputName)
			}
			if want := actionInputType[a.Type]; want != "" && typ != want {
				return fail("%s needs a %s input, %q is %s", a.Type, want, a.InputName, typ)
			}
			if a.Type == domain.ActionReset && typ == domain.TriggerEvent {
				return fail("cannot reset event input %q", a.InputName)
			}
		}

		switch a.Type {
		case domain.ActionIncrement, domain.ActionDecrement, domain.ActionSetNumeric,
			domain.ActionSetFrame, domain.ActionSetProgress:
			if err := checkOperand(a, t, domain.TriggerNumeric); err != nil {
				return fail("%v", err)
			}
		case domain.ActionSetBoolean:
			if err := checkOperand(a, t, domain.TriggerBoolean); err != nil {
				return fail("%v", err)
			}
		case domain.ActionSetString:
			if err := checkOperand(a, t, domain.TriggerString); err != nil {
				return fail("%v", err)
			}
		case domain.ActionSetMode:
			s, _ := a.Value.(string)
			if _, err := domain.ParseMode(s); err != nil {
				return fail("%v", err)
			}
		case domain.ActionSetTheme, domain.ActionSetThemeData, domain.ActionFireCustomEvent:
			if s, ok := a.Value.(string); !ok || s == "" {
				return fail("%s needs a string value", a.Type)
			}
		case domain.ActionTweenToMarker:
			if a.Target == "" {
				return fail("TweenToMarker needs a target marker")
			}
			if err := checkTween(&domain.TweenSpec{Duration: 1, Easing: a.Easing}); err != nil {
				return fail("%v", err)
			}
		case domain.ActionOpenURL:
			if a.URL == "" {
				return fail("OpenUrl needs a url")
			}
		case domain.ActionToggle, domain.ActionFire, domain.ActionReset,
			domain.ActionResetTheme, domain.ActionPlay, domain.ActionPause, domain.ActionStop:
		default:
			return fail("unknown action type %q", a.Type)
		}
	}
	return nil
}

// checkOperand validates an action value: a literal of type want or a
// "$name" reference to an input of that type. Increment and Decrement may
// omit it.
func checkOperand(a domain.Action, t *Triggers, want domain.TriggerType) error {
	if ref, ok := reference(a.Value); ok {
		typ, declared := t.Type(ref)
		if !declared {
			return fmt.Errorf("value references undeclared input %q", ref)
		}
		if typ != want {
			return fmt.Errorf("value input %q is %s, want %s", ref, typ, want)
		}
		return nil
	}
	if a.Value == nil {
		if a.Type == domain.ActionIncrement || a.Type == domain.ActionDecrement {
			return nil
		}
		return fmt.Errorf("%s needs a value", a.Type)
	}
	_, err := domain.ValueOf(want, a.Value)
	return err
}

// reachable returns the states reachable from the initial state. Targets
// of GlobalState transitions count as reachable from everywhere.
func (p *program) reachable() map[string]bool {
	seen := map[string]bool{}
	if p.global != nil {
		seen[p.global.def.Name] = true
	}
	queue := []string{p.def.Initial}
	if p.global != nil {
		for _, t := range p.global.transitions {
			queue = append(queue, t.to)
		}
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		for _, t := range p.states[name].transitions {
			if !seen[t.to] {
				queue = append(queue, t.to)
			}
		}
	}
	return seen
}
