// Package validator lints state machine definitions beyond what loading
// requires: it reports hard errors from the compiler and warnings for
// definitions that load but are probably wrong.
package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/kinema/internal/runtime"
	"github.com/aretw0/kinema/pkg/domain"
)

// Report is the outcome of a validation.
type Report struct {
	Definition string   `json:"definition"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

// OK reports whether the definition has no errors. Warnings do not count.
func (r Report) OK() bool { return len(r.Errors) == 0 }

// Err folds the errors into one error, or nil.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: found %d errors:\n- %s", domain.ErrStateMachine, len(r.Errors), strings.Join(r.Errors, "\n- "))
}

// Validate checks def. markers lists the marker names of the animation the
// definition targets; nil skips the segment checks.
func Validate(def *domain.Definition, markers []string) Report {
	r := Report{}
	if def == nil {
		r.Errors = append(r.Errors, "definition is empty")
		return r
	}
	r.Definition = def.ID

	engine := runtime.New()
	if err := engine.Load(def); err != nil {
		var defErr *domain.DefinitionError
		if errors.As(err, &defErr) {
			r.Errors = append(r.Errors, fmt.Sprintf("%s: %s", defErr.Path, defErr.Reason))
		} else {
			r.Errors = append(r.Errors, err.Error())
		}
		return r
	}

	for _, name := range engine.Unreachable() {
		r.Warnings = append(r.Warnings, fmt.Sprintf("state %q is unreachable from %q", name, def.Initial))
	}
	for _, name := range unusedInputs(def) {
		r.Warnings = append(r.Warnings, fmt.Sprintf("input %q is never read or written", name))
	}
	if markers != nil {
		known := make(map[string]bool, len(markers))
		for _, m := range markers {
			known[m] = true
		}
		for _, s := range def.States {
			if s.Segment != "" && !known[s.Segment] {
				r.Warnings = append(r.Warnings, fmt.Sprintf("state %q plays unknown marker %q", s.Name, s.Segment))
			}
			for _, a := range append(append([]domain.Action(nil), s.EntryActions...), s.ExitActions...) {
				if a.Type == domain.ActionTweenToMarker && !known[a.Target] {
					r.Warnings = append(r.Warnings, fmt.Sprintf("state %q tweens to unknown marker %q", s.Name, a.Target))
				}
			}
		}
	}
	return r
}

func unusedInputs(def *domain.Definition) []string {
	used := map[string]bool{}
	var guard func(g domain.Guard)
	guard = func(g domain.Guard) {
		used[g.InputName] = true
		if ref, ok := g.CompareTo.(string); ok && strings.HasPrefix(ref, "$") {
			used[ref[1:]] = true
		}
		for _, c := range g.Guards {
			guard(c)
		}
	}
	action := func(a domain.Action) {
		used[a.InputName] = true
		if ref, ok := a.Value.(string); ok && strings.HasPrefix(ref, "$") {
			used[ref[1:]] = true
		}
	}

	for _, s := range def.States {
		for _, t := range s.Transitions {
			for _, g := range t.Guards {
				guard(g)
			}
		}
		for _, a := range s.EntryActions {
			action(a)
		}
		for _, a := range s.ExitActions {
			action(a)
		}
	}
	for _, in := range def.Interactions {
		for _, a := range in.Actions {
			action(a)
		}
	}

	var out []string
	for _, in := range def.Inputs {
		if !used[in.Name] {
			out = append(out, in.Name)
		}
	}
	sort.Strings(out)
	return out
}
