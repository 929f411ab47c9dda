package runtime

import (
	"fmt"
	"sort"

	"github.com/aretw0/kinema/pkg/domain"
)

// Triggers is the typed input context of a running machine. The type of
// every trigger is fixed by its declaration.
type Triggers struct {
	order    []string
	values   map[string]domain.Value
	defaults map[string]domain.Value
}

func newTriggers(decls []domain.TriggerDecl) (*Triggers, error) {
	t := &Triggers{
		values:   make(map[string]domain.Value, len(decls)),
		defaults: make(map[string]domain.Value, len(decls)),
	}
	for i, d := range decls {
		path := fmt.Sprintf("inputs[%d]", i)
		if d.Name == "" {
			return nil, &domain.DefinitionError{Path: path, Reason: "input has no name"}
		}
		if !d.Type.Valid() {
			return nil, &domain.DefinitionError{Path: path, Reason: fmt.Sprintf("unknown input type %q", d.Type)}
		}
		if _, dup := t.values[d.Name]; dup {
			return nil, &domain.DefinitionError{Path: path, Reason: fmt.Sprintf("duplicate input %q", d.Name)}
		}
		v, err := domain.ValueOf(d.Type, d.Value)
		if err != nil {
			return nil, &domain.DefinitionError{Path: path + ".value", Reason: err.Error()}
		}
		t.order = append(t.order, d.Name)
		t.values[d.Name] = v
		t.defaults[d.Name] = v
	}
	return t, nil
}

// Type returns the declared type of name.
func (t *Triggers) Type(name string) (domain.TriggerType, bool) {
	v, ok := t.values[name]
	return v.Type, ok
}

// Get returns the current value of name.
func (t *Triggers) Get(name string) (domain.Value, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Set writes v after checking its type. It returns the previous value and
// whether the value changed.
func (t *Triggers) Set(name string, v domain.Value) (old domain.Value, changed bool, err error) {
	cur, ok := t.values[name]
	if !ok {
		return domain.Value{}, false, fmt.Errorf("%w: unknown trigger %q", domain.ErrStateMachine, name)
	}
	if cur.Type != v.Type {
		return domain.Value{}, false, &domain.TriggerTypeError{Name: name, Want: cur.Type, Got: v.Type}
	}
	t.values[name] = v
	return cur, !cur.Equal(v), nil
}

// Reset restores the declared default of name.
func (t *Triggers) Reset(name string) (old, def domain.Value, err error) {
	cur, ok := t.values[name]
	if !ok {
		return domain.Value{}, domain.Value{}, fmt.Errorf("%w: unknown trigger %q", domain.ErrStateMachine, name)
	}
	def = t.defaults[name]
	t.values[name] = def
	return cur, def, nil
}

// Names returns every trigger name in declaration order.
func (t *Triggers) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Values copies the current context, leaving out event triggers.
func (t *Triggers) Values() map[string]domain.Value {
	out := make(map[string]domain.Value, len(t.values))
	for k, v := range t.values {
		if v.Type != domain.TriggerEvent {
			out[k] = v
		}
	}
	return out
}

// restore overwrites values from a snapshot. Unknown names and mismatched
// types are reported together and nothing is written.
func (t *Triggers) restore(values map[string]domain.Value) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cur, ok := t.values[name]
		if !ok {
			return fmt.Errorf("%w: snapshot has unknown trigger %q", domain.ErrStateMachine, name)
		}
		if cur.Type != values[name].Type {
			return &domain.TriggerTypeError{Name: name, Want: cur.Type, Got: values[name].Type}
		}
	}
	for name, v := range values {
		t.values[name] = v
	}
	return nil
}
