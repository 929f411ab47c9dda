package runner

import (
	"fmt"
	"strconv"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/pkg/domain"
)

// SetTrigger writes raw into the input called name, converting it to the
// declared input type. Strings are parsed ("3", "true"), other scalars go
// through domain.ValueOf. Event inputs are fired and raw is ignored.
func SetTrigger(p *kinema.Player, name string, raw any) error {
	def := p.StateMachineDefinition()
	if def == nil {
		return fmt.Errorf("%w: no state machine loaded", domain.ErrNotLoaded)
	}
	decl, ok := def.Input(name)
	if !ok {
		return fmt.Errorf("%w: unknown input %q", domain.ErrInvalidParameter, name)
	}
	if decl.Type == domain.TriggerEvent {
		return p.FireTrigger(name)
	}

	v, err := parseValue(decl.Type, raw)
	if err != nil {
		return fmt.Errorf("input %q: %w", name, err)
	}
	switch v.Type {
	case domain.TriggerBoolean:
		return p.SetBooleanTrigger(name, v.Bool)
	case domain.TriggerNumeric:
		return p.SetNumericTrigger(name, v.Number)
	}
	return p.SetStringTrigger(name, v.Text)
}

func parseValue(t domain.TriggerType, raw any) (domain.Value, error) {
	s, ok := raw.(string)
	if !ok || t == domain.TriggerString {
		return domain.ValueOf(t, raw)
	}
	switch t {
	case domain.TriggerBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return domain.Value{}, fmt.Errorf("%w: %q is not a bool", domain.ErrInvalidParameter, s)
		}
		return domain.BoolValue(b), nil
	case domain.TriggerNumeric:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Value{}, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidParameter, s)
		}
		return domain.NumberValue(n), nil
	}
	return domain.ValueOf(t, raw)
}
