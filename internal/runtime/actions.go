package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/kinema/pkg/domain"
)

// runActions executes actions in order. A failing action is reported on the
// error channel and does not stop the rest.
func (e *Engine) runActions(actions []domain.Action) {
	for _, a := range actions {
		if err := e.execute(a); err != nil {
			e.logger.Warn("Action failed", "action", a.Type, "err", err)
			e.emit(domain.MachineEvent{Type: domain.MachineError, Message: fmt.Sprintf("%s: %v", a.Type, err)})
		}
	}
}

func (e *Engine) execute(a domain.Action) error {
	switch a.Type {
	case domain.ActionIncrement, domain.ActionDecrement:
		cur, _ := e.prog.triggers.Get(a.InputName)
		step := 1.0
		if a.Value != nil {
			n, err := e.number(a.Value)
			if err != nil {
				return err
			}
			step = n
		}
		if a.Type == domain.ActionDecrement {
			step = -step
		}
		return e.write(a.InputName, domain.NumberValue(cur.Number+step), true)

	case domain.ActionToggle:
		cur, _ := e.prog.triggers.Get(a.InputName)
		return e.write(a.InputName, domain.BoolValue(!cur.Bool), true)

	case domain.ActionSetBoolean, domain.ActionSetString, domain.ActionSetNumeric:
		typ, _ := e.prog.triggers.Type(a.InputName)
		v, err := e.operand(typ, a.Value)
		if err != nil {
			return err
		}
		return e.write(a.InputName, v, true)

	case domain.ActionFire:
		return e.fire(a.InputName)

	case domain.ActionReset:
		return e.reset(a.InputName, true)

	case domain.ActionSetTheme:
		return e.host.SetTheme(a.Value.(string))

	case domain.ActionResetTheme:
		e.host.ResetTheme()
		return nil

	case domain.ActionSetThemeData:
		data := a.Value.(string)
		if e.lastEvent != nil {
			data = strings.NewReplacer(
				"$x", strconv.FormatFloat(e.lastEvent.X, 'f', -1, 64),
				"$y", strconv.FormatFloat(e.lastEvent.Y, 'f', -1, 64),
			).Replace(data)
		}
		return e.host.SetSlots(data)

	case domain.ActionSetFrame, domain.ActionSetProgress:
		n, err := e.number(a.Value)
		if err != nil {
			return err
		}
		var ok bool
		if a.Type == domain.ActionSetFrame {
			ok = e.host.SetFrame(n)
		} else {
			ok = e.host.SetProgress(n)
		}
		if !ok {
			return fmt.Errorf("%w: %g", domain.ErrInvalidParameter, n)
		}
		return nil

	case domain.ActionSetMode:
		mode, err := domain.ParseMode(a.Value.(string))
		if err != nil {
			return err
		}
		cfg := e.host.Config()
		cfg.Mode = mode
		return e.host.SetConfig(cfg)

	case domain.ActionPlay:
		e.host.Play()
		return nil

	case domain.ActionPause:
		e.host.Pause()
		return nil

	case domain.ActionStop:
		e.host.Stop()
		return nil

	case domain.ActionTweenToMarker:
		if !e.host.TweenToMarker(a.Target, a.Duration, a.Easing) {
			return fmt.Errorf("%w: cannot tween to marker %q", domain.ErrInvalidParameter, a.Target)
		}
		return nil

	case domain.ActionFireCustomEvent:
		e.emit(domain.MachineEvent{Type: domain.MachineCustomEvent, Name: a.Value.(string)})
		return nil

	case domain.ActionOpenURL:
		if err := e.openURL.Check(a.URL, e.lastEvent); err != nil {
			return err
		}
		e.emit(domain.MachineEvent{Type: domain.MachineCustomEvent, Name: "OpenUrl:" + a.URL})
		return nil
	}
	return fmt.Errorf("unknown action type %q", a.Type)
}

// number resolves a numeric literal or a "$name" numeric input.
func (e *Engine) number(raw any) (float64, error) {
	v, err := e.operand(domain.TriggerNumeric, raw)
	return v.Number, err
}

func (e *Engine) operand(want domain.TriggerType, raw any) (domain.Value, error) {
	if ref, ok := reference(raw); ok {
		v, found := e.prog.triggers.Get(ref)
		if !found || v.Type != want {
			return domain.Value{}, fmt.Errorf("%w: input %q is not %s", domain.ErrStateMachine, ref, want)
		}
		return v, nil
	}
	return domain.ValueOf(want, raw)
}
