package runtime

import "github.com/aretw0/kinema/pkg/domain"

// interact runs the interactions matching ev before transitions are
// evaluated. Pointer interactions naming a layer only fire on a hit.
func (e *Engine) interact(ev domain.Event) {
	var actions []domain.Action

	switch {
	case ev.Kind == domain.EventComplete || ev.Kind == domain.EventLoopComplete:
		want := domain.InteractOnComplete
		if ev.Kind == domain.EventLoopComplete {
			want = domain.InteractOnLoopComplete
		}
		for _, in := range e.prog.def.Interactions {
			if in.Type == want && in.StateName == e.current {
				actions = append(actions, in.Actions...)
			}
		}

	case ev.IsPointer():
		if ev.Kind != domain.EventPointerMove {
			actions = append(actions, e.explicitPointer(ev)...)
		}
		switch ev.Kind {
		case domain.EventPointerMove, domain.EventPointerDown, domain.EventPointerUp:
			actions = append(actions, e.hover(ev)...)
		}
	}

	e.runActions(actions)
}

// explicitPointer collects interactions whose type equals the event kind.
func (e *Engine) explicitPointer(ev domain.Event) []domain.Action {
	var actions []domain.Action
	entered := e.entered
	for _, in := range e.prog.def.Interactions {
		if string(in.Type) != string(ev.Kind) {
			continue
		}
		if in.LayerName == "" {
			actions = append(actions, in.Actions...)
			continue
		}
		hit := e.host.HitTest(in.LayerName, ev.X, ev.Y)
		if ev.Kind == domain.EventPointerExit {
			if e.entered == in.LayerName && !hit {
				entered = ""
				actions = append(actions, in.Actions...)
			}
			continue
		}
		if hit {
			entered = in.LayerName
			actions = append(actions, in.Actions...)
		}
	}
	e.entered = entered
	return actions
}

// hover derives enter/exit transitions between layers from moves and
// presses, so that hosts without hover still reach PointerEnter/Exit.
func (e *Engine) hover(ev domain.Event) []domain.Action {
	var actions []domain.Action
	if ev.Kind == domain.EventPointerMove {
		for _, in := range e.prog.def.Interactions {
			if in.Type == domain.InteractPointerMove {
				actions = append(actions, in.Actions...)
			}
		}
	}

	previous := e.entered
	for _, layer := range e.prog.hoverLayers {
		if !e.host.HitTest(layer, ev.X, ev.Y) {
			continue
		}
		if previous == layer {
			return actions
		}
		e.entered = layer
		for _, in := range e.prog.def.Interactions {
			if in.Type == domain.InteractPointerEnter && in.LayerName == layer {
				actions = append(actions, in.Actions...)
			}
		}
		return actions
	}

	e.entered = ""
	if previous == "" {
		return actions
	}
	for _, in := range e.prog.def.Interactions {
		if in.Type == domain.InteractPointerExit && in.LayerName == previous {
			actions = append(actions, in.Actions...)
		}
	}
	return actions
}
