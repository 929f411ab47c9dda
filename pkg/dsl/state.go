package dsl

import "github.com/aretw0/kinema/pkg/domain"

// StateBuilder provides a fluent API for configuring a state.
type StateBuilder struct {
	state   domain.State
	builder *Builder
}

// Initial makes the state the one the machine starts in.
func (s *StateBuilder) Initial() *StateBuilder {
	s.builder.initial = s.state.Name
	return s
}

// Final marks the state as final: entering it stops the machine.
func (s *StateBuilder) Final() *StateBuilder {
	s.state.Final = true
	return s
}

// Animation switches to the animation with this id on entry.
func (s *StateBuilder) Animation(id string) *StateBuilder {
	s.state.Animation = id
	return s
}

// Segment restricts playback to the named marker on entry.
func (s *StateBuilder) Segment(marker string) *StateBuilder {
	s.state.Segment = marker
	return s
}

// Autoplay starts playback on entry.
func (s *StateBuilder) Autoplay() *StateBuilder {
	v := true
	s.state.Autoplay = &v
	return s
}

// Loop sets looping on entry. A positive count bounds the loops.
func (s *StateBuilder) Loop(loop bool, count uint32) *StateBuilder {
	s.state.Loop = &loop
	if count > 0 {
		s.state.LoopCount = &count
	}
	return s
}

// Mode sets the playback mode on entry (Forward, Reverse, Bounce,
// ReverseBounce).
func (s *StateBuilder) Mode(mode string) *StateBuilder {
	s.state.Mode = mode
	return s
}

// Speed sets the playback speed on entry.
func (s *StateBuilder) Speed(speed float64) *StateBuilder {
	s.state.Speed = &speed
	return s
}

// Background sets the background color (0xRRGGBBAA) on entry.
func (s *StateBuilder) Background(rgba uint32) *StateBuilder {
	s.state.BackgroundColor = &rgba
	return s
}

// OnEntry appends entry actions.
func (s *StateBuilder) OnEntry(actions ...domain.Action) *StateBuilder {
	s.state.EntryActions = append(s.state.EntryActions, actions...)
	return s
}

// OnExit appends exit actions.
func (s *StateBuilder) OnExit(actions ...domain.Action) *StateBuilder {
	s.state.ExitActions = append(s.state.ExitActions, actions...)
	return s
}

// Go adds a transition to the state called to. All guards must hold; with
// no guards the transition always matches.
func (s *StateBuilder) Go(to string, guards ...domain.Guard) *StateBuilder {
	s.state.Transitions = append(s.state.Transitions, domain.Transition{ToState: to, Guards: guards})
	return s
}

// TweenTo adds a transition that interpolates to the target state's
// segment over seconds.
func (s *StateBuilder) TweenTo(to string, seconds float64, easing []float64, guards ...domain.Guard) *StateBuilder {
	s.state.Transitions = append(s.state.Transitions, domain.Transition{
		ToState: to,
		Guards:  guards,
		Tween:   &domain.TweenSpec{Duration: seconds, Easing: easing},
	})
	return s
}

// Add continues with another state, for chaining.
func (s *StateBuilder) Add(name string) *StateBuilder {
	return s.builder.Add(name)
}
