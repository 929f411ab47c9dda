package dsl

import "github.com/aretw0/kinema/pkg/domain"

func Increment(name string) domain.Action {
	return domain.Action{Type: domain.ActionIncrement, InputName: name}
}

func Decrement(name string) domain.Action {
	return domain.Action{Type: domain.ActionDecrement, InputName: name}
}

// IncrementBy adds step, a number or a "$name" reference.
func IncrementBy(name string, step any) domain.Action {
	return domain.Action{Type: domain.ActionIncrement, InputName: name, Value: step}
}

func Toggle(name string) domain.Action {
	return domain.Action{Type: domain.ActionToggle, InputName: name}
}

func SetBoolean(name string, v any) domain.Action {
	return domain.Action{Type: domain.ActionSetBoolean, InputName: name, Value: v}
}

func SetNumeric(name string, v any) domain.Action {
	return domain.Action{Type: domain.ActionSetNumeric, InputName: name, Value: v}
}

func SetString(name string, v any) domain.Action {
	return domain.Action{Type: domain.ActionSetString, InputName: name, Value: v}
}

func Fire(name string) domain.Action {
	return domain.Action{Type: domain.ActionFire, InputName: name}
}

func Reset(name string) domain.Action {
	return domain.Action{Type: domain.ActionReset, InputName: name}
}

func SetTheme(id string) domain.Action {
	return domain.Action{Type: domain.ActionSetTheme, Value: id}
}

func ResetTheme() domain.Action { return domain.Action{Type: domain.ActionResetTheme} }
func Play() domain.Action       { return domain.Action{Type: domain.ActionPlay} }
func Pause() domain.Action      { return domain.Action{Type: domain.ActionPause} }
func Stop() domain.Action       { return domain.Action{Type: domain.ActionStop} }

func SetFrame(frame any) domain.Action {
	return domain.Action{Type: domain.ActionSetFrame, Value: frame}
}

func SetProgress(progress any) domain.Action {
	return domain.Action{Type: domain.ActionSetProgress, Value: progress}
}

func SetMode(mode string) domain.Action {
	return domain.Action{Type: domain.ActionSetMode, Value: mode}
}

// TweenToMarker eases the playhead to the start of marker over seconds.
func TweenToMarker(marker string, seconds float64, easing []float64) domain.Action {
	return domain.Action{Type: domain.ActionTweenToMarker, Target: marker, Duration: seconds, Easing: easing}
}

// CustomEvent emits a custom_event notification to observers.
func CustomEvent(name string) domain.Action {
	return domain.Action{Type: domain.ActionFireCustomEvent, Value: name}
}

// OpenURL asks the host to open url, subject to the player's URL policy.
func OpenURL(url, target string) domain.Action {
	return domain.Action{Type: domain.ActionOpenURL, URL: url, Target: target}
}
