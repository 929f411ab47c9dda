package runtime

import "github.com/aretw0/kinema/pkg/domain"

// Host is the player as seen from the state machine. Actions and state
// entry drive playback and theming through it; hit-tests resolve pointer
// coordinates against named layers.
//
// The engine calls Host while its owner holds the player lock, so
// implementations must not publish notifications synchronously.
type Host interface {
	Config() domain.Config
	SetConfig(cfg domain.Config) error
	ActiveAnimationID() string
	LoadAnimation(id string) error

	Play() bool
	Pause() bool
	Stop() bool
	SetFrame(frame float64) bool
	SetProgress(progress float64) bool
	TweenToMarker(marker string, duration float64, easing []float64) bool

	SetTheme(id string) error
	ResetTheme()
	SetSlots(data string) error

	HitTest(layer string, x, y float64) bool
}
