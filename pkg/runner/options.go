package runner

import (
	"log/slog"
	"time"

	"github.com/aretw0/kinema/pkg/ports"
)

// DefaultFPS is the tick rate when none is configured.
const DefaultFPS = 60

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the SnapshotStore used to resume and save the
// state machine.
func WithStore(store ports.SnapshotStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithSessionID sets the key under which the snapshot is stored.
// This is required if WithStore is used.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithInterceptor configures the command middleware.
func WithInterceptor(interceptor CommandInterceptor) Option {
	return func(r *Runner) {
		r.Interceptor = interceptor
	}
}

// WithFPS sets the tick rate.
func WithFPS(fps float64) Option {
	return func(r *Runner) {
		r.FPS = fps
	}
}

// WithFixedStep advances the player by exactly 1/FPS per tick instead of
// the measured wall-clock time. Replays become deterministic.
func WithFixedStep(fixed bool) Option {
	return func(r *Runner) {
		r.FixedStep = fixed
	}
}

// WithStopOnComplete ends the run once playback completed and no state
// machine is running.
func WithStopOnComplete(stop bool) Option {
	return func(r *Runner) {
		r.StopOnComplete = stop
	}
}

// WithMaxDuration bounds the run.
func WithMaxDuration(d time.Duration) Option {
	return func(r *Runner) {
		r.MaxDuration = d
	}
}

// WithFrames forwards frame and render notifications, which are dropped by
// default.
func WithFrames(frames bool) Option {
	return func(r *Runner) {
		r.Frames = frames
	}
}
