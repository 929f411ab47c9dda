package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/logging"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/ports"
)

// Runner drives a player at a fixed tick rate and feeds it commands read
// from an IOHandler.
type Runner struct {
	// Handler is the strategy for IO. If nil, a TextHandler on stdin and
	// stdout is used.
	Handler IOHandler

	// Interceptor filters commands. If nil, every command is allowed.
	Interceptor CommandInterceptor

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Store is the persistence adapter for the state machine snapshot.
	// If nil, runs are ephemeral.
	Store     ports.SnapshotStore
	SessionID string

	FPS            float64
	FixedStep      bool
	StopOnComplete bool
	MaxDuration    time.Duration
	Frames         bool
}

// NewRunner creates a Runner ticking at DefaultFPS.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		FPS:    DefaultFPS,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type lineResult struct {
	line string
	err  error
}

// Run drives p until the input ends, a quit command arrives, ctx is done
// or, with StopOnComplete, playback is over. A stored snapshot is restored
// first and the final snapshot is saved on the way out. Interrupts,
// MaxDuration and the end of input are not errors.
func (r *Runner) Run(ctx context.Context, p *kinema.Player) error {
	handler := r.resolveHandler()
	logger := r.resolveLogger()

	if r.MaxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.MaxDuration)
		defer cancel()
	}
	signals := NewSignalManager(ctx)
	defer signals.Stop()
	runCtx := signals.Context()

	collector := NewCollector(r.SessionID, r.Frames)
	detach := collector.Attach(p)
	defer detach()

	if err := r.Resume(runCtx, p); err != nil {
		return err
	}
	if err := r.flush(runCtx, handler, collector); err != nil {
		return err
	}

	readCtx, stopReading := context.WithCancel(runCtx)
	defer stopReading()
	inputs, next := r.readInputs(readCtx, handler)
	next <- struct{}{}

	interval := r.interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-runCtx.Done():
			if signals.Interrupted(ctx) {
				logger.Debug("Runner interrupted")
			}
			return r.finish(p)

		case now := <-ticker.C:
			elapsed := interval
			if !r.FixedStep {
				elapsed = now.Sub(last)
			}
			last = now
			if err := r.Step(p, elapsed); err != nil {
				logger.Warn("State machine tick failed", "err", err)
			}
			if err := r.flush(runCtx, handler, collector); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			if r.StopOnComplete && Done(p) {
				return r.finish(p)
			}

		case in, ok := <-inputs:
			if !ok {
				inputs = nil
				continue
			}
			if in.err != nil {
				if errors.Is(in.err, io.EOF) || runCtx.Err() != nil {
					// Without input, keep ticking only when the run has another way to end.
					if r.StopOnComplete || r.MaxDuration > 0 {
						inputs = nil
						continue
					}
					return r.finish(p)
				}
				return fmt.Errorf("input error: %w", in.err)
			}
			err := r.Exec(runCtx, handler, p, in.line)
			if errors.Is(err, ErrQuit) {
				return r.finish(p)
			}
			if err != nil {
				return err
			}
			if err := r.flush(runCtx, handler, collector); err != nil {
				return fmt.Errorf("output error: %w", err)
			}
			next <- struct{}{}
		}
	}
}

// Step advances p by elapsed and lets the state machine react to
// completions and trigger writes.
func (r *Runner) Step(p *kinema.Player, elapsed time.Duration) error {
	return Advance(p, elapsed)
}

// Advance is one drive-loop iteration: Tick, then StateMachineTick when a
// state machine is loaded.
func Advance(p *kinema.Player, elapsed time.Duration) error {
	p.Tick(elapsed)
	if p.StateMachineStatus() == domain.MachineUnloaded {
		return nil
	}
	return p.StateMachineTick()
}

// Exec parses line, runs it through the interceptor and applies it. The
// reply or the failure is reported through handler; only ErrQuit and
// handler failures are returned.
func (r *Runner) Exec(ctx context.Context, handler IOHandler, p *kinema.Player, line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		return handler.SystemOutput(ctx, "Error: "+err.Error())
	}

	cmd, allowed, reason, err := r.resolveInterceptor()(ctx, cmd)
	if err != nil {
		return fmt.Errorf("command interceptor error: %w", err)
	}
	if !allowed {
		r.resolveLogger().Debug("Command blocked", "cmd", cmd.Verb, "reason", reason)
		return handler.SystemOutput(ctx, "Blocked: "+reason)
	}

	msg, err := Apply(p, cmd)
	if errors.Is(err, ErrQuit) {
		return err
	}
	if err != nil {
		return handler.SystemOutput(ctx, "Error: "+err.Error())
	}
	return handler.SystemOutput(ctx, msg)
}

// Done reports whether nothing will move p without further input:
// playback is not running and no state machine is waiting.
func Done(p *kinema.Player) bool {
	switch p.StateMachineStatus() {
	case domain.MachineRunning, domain.MachineTweening:
		return false
	case domain.MachineStopped:
		return !p.IsPlaying() && !p.IsTweening()
	}
	return p.IsComplete()
}

// readInputs reads one line per request on next, so interceptors may read
// from the handler in between.
func (r *Runner) readInputs(ctx context.Context, handler IOHandler) (<-chan lineResult, chan<- struct{}) {
	out := make(chan lineResult)
	next := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-next:
			}
			line, err := handler.Input(ctx)
			select {
			case out <- lineResult{line: line, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out, next
}

func (r *Runner) flush(ctx context.Context, handler IOHandler, c *Collector) error {
	for _, n := range c.Drain() {
		if err := handler.Output(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) finish(p *kinema.Player) error {
	// The run context is already done here.
	if err := r.Save(context.Background(), p); err != nil {
		return fmt.Errorf("critical persistence error: %w", err)
	}
	return nil
}

func (r *Runner) interval() time.Duration {
	fps := r.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Duration(float64(time.Second) / fps)
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler == nil {
		// Memoize to prevent creating new pumps on subsequent Run calls.
		r.Handler = NewTextHandler(nil, nil)
	}
	return r.Handler
}

func (r *Runner) resolveInterceptor() CommandInterceptor {
	if r.Interceptor != nil {
		return r.Interceptor
	}
	return AutoApproveMiddleware()
}

func (r *Runner) resolveLogger() *slog.Logger {
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	return r.Logger
}
