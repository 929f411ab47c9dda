package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/presentation/tui"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/ports"
	"github.com/aretw0/kinema/pkg/runner"
	"github.com/muesli/termenv"
)

// Execute handles the play command, dispatching to session or watch mode.
func Execute(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	if opts.Watch {
		if opts.Headless {
			return fmt.Errorf("--watch and --headless cannot be used together")
		}
		return RunWatch(ctx, opts, in, out)
	}
	return RunSession(ctx, opts, in, out)
}

// RunSession plays the animation once, feeding it commands from in until
// the input ends, a quit command arrives or ctx is done.
func RunSession(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	logger := createLogger(opts)

	persistence, err := setupPersistence(opts)
	if err != nil {
		return err
	}
	defer persistence.Close()

	if opts.Fresh && opts.SessionID != "" {
		if err := ResetSession(ctx, persistence.Store, opts.SessionID); err != nil {
			return err
		}
	}

	factory, err := NewPlayerFactory(opts, logger, nil)
	if err != nil {
		return err
	}
	p, err := factory(ctx, sessionName(opts))
	if err != nil {
		return err
	}
	defer p.Destroy()

	detach, err := attachHooks(ctx, opts, p, logger)
	if err != nil {
		return err
	}
	defer detach()

	if !opts.quiet() {
		tui.PrintBanner(out)
		printSystemMessage(out, "Kinema %s. Type 'help' for commands.", kinema.Version)
	}

	handler := newHandler(opts, in, out)
	r := newRunner(opts, persistence, handler)
	err = r.Run(ctx, p)
	logCompletion(out, p.StateMachineCurrentState(), err, opts.quiet())
	return handleExecutionError(err)
}

// ResetSession deletes the stored snapshot of sessionID. A missing session
// is not an error.
func ResetSession(ctx context.Context, store ports.SnapshotStore, sessionID string) error {
	if err := store.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSnapshotNotFound) {
		return fmt.Errorf("failed to reset session %q: %w", sessionID, err)
	}
	return nil
}

func sessionName(opts RunOptions) string {
	if opts.SessionID != "" {
		return opts.SessionID
	}
	return "cli"
}

func newHandler(opts RunOptions, in io.Reader, out io.Writer) runner.IOHandler {
	if opts.JSON {
		return runner.NewJSONHandler(in, out)
	}
	profile := termenv.Ascii
	var handlerOpts []runner.TextHandlerOption
	if f, ok := out.(*os.File); ok && tui.IsTerminal(f) && !opts.Headless {
		profile = termenv.ColorProfile()
		handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
	}
	handlerOpts = append(handlerOpts, runner.WithTextHandlerFormatter(tui.NewFormatter(profile)))
	return runner.NewTextHandler(in, out, handlerOpts...)
}

func newRunner(opts RunOptions, persistence *Persistence, handler runner.IOHandler) *runner.Runner {
	var interceptors []runner.CommandInterceptor
	if opts.ReadOnly {
		interceptors = append(interceptors, runner.ReadOnlyMiddleware())
	}
	if len(opts.Allow) > 0 {
		interceptors = append(interceptors, runner.AllowListMiddleware(opts.Allow...))
	}
	if opts.Confirm {
		interceptors = append(interceptors, runner.ConfirmationMiddleware(handler))
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(createLogger(opts)),
		runner.WithInputHandler(handler),
		runner.WithFPS(opts.FPS),
		runner.WithFixedStep(opts.FixedStep),
		runner.WithFrames(opts.Frames),
		runner.WithStopOnComplete(opts.UntilDone),
		runner.WithMaxDuration(opts.MaxDuration),
	}
	if len(interceptors) > 0 {
		runnerOpts = append(runnerOpts, runner.WithInterceptor(runner.MultiInterceptor(interceptors...)))
	}
	if opts.SessionID != "" {
		runnerOpts = append(runnerOpts,
			runner.WithStore(persistence.Store),
			runner.WithSessionID(opts.SessionID),
		)
	}
	return runner.NewRunner(runnerOpts...)
}
