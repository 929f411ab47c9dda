package cli

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/presentation/tui"
	"github.com/aretw0/kinema/pkg/adapters/loam"
	"github.com/aretw0/kinema/pkg/runner"
)

// RunWatch plays a project in development mode. Every change to the
// project reloads the player; the session snapshot is saved before the
// reload and restored after it, so the machine keeps its state and inputs.
func RunWatch(ctx context.Context, opts RunOptions, in io.Reader, out io.Writer) error {
	if opts.Project == "" {
		return fmt.Errorf("--watch needs a project directory")
	}
	logger := createLogger(opts)

	// Scope the default session by project so two projects never collide.
	if opts.SessionID == "" {
		hash := md5.Sum([]byte(opts.Project))
		opts.SessionID = fmt.Sprintf("watch-%x", hash[:4])
	}

	source, err := loam.Open(opts.Project)
	if err != nil {
		return err
	}
	persistence, err := setupPersistence(opts)
	if err != nil {
		return err
	}
	defer persistence.Close()

	if opts.Fresh {
		if err := ResetSession(ctx, persistence.Store, opts.SessionID); err != nil {
			return err
		}
	}

	if !opts.quiet() {
		tui.PrintBanner(out)
		printSystemMessage(out, "Kinema %s watching '%s' in session '%s'.", kinema.Version, opts.Project, opts.SessionID)
	}
	logger.Info("Starting watcher", "path", opts.Project, "session_id", opts.SessionID)

	// One handler for every iteration, so stdin has a single reader.
	handler := newHandler(opts, in, out)
	for {
		reload, err := watchIteration(ctx, opts, source, persistence, handler, out)
		if !reload {
			return handleExecutionError(err)
		}
		logger.Info("Watcher restarting")
	}
}

// watchIteration runs one player until the project changes, which asks
// for a reload, or the run ends for any other reason.
func watchIteration(ctx context.Context, opts RunOptions, source *loam.Source, persistence *Persistence, handler runner.IOHandler, out io.Writer) (bool, error) {
	iterCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	logger := createLogger(opts)

	changes, err := source.Watch(iterCtx)
	if err != nil {
		return false, err
	}

	p, err := createPlayer(opts, opts.SessionID, source, logger, nil)
	if err != nil {
		printSystemMessage(out, "Load failed: %v. Waiting for changes.", err)
		return waitForChange(ctx, changes)
	}
	defer p.Destroy()

	detach, err := attachHooks(ctx, opts, p, logger)
	if err != nil {
		return false, err
	}
	defer detach()

	r := newRunner(opts, persistence, handler)
	done := make(chan error, 1)
	go func() { done <- r.Run(iterCtx, p) }()

	select {
	case err := <-done:
		if err != nil && !isInterrupted(err) {
			// A definition that no longer matches the saved session lands here.
			printSystemMessage(out, "Run failed: %v. Waiting for changes.", err)
			return waitForChange(ctx, changes)
		}
		logCompletion(out, p.StateMachineCurrentState(), err, opts.quiet())
		return false, err
	case <-changes:
		if !opts.quiet() {
			printSystemMessage(out, "Change detected, reloading.")
		}
		cancel()
		// The runner saves the snapshot on its way out.
		if err := <-done; err != nil && !isInterrupted(err) {
			return false, err
		}
		return true, nil
	}
}

func waitForChange(ctx context.Context, changes <-chan struct{}) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case _, ok := <-changes:
		return ok, nil
	}
}
