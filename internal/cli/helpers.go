package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/kinema/internal/logging"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/runner"
)

// createLogger configures the application logger. Outside debug mode the
// CLI stays silent and reports through system messages.
func createLogger(opts RunOptions) *slog.Logger {
	if opts.Debug {
		return logging.NewWithFormat(os.Stderr, slog.LevelDebug, opts.LogFormat)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || errors.Is(err, runner.ErrQuit)
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil || isInterrupted(err) {
		return nil
	}
	return err
}

func logCompletion(w io.Writer, state string, err error, quiet bool) {
	if quiet {
		return
	}
	where := "player"
	if state != "" {
		where = fmt.Sprintf("'%s' state", state)
	}
	switch {
	case err == nil:
		printSystemMessage(w, "Finished at %s.", where)
	case isInterrupted(err):
		printSystemMessage(w, "Interrupted at %s.", where)
	default:
		printSystemMessage(w, "Failed at %s: %v", where, err)
	}
}

// isFile reports whether ref names an existing file rather than an id.
func isFile(ref string) bool {
	if ref == "" {
		return false
	}
	info, err := os.Stat(ref)
	return err == nil && !info.IsDir()
}

// debugObservers logs every notification at debug level.
func debugObservers(logger *slog.Logger) (domain.PlayerFunc, domain.MachineFunc) {
	player := func(e domain.PlayerEvent) {
		if e.Type == domain.PlayerFrame || e.Type == domain.PlayerRender {
			return
		}
		logger.Debug("Player event", "type", e.Type, "frame", e.Frame)
	}
	machine := func(e domain.MachineEvent) {
		logger.Debug("Machine event", "type", e.Type, "from", e.From, "to", e.To, "state", e.State, "name", e.Name)
	}
	return player, machine
}
