package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// ListSessions prints the stored session ids, one per line.
func ListSessions(ctx context.Context, opts RunOptions, out io.Writer) error {
	persistence, err := setupPersistence(opts)
	if err != nil {
		return err
	}
	defer persistence.Close()

	ids, err := persistence.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if opts.JSON {
		if ids == nil {
			ids = []string{}
		}
		return json.NewEncoder(out).Encode(ids)
	}
	if len(ids) == 0 && !opts.quiet() {
		printSystemMessage(out, "No sessions.")
	}
	for _, id := range ids {
		fmt.Fprintln(out, id)
	}
	return nil
}

// InspectSession prints the stored snapshot of id as JSON.
func InspectSession(ctx context.Context, opts RunOptions, id string, out io.Writer) error {
	persistence, err := setupPersistence(opts)
	if err != nil {
		return err
	}
	defer persistence.Close()

	snap, err := persistence.Store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session %q: %w", id, err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// DeleteSession removes the stored snapshot of id.
func DeleteSession(ctx context.Context, opts RunOptions, id string, out io.Writer) error {
	persistence, err := setupPersistence(opts)
	if err != nil {
		return err
	}
	defer persistence.Close()

	if err := persistence.Store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session %q: %w", id, err)
	}
	if !opts.quiet() {
		printSystemMessage(out, "Session '%s' deleted.", id)
	}
	return nil
}
