package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/kinema/internal/presentation/graph"
	"github.com/aretw0/kinema/internal/validator"
)

// Validate lints the state machine of opts and prints the report. It
// fails when the definition has errors; warnings only print.
func Validate(opts RunOptions, out io.Writer) error {
	def, markers, err := LoadDefinition(opts)
	if err != nil {
		return err
	}
	report := validator.Validate(def, markers)
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
		return report.Err()
	}

	for _, w := range report.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	if err := report.Err(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: OK\n", report.Definition)
	return nil
}

// Graph prints the state machine of opts as a Mermaid flowchart. With a
// session id the stored state is highlighted.
func Graph(ctx context.Context, opts RunOptions, out io.Writer) error {
	def, _, err := LoadDefinition(opts)
	if err != nil {
		return err
	}
	var overlay *graph.Overlay
	if opts.SessionID != "" {
		persistence, err := setupPersistence(opts)
		if err != nil {
			return err
		}
		defer persistence.Close()
		snap, err := persistence.Store.Load(ctx, opts.SessionID)
		if err != nil {
			return fmt.Errorf("failed to load session %q: %w", opts.SessionID, err)
		}
		overlay = &graph.Overlay{Current: snap.State}
	}
	_, err = io.WriteString(out, graph.GenerateMermaid(def, overlay))
	return err
}
