package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	loamadapter "github.com/aretw0/kinema/pkg/adapters/loam"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/dsl"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
)

const starterAnimation = `{
  "v": "5.7.0", "nm": "button", "fr": 30, "ip": 0, "op": 60, "w": 200, "h": 200,
  "markers": [
    {"cm": "idle", "tm": 0, "dr": 29},
    {"cm": "pressed", "tm": 30, "dr": 29}
  ],
  "layers": [
    {"nm": "button", "rect": [50, 50, 100, 100], "to": [50, 60], "fill": {"sid": "accent", "c": [0.4, 0.5, 1, 1]}},
    {"nm": "bg", "rect": [0, 0, 200, 200], "fill": {"sid": "bg", "c": [1, 1, 1, 1]}}
  ]
}`

const starterTheme = `{
  "id": "dark",
  "rules": [
    {"id": "bg", "type": "Color", "value": "#111827"},
    {"id": "accent", "type": "Color", "value": "#f472b6"}
  ]
}`

// starterMachine counts clicks on the button and plays the pressed
// segment from the third one; a reset event goes back to idle.
func starterMachine() ([]byte, error) {
	b := dsl.New("button")
	b.Numeric("clicks", 0).Event("reset")

	b.Add("idle").
		Segment("idle").
		Loop(true, 0).
		Autoplay().
		Go("pressed", dsl.AtLeast("clicks", 3))
	b.Add("pressed").
		Segment("pressed").
		Autoplay().
		OnEntry(dsl.CustomEvent("pressed")).
		OnExit(dsl.SetNumeric("clicks", 0)).
		Go("idle", dsl.On("reset"))

	b.On(domain.InteractClick, "button", dsl.Increment("clicks"))
	return b.YAML()
}

// Scaffold writes a starter project to dir: the "button" animation, state
// machine and the "dark" theme, one Loam document each.
func Scaffold(ctx context.Context, dir string, out io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	repo, err := loam.Init(dir, loam.WithVersioning(false))
	if err != nil {
		return fmt.Errorf("failed to initialize loam: %w", err)
	}

	machine, err := starterMachine()
	if err != nil {
		return err
	}
	entries := []struct {
		path string
		meta loamadapter.EntryMetadata
		body string
	}{
		{"a/button.md", loamadapter.EntryMetadata{ID: "button", Kind: string(domain.EntryAnimation)}, "```json\n" + starterAnimation + "\n```\n"},
		{"s/button.md", loamadapter.EntryMetadata{ID: "button", Kind: string(domain.EntryStateMachine), Description: "Counts clicks, presses on the third"}, "```yaml\n" + string(machine) + "```\n"},
		{"t/dark.md", loamadapter.EntryMetadata{ID: "dark", Kind: string(domain.EntryTheme)}, "```json\n" + starterTheme + "\n```\n"},
	}
	for _, e := range entries {
		doc := core.Document{
			ID:      e.path,
			Content: e.body,
			Metadata: core.Metadata{
				"id":          e.meta.ID,
				"kind":        e.meta.Kind,
				"description": e.meta.Description,
			},
		}
		if err := repo.Save(ctx, doc); err != nil {
			return fmt.Errorf("failed to save %s: %w", e.path, err)
		}
	}
	printSystemMessage(out, "Project created in %s. Try: kinema play --project %s button --machine button", dir, dir)
	return nil
}
