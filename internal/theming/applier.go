// Package theming resolves theme rules and slot overrides into the
// per-frame slot values handed to the rasterizer.
package theming

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/schema"
)

// Applier holds the active theme and any slot data set directly. Direct
// slot data wins over theme rules for the same slot id.
type Applier struct {
	themeID   string
	rules     map[string]rule
	overrides map[string]rule
	declared  map[string]bool
}

// New returns an Applier with no theme applied.
func New() *Applier {
	return &Applier{}
}

// Declare records the slot ids of the loaded document. Rules for other
// ids are dropped. A nil slice accepts every id.
func (a *Applier) Declare(slots []string) {
	if slots == nil {
		a.declared = nil
		return
	}
	a.declared = make(map[string]bool, len(slots))
	for _, s := range slots {
		a.declared[s] = true
	}
}

// Apply activates theme for animationID. Rules are compiled up front; if
// any fails the previous theme stays active.
func (a *Applier) Apply(theme domain.Theme, animationID string) error {
	compiled := make(map[string]rule, len(theme.Rules))
	for _, r := range theme.Rules {
		if !r.AppliesTo(animationID) || !a.accepts(r.ID) {
			continue
		}
		c, err := compileRule(r)
		if err != nil {
			return err
		}
		compiled[r.ID] = c
	}
	a.themeID = theme.ID
	a.rules = compiled
	return nil
}

// Reset removes the theme and every slot override, restoring the authored
// values.
func (a *Applier) Reset() {
	a.themeID = ""
	a.rules = nil
	a.overrides = nil
}

// ThemeID returns the id of the active theme, or "".
func (a *Applier) ThemeID() string { return a.themeID }

// SetSlots replaces the direct slot overrides with payload, a JSON object
// mapping slot id to {type, value|keyframes}. Validation fails closed: on
// any error nothing changes. Unknown slot ids are ignored.
func (a *Applier) SetSlots(payload []byte) error {
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("%w: slots: %v", domain.ErrInvalidParameter, err)
	}
	if err := schema.ValidateSlots(decoded); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
	}

	var rules map[string]domain.ThemeRule
	if err := json.Unmarshal(payload, &rules); err != nil {
		return fmt.Errorf("%w: slots: %v", domain.ErrInvalidParameter, err)
	}
	compiled := make(map[string]rule, len(rules))
	for id, r := range rules {
		if !a.accepts(id) {
			continue
		}
		r.ID = id
		c, err := compileRule(r)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
		}
		compiled[id] = c
	}
	a.overrides = compiled
	return nil
}

// ClearSlots drops every direct override.
func (a *Applier) ClearSlots() {
	a.overrides = nil
}

// Active reports whether anything would be overridden.
func (a *Applier) Active() bool {
	return len(a.rules) > 0 || len(a.overrides) > 0
}

// Slots returns the overridden slot ids, sorted.
func (a *Applier) Slots() []string {
	seen := make(map[string]bool, len(a.rules)+len(a.overrides))
	for id := range a.rules {
		seen[id] = true
	}
	for id := range a.overrides {
		seen[id] = true
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Evaluate resolves every overridden slot at frame. It returns nil when
// nothing is overridden.
func (a *Applier) Evaluate(frame float64) map[string]domain.SlotValue {
	if !a.Active() {
		return nil
	}
	out := make(map[string]domain.SlotValue, len(a.rules)+len(a.overrides))
	for id, r := range a.rules {
		out[id] = r.at(frame)
	}
	for id, r := range a.overrides {
		out[id] = r.at(frame)
	}
	return out
}

func (a *Applier) accepts(id string) bool {
	return a.declared == nil || a.declared[id]
}
