package domain

import "sort"

// SnapshotDiff represents the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// ID is always present to identify the target.
	ID string `json:"id"`

	State  *string        `json:"state,omitempty"`
	Status *MachineStatus `json:"status,omitempty"`
	Frame  *float64       `json:"frame,omitempty"`

	// Triggers contains only changed or added inputs.
	Triggers map[string]Value `json:"triggers,omitempty"`

	// Removed lists inputs that no longer exist (definition replaced).
	Removed []string `json:"removed,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{ID: newSnap.ID}

	if oldSnap == nil || oldSnap.State != newSnap.State {
		diff.State = &newSnap.State
	}
	if oldSnap == nil || oldSnap.Status != newSnap.Status {
		diff.Status = &newSnap.Status
	}
	if oldSnap == nil || oldSnap.Frame != newSnap.Frame {
		diff.Frame = &newSnap.Frame
	}

	diff.Triggers, diff.Removed = diffTriggers(oldSnap, newSnap)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffTriggers(old, new *Snapshot) (map[string]Value, []string) {
	delta := make(map[string]Value)
	var removed []string

	if old == nil {
		for k, v := range new.Triggers {
			delta[k] = v
		}
		if len(delta) == 0 {
			return nil, nil
		}
		return delta, nil
	}

	for k, newVal := range new.Triggers {
		if oldVal, exists := old.Triggers[k]; !exists || !oldVal.Equal(newVal) {
			delta[k] = newVal
		}
	}
	for k := range old.Triggers {
		if _, exists := new.Triggers[k]; !exists {
			removed = append(removed, k)
		}
	}
	sort.Strings(removed)

	if len(delta) == 0 {
		delta = nil
	}
	return delta, removed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.State == nil &&
		d.Status == nil &&
		d.Frame == nil &&
		len(d.Triggers) == 0 &&
		len(d.Removed) == 0
}
