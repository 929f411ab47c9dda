package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/pkg/domain"
)

// Resume restores the stored snapshot of the session into p. Without a
// snapshot, or without a store, a loaded state machine is started.
func (r *Runner) Resume(ctx context.Context, p *kinema.Player) error {
	if r.Store != nil && r.SessionID != "" {
		snap, err := r.Store.Load(ctx, r.SessionID)
		switch {
		case err == nil:
			if err := p.Restore(*snap); err != nil {
				return fmt.Errorf("failed to restore session %q: %w", r.SessionID, err)
			}
			r.resolveLogger().Debug("Session restored", "session_id", r.SessionID, "state", snap.State)
			return nil
		case !errors.Is(err, domain.ErrSnapshotNotFound):
			return fmt.Errorf("failed to load session %q: %w", r.SessionID, err)
		}
	}
	if p.StateMachineStatus() == domain.MachineLoaded {
		if err := p.StateMachineStart(); err != nil {
			return fmt.Errorf("failed to start state machine: %w", err)
		}
	}
	return nil
}

// Save stores the snapshot of p under the session id. It is a no-op
// without a store or without a state machine.
func (r *Runner) Save(ctx context.Context, p *kinema.Player) error {
	if r.Store == nil || r.SessionID == "" {
		return nil
	}
	if p.StateMachineStatus() == domain.MachineUnloaded {
		return nil
	}
	snap := p.Snapshot()
	snap.ID = r.SessionID
	if err := r.Store.Save(ctx, r.SessionID, &snap); err != nil {
		return err
	}
	r.resolveLogger().Debug("Snapshot saved", "session_id", r.SessionID, "state", snap.State)
	return nil
}
