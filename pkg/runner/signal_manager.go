package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalManager turns SIGINT and SIGTERM into context cancellation for the
// drive loop.
type SignalManager struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager derives a signal-aware context from parent and starts
// listening immediately.
func NewSignalManager(parent context.Context) *SignalManager {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return &SignalManager{ctx: ctx, cancel: cancel}
}

// Context is cancelled on the first signal or when the parent is done.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Interrupted reports whether the context ended because of a signal rather
// than the parent.
func (sm *SignalManager) Interrupted(parent context.Context) bool {
	return sm.ctx.Err() != nil && parent.Err() == nil
}

// Stop releases the signal listener.
func (sm *SignalManager) Stop() {
	sm.cancel()
}
