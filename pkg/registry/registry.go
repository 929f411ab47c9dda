// Package registry maps custom state machine events to host hooks.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/kinema/internal/logging"
	"github.com/aretw0/kinema/pkg/domain"
)

// OpenURLEvent is the hook name an allowed OpenUrl action is dispatched to.
const OpenURLEvent = "OpenUrl"

// Event is one custom event as seen by a hook.
type Event struct {
	Session string
	Name    string
	// URL is set for OpenUrl events.
	URL string
}

// ParseEvent splits "OpenUrl:<url>" custom events into name and URL.
func ParseEvent(session, name string) Event {
	if url, ok := strings.CutPrefix(name, OpenURLEvent+":"); ok {
		return Event{Session: session, Name: OpenURLEvent, URL: url}
	}
	return Event{Session: session, Name: name}
}

// HookFunc reacts to a custom event.
type HookFunc func(ctx context.Context, ev Event) error

// Registry manages the available hooks.
type Registry struct {
	mu    sync.RWMutex
	hooks map[string]HookFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		hooks: make(map[string]HookFunc),
	}
}

// Register binds fn to the custom event name.
// An existing hook with the same name is overwritten.
func (r *Registry) Register(name string, fn HookFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = fn
}

// Names lists the registered events in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the hook bound to ev.Name. It reports false when no hook
// is registered.
func (r *Registry) Dispatch(ctx context.Context, ev Event) (bool, error) {
	r.mu.RLock()
	fn, ok := r.hooks[ev.Name]
	r.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := fn(ctx, ev); err != nil {
		return true, fmt.Errorf("hook %q: %w", ev.Name, err)
	}
	return true, nil
}

// Dispatcher feeds the custom events of one player to a registry. Hooks
// run off the tick goroutine.
type Dispatcher struct {
	reg     *Registry
	ctx     context.Context
	session string
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher returns a dispatcher whose hooks run under ctx.
func NewDispatcher(ctx context.Context, reg *Registry, session string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{reg: reg, ctx: ctx, session: session, logger: logger}
}

// Observer returns the state machine observer to subscribe.
func (d *Dispatcher) Observer() domain.StateMachineObserver {
	return domain.MachineFunc(func(e domain.MachineEvent) {
		if e.Type != domain.MachineCustomEvent {
			return
		}
		ev := ParseEvent(d.session, e.Name)
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			ran, err := d.reg.Dispatch(d.ctx, ev)
			switch {
			case err != nil:
				d.logger.Warn("hook failed", "event", ev.Name, "session", ev.Session, "err", err)
			case ran:
				d.logger.Debug("hook ran", "event", ev.Name, "session", ev.Session)
			}
		}()
	})
}

// Wait blocks until every started hook returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
