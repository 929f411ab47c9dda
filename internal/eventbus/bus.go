// Package eventbus fans out player and state machine notifications to
// registered observers.
//
// Each registry keeps subscription order. An optional internal subscriber is
// always notified first. Publishing copies the subscriber list under the
// lock and calls observers after releasing it, so an observer may subscribe,
// unsubscribe or call back into the player during its own notification.
package eventbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/kinema/internal/logging"
	"github.com/aretw0/kinema/pkg/domain"
)

// Handle identifies a subscription.
type Handle uint64

type entry[T any] struct {
	handle   Handle
	observer T
}

// registry is an ordered list of observers of one kind.
type registry[T any] struct {
	internal *T
	entries  []entry[T]
}

func (r *registry[T]) add(h Handle, o T) {
	r.entries = append(r.entries, entry[T]{handle: h, observer: o})
}

func (r *registry[T]) remove(h Handle) bool {
	for i, e := range r.entries {
		if e.handle == h {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (r *registry[T]) snapshot() []T {
	out := make([]T, 0, len(r.entries)+1)
	if r.internal != nil {
		out = append(out, *r.internal)
	}
	for _, e := range r.entries {
		out = append(out, e.observer)
	}
	return out
}

// Bus holds the two observer registries.
type Bus struct {
	mu      sync.Mutex
	next    Handle
	player  registry[domain.Observer]
	machine registry[domain.StateMachineObserver]
	logger  *slog.Logger
}

// Option configures the Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report recovered observer panics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a playback observer.
func (b *Bus) Subscribe(o domain.Observer) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.player.add(b.next, o)
	return b.next
}

// Unsubscribe removes a playback observer. Unknown handles are ignored.
func (b *Bus) Unsubscribe(h Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.player.remove(h)
}

// SubscribeStateMachine registers a state machine observer.
func (b *Bus) SubscribeStateMachine(o domain.StateMachineObserver) Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.machine.add(b.next, o)
	return b.next
}

// UnsubscribeStateMachine removes a state machine observer. Unknown handles are ignored.
func (b *Bus) UnsubscribeStateMachine(h Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.machine.remove(h)
}

// SetInternal installs the framework observers notified before any
// subscriber. Nil clears the slot.
func (b *Bus) SetInternal(player domain.Observer, machine domain.StateMachineObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.player.internal = nil
	b.machine.internal = nil
	if player != nil {
		b.player.internal = &player
	}
	if machine != nil {
		b.machine.internal = &machine
	}
}

// Len returns the number of external subscriptions in each registry.
func (b *Bus) Len() (player, machine int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.player.entries), len(b.machine.entries)
}

// PublishPlayer delivers events in order to every playback observer.
func (b *Bus) PublishPlayer(events ...domain.PlayerEvent) {
	if len(events) == 0 {
		return
	}
	b.mu.Lock()
	observers := b.player.snapshot()
	b.mu.Unlock()

	for _, ev := range events {
		for _, o := range observers {
			b.deliver(string(ev.Type), func() { ev.Dispatch(o) })
		}
	}
}

// PublishMachine delivers events in order to every state machine observer.
func (b *Bus) PublishMachine(events ...domain.MachineEvent) {
	if len(events) == 0 {
		return
	}
	b.mu.Lock()
	observers := b.machine.snapshot()
	b.mu.Unlock()

	for _, ev := range events {
		for _, o := range observers {
			b.deliver(string(ev.Type), func() { ev.Dispatch(o) })
		}
	}
}

// deliver runs one callback, containing a panic to that observer.
func (b *Bus) deliver(event string, call func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("Observer panicked",
				"event", event,
				"err", fmt.Sprint(r),
			)
		}
	}()
	call()
}
