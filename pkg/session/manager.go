package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/logging"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// Factory builds the player for a new session: animation loaded, state
// machine loaded. The manager restores any stored snapshot afterwards.
type Factory func(ctx context.Context, sessionID string) (*kinema.Player, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the live players of a server and serializes access to each
// of them. Snapshots are persisted after every Do so that a session can be
// resumed on another replica or after a restart.
type Manager struct {
	store   ports.SnapshotStore
	factory Factory

	mu      sync.Mutex            // guards locks and players
	locks   map[string]*lockEntry // reference counted per-session locks
	players map[string]*kinema.Player

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager persisting to store and building
// players with factory.
func NewManager(store ports.SnapshotStore, factory Factory, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		factory: factory,
		locks:   make(map[string]*lockEntry),
		players: make(map[string]*kinema.Player),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Do runs fn against the session's player while holding the session lock,
// then saves a snapshot of its state machine. The player is created on
// first use.
func (m *Manager) Do(ctx context.Context, sessionID string, fn func(context.Context, *kinema.Player) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		p, err := m.open(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(ctx, p); err != nil {
			return err
		}
		return m.persist(ctx, sessionID, p)
	})
}

// Open returns the session's player, creating it on first use. Callers
// that touch the player outside Do get no serialization beyond the
// player's own lock.
func (m *Manager) Open(ctx context.Context, sessionID string) (*kinema.Player, error) {
	var p *kinema.Player
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		p, err = m.open(ctx, sessionID)
		return err
	})
	return p, err
}

func (m *Manager) open(ctx context.Context, sessionID string) (*kinema.Player, error) {
	m.mu.Lock()
	p, ok := m.players[sessionID]
	m.mu.Unlock()
	if ok {
		return p, nil
	}

	p, err := m.factory(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session %q: %w", sessionID, err)
	}

	snap, err := m.store.Load(ctx, sessionID)
	switch {
	case errors.Is(err, domain.ErrSnapshotNotFound):
		if p.StateMachineStatus() == domain.MachineLoaded {
			if err := p.StateMachineStart(); err != nil {
				return nil, fmt.Errorf("failed to start session %q: %w", sessionID, err)
			}
		}
	case err != nil:
		return nil, fmt.Errorf("failed to check session existence: %w", err)
	default:
		if err := p.Restore(*snap); err != nil {
			return nil, fmt.Errorf("failed to restore session %q: %w", sessionID, err)
		}
		m.logger.Debug("Session restored", "session_id", sessionID, "state", snap.State)
	}

	m.mu.Lock()
	m.players[sessionID] = p
	m.mu.Unlock()
	return p, nil
}

func (m *Manager) persist(ctx context.Context, sessionID string, p *kinema.Player) error {
	if p.StateMachineStatus() == domain.MachineUnloaded {
		return nil
	}
	snap := p.Snapshot()
	snap.ID = sessionID
	return m.store.Save(ctx, sessionID, &snap)
}

// Save persists the session's current snapshot.
func (m *Manager) Save(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		p, ok := m.players[sessionID]
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: session %q is not open", domain.ErrNotLoaded, sessionID)
		}
		return m.persist(ctx, sessionID, p)
	})
}

// Close saves and destroys the session's player. The snapshot is kept.
func (m *Manager) Close(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		p, ok := m.players[sessionID]
		delete(m.players, sessionID)
		m.mu.Unlock()
		if !ok {
			return nil
		}
		err := m.persist(ctx, sessionID, p)
		p.Destroy()
		return err
	})
}

// Delete destroys the player and removes its snapshot from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		p, ok := m.players[sessionID]
		delete(m.players, sessionID)
		m.mu.Unlock()
		if ok {
			p.Destroy()
		}
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Active returns the ids of the sessions with a live player, sorted.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.players))
	for id := range m.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
