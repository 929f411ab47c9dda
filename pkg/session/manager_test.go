package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/testutils"
	"github.com/aretw0/kinema/pkg/adapters/memory"
	"github.com/aretw0/kinema/pkg/adapters/redis"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const counter = `
id: counter
initial: idle
inputs: [{type: Numeric, name: taps, value: 0}]
states:
  - name: idle
    transitions:
      - toState: busy
        guards: [{type: Numeric, inputName: taps, conditionType: GreaterThanOrEqual, compareTo: 3}]
  - {name: busy, segment: hover, autoplay: true, transitions: []}
interactions:
  - type: Click
    actions: [{type: Increment, inputName: taps}]
`

func factory(ctx context.Context, sessionID string) (*kinema.Player, error) {
	p, err := kinema.New(domain.DefaultConfig(), kinema.WithName(sessionID))
	if err != nil {
		return nil, err
	}
	if err := p.LoadAnimationData([]byte(testutils.Animation), 100, 100); err != nil {
		return nil, err
	}
	if err := p.StateMachineLoadData([]byte(counter)); err != nil {
		return nil, err
	}
	return p, nil
}

func click(ctx context.Context, p *kinema.Player) error {
	return p.StateMachinePostEvent(domain.Click(1, 1))
}

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
	mu       sync.Mutex
	inFlight int
	overlap  bool
}

func NewSlowStore() *SlowStore {
	return &SlowStore{Store: memory.NewStore()}
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > 1 {
		s.overlap = true
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond) // Simulate IO

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
	return s.Store.Save(ctx, sessionID, snap)
}

func TestManager_DoSerializesAccess(t *testing.T) {
	store := NewSlowStore()
	manager := session.NewManager(store, factory)
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, manager.Do(ctx, id, func(ctx context.Context, p *kinema.Player) error {
				if err := click(ctx, p); err != nil {
					return err
				}
				return p.StateMachineTick()
			}))
		}()
	}
	wg.Wait()

	assert.False(t, store.overlap, "saves of one session must not overlap")
	snap, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 10.0, snap.Triggers["taps"].Number)
	assert.Equal(t, "busy", snap.State)
	assert.Equal(t, id, snap.ID)
}

func TestManager_OpenStartsNewSessions(t *testing.T) {
	manager := session.NewManager(memory.NewStore(), factory)
	ctx := context.Background()

	p, err := manager.Open(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, domain.MachineRunning, p.StateMachineStatus())
	assert.Equal(t, "idle", p.StateMachineCurrentState())

	again, err := manager.Open(ctx, "fresh")
	require.NoError(t, err)
	assert.Same(t, p, again)
	assert.Equal(t, []string{"fresh"}, manager.Active())
}

func TestManager_ResumesFromStore(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first := session.NewManager(store, factory)
	for i := 0; i < 3; i++ {
		require.NoError(t, first.Do(ctx, "s1", func(ctx context.Context, p *kinema.Player) error {
			if err := click(ctx, p); err != nil {
				return err
			}
			return p.StateMachineTick()
		}))
	}
	require.NoError(t, first.Close(ctx, "s1"))
	assert.Empty(t, first.Active())

	// A second replica picks the session up where the first left it.
	second := session.NewManager(store, factory)
	p, err := second.Open(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "busy", p.StateMachineCurrentState())
	taps, _ := p.Trigger("taps")
	assert.Equal(t, 3.0, taps.Number)

	ids, err := second.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)

	require.NoError(t, second.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestManager_FactoryErrors(t *testing.T) {
	boom := errors.New("boom")
	manager := session.NewManager(memory.NewStore(), func(context.Context, string) (*kinema.Player, error) {
		return nil, boom
	})
	err := manager.Do(context.Background(), "x", func(context.Context, *kinema.Player) error { return nil })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, manager.Active())

	assert.ErrorIs(t, manager.Save(context.Background(), "x"), domain.ErrNotLoaded)
}

func TestManager_DistributedLock(t *testing.T) {
	_, client := testutils.SetupRedis(t)
	store := redis.NewFromClient(client)
	locker := redis.NewLocker(client, "kinema:")
	ctx := context.Background()

	a := session.NewManager(store, factory, session.WithLocker(locker), session.WithLockTTL(time.Second))
	b := session.NewManager(store, factory, session.WithLocker(locker), session.WithLockTTL(time.Second))

	var wg sync.WaitGroup
	for _, m := range []*session.Manager{a, b} {
		wg.Add(1)
		go func(m *session.Manager) {
			defer wg.Done()
			assert.NoError(t, m.Do(ctx, "shared", click))
		}(m)
	}
	wg.Wait()

	snap, err := store.Load(ctx, "shared")
	require.NoError(t, err)
	assert.NotEmpty(t, snap.State)
}
