package eventbus

import (
	"testing"

	"github.com/aretw0/kinema/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func recorder(name string, log *[]string) domain.PlayerHooks {
	return domain.PlayerHooks{
		Play:  func() { *log = append(*log, name+":play") },
		Frame: func(f float64) { *log = append(*log, name+":frame") },
	}
}

func TestPublishPreservesOrder(t *testing.T) {
	var log []string
	b := New()
	b.Subscribe(recorder("a", &log))
	b.Subscribe(recorder("b", &log))
	b.SetInternal(recorder("internal", &log), nil)

	b.PublishPlayer(
		domain.PlayerEvent{Type: domain.PlayerPlay},
		domain.PlayerEvent{Type: domain.PlayerFrame, Frame: 1},
	)

	assert.Equal(t, []string{
		"internal:play", "a:play", "b:play",
		"internal:frame", "a:frame", "b:frame",
	}, log)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	var log []string
	b := New()
	h := b.Subscribe(recorder("a", &log))
	b.Subscribe(recorder("b", &log))

	assert.True(t, b.Unsubscribe(h))
	assert.False(t, b.Unsubscribe(h))
	assert.False(t, b.Unsubscribe(Handle(999)))

	b.PublishPlayer(domain.PlayerEvent{Type: domain.PlayerPlay})
	assert.Equal(t, []string{"b:play"}, log)
}

func TestPanickingObserverDoesNotBlockOthers(t *testing.T) {
	var got []string
	b := New()
	b.SubscribeStateMachine(domain.MachineHooks{
		Start: func() { panic("boom") },
	})
	b.SubscribeStateMachine(domain.MachineHooks{
		Start: func() { got = append(got, "second") },
	})

	assert.NotPanics(t, func() {
		b.PublishMachine(domain.MachineEvent{Type: domain.MachineStart})
	})
	assert.Equal(t, []string{"second"}, got)
}

func TestObserverMayMutateBusDuringDelivery(t *testing.T) {
	b := New()
	var calls int
	var h Handle
	h = b.Subscribe(domain.PlayerHooks{
		Stop: func() {
			calls++
			b.Unsubscribe(h)
			b.Subscribe(domain.PlayerHooks{})
		},
	})

	b.PublishPlayer(domain.PlayerEvent{Type: domain.PlayerStop})
	b.PublishPlayer(domain.PlayerEvent{Type: domain.PlayerStop})

	assert.Equal(t, 1, calls)
	player, machine := b.Len()
	assert.Equal(t, 1, player)
	assert.Zero(t, machine)
}

func TestRegistriesAreIndependent(t *testing.T) {
	var log []string
	b := New()
	b.Subscribe(recorder("p", &log))
	b.SubscribeStateMachine(domain.MachineHooks{
		Transition: func(from, to string) { log = append(log, from+">"+to) },
	})

	b.PublishMachine(domain.MachineEvent{Type: domain.MachineTransition, From: "a", To: "b"})
	assert.Equal(t, []string{"a>b"}, log)
}
