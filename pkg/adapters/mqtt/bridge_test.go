package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/testutils"
	"github.com/aretw0/kinema/pkg/adapters/memory"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/runner"
	"github.com/aretw0/kinema/pkg/session"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doneToken struct{ err error }

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }
func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeClient struct {
	mu         sync.Mutex
	published  []published
	subscribed map[string]paho.MessageHandler
}

func newFakeClient() *fakeClient {
	return &fakeClient{subscribed: make(map[string]paho.MessageHandler)}
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{topic: topic, retained: retained, payload: payload.([]byte)})
	return doneToken{}
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed[topic] = callback
	return doneToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, topic := range topics {
		delete(c.subscribed, topic)
	}
	return doneToken{}
}

func (c *fakeClient) topics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.published))
	for _, p := range c.published {
		out = append(out, p.topic)
	}
	return out
}

func (c *fakeClient) last(topic string) (published, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.published) - 1; i >= 0; i-- {
		if c.published[i].topic == topic {
			return c.published[i], true
		}
	}
	return published{}, false
}

type message struct {
	topic   string
	payload []byte
}

func (m message) Duplicate() bool   { return false }
func (m message) Qos() byte         { return 0 }
func (m message) Retained() bool    { return false }
func (m message) Topic() string     { return m.topic }
func (m message) MessageID() uint16 { return 1 }
func (m message) Payload() []byte   { return m.payload }
func (m message) Ack()              {}

const machine = `
initial: idle
inputs:
  - {type: Numeric, name: taps, value: 0}
states:
  - name: idle
    transitions:
      - toState: busy
        guards: [{type: Numeric, inputName: taps, conditionType: GreaterThanOrEqual, compareTo: 1}]
  - {name: busy, transitions: []}
interactions:
  - type: Click
    actions: [{type: Increment, inputName: taps}]
`

func newManager() *session.Manager {
	return session.NewManager(memory.NewStore(), func(ctx context.Context, id string) (*kinema.Player, error) {
		p, err := kinema.New(domain.DefaultConfig(), kinema.WithName(id))
		if err != nil {
			return nil, err
		}
		if err := p.LoadAnimationData([]byte(testutils.Animation), 100, 100); err != nil {
			return nil, err
		}
		return p, p.StateMachineLoadData([]byte(machine))
	})
}

func TestBridge_PublishesNotifications(t *testing.T) {
	client := newFakeClient()
	b := NewBridge(client, nil, WithPrefix("/lab/"))
	p, err := kinema.New(domain.DefaultConfig())
	require.NoError(t, err)

	detach := b.Attach("s1", p)
	require.NoError(t, p.LoadAnimationData([]byte(testutils.Animation), 100, 100))
	require.True(t, p.SetFrame(4))
	detach()
	require.True(t, p.SetFrame(5))

	topics := client.topics()
	assert.Contains(t, topics, "lab/s1/player/"+string(domain.PlayerLoad))
	assert.NotContains(t, topics, "lab/s1/player/"+string(domain.PlayerFrame))

	msg, ok := client.last("lab/s1/player/" + string(domain.PlayerLoad))
	require.True(t, ok)
	var n runner.Notification
	require.NoError(t, json.Unmarshal(msg.payload, &n))
	assert.Equal(t, "s1", n.Session)
	require.NotNil(t, n.Player)
	assert.Equal(t, domain.PlayerLoad, n.Player.Type)
}

func TestBridge_FramesOptIn(t *testing.T) {
	client := newFakeClient()
	b := NewBridge(client, nil, WithFrames(true))
	p, err := kinema.New(domain.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, p.LoadAnimationData([]byte(testutils.Animation), 100, 100))

	defer b.Attach("s1", p)()
	require.True(t, p.SetFrame(3))
	assert.Contains(t, client.topics(), "kinema/s1/player/"+string(domain.PlayerFrame))
}

func TestBridge_ListenRequiresSessions(t *testing.T) {
	assert.Error(t, NewBridge(newFakeClient(), nil).Listen())
}

func TestBridge_InboundControl(t *testing.T) {
	client := newFakeClient()
	mgr := newManager()
	b := NewBridge(client, mgr)
	require.NoError(t, b.Listen())

	events := client.subscribed["kinema/+/events"]
	commands := client.subscribed["kinema/+/commands"]
	require.NotNil(t, events)
	require.NotNil(t, commands)

	events(nil, message{topic: "kinema/s1/events", payload: []byte(`{"kind":"Click","x":1,"y":1}`)})

	p, err := mgr.Open(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "busy", p.StateMachineCurrentState())
	assert.Contains(t, client.topics(), "kinema/s1/machine/"+string(domain.MachineTransition))

	status, ok := client.last("kinema/s1/status")
	require.True(t, ok)
	assert.True(t, status.retained)
	var st runner.Status
	require.NoError(t, json.Unmarshal(status.payload, &st))
	assert.Equal(t, "busy", st.State)

	commands(nil, message{topic: "kinema/s1/commands", payload: []byte(`seek 6`)})
	assert.Equal(t, 6.0, p.CurrentFrame())

	commands(nil, message{topic: "kinema/s1/commands", payload: []byte(`{"cmd":"frame","args":["2"]}`)})
	assert.Equal(t, 2.0, p.CurrentFrame())
}

func TestBridge_RejectsBadControl(t *testing.T) {
	b := NewBridge(newFakeClient(), newManager())
	ctx := context.Background()

	assert.ErrorIs(t, b.handle(ctx, "other/s1/events", []byte(`{}`)), domain.ErrInvalidParameter)
	assert.ErrorIs(t, b.handle(ctx, "kinema/s1", []byte(`{}`)), domain.ErrInvalidParameter)
	assert.ErrorIs(t, b.handle(ctx, "kinema/s1/unknown", []byte(`{}`)), domain.ErrInvalidParameter)
	assert.ErrorIs(t, b.handle(ctx, "kinema/s1/events", []byte(`{"kind":"Wave"}`)), domain.ErrInvalidParameter)
	assert.ErrorIs(t, b.handle(ctx, "kinema/s1/commands", []byte(`quit`)), domain.ErrInvalidParameter)
}

func TestBridge_Close(t *testing.T) {
	client := newFakeClient()
	b := NewBridge(client, newManager())
	require.NoError(t, b.Listen())
	b.Close()
	assert.Empty(t, client.subscribed)
}
