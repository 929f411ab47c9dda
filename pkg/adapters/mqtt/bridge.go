// Package mqtt bridges kinema sessions to an MQTT broker.
//
// Outbound, every player and state machine notification of an attached
// session is published as JSON under
//
//	<prefix>/<session>/player/<type>
//	<prefix>/<session>/machine/<type>
//
// and a retained status document under <prefix>/<session>/status.
//
// Inbound, the bridge listens on <prefix>/<session>/events (domain.Event
// JSON) and <prefix>/<session>/commands (runner.Command JSON or a text line)
// and applies them to the session.
package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/runner"
	paho "github.com/eclipse/paho.mqtt.golang"
)

// DefaultPrefix is the topic root used when none is configured.
const DefaultPrefix = "kinema"

// Client is the subset of paho.Client the bridge needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

// Doer runs fn against a session's player under the session lock.
type Doer interface {
	Do(ctx context.Context, sessionID string, fn func(context.Context, *kinema.Player) error) error
}

// Bridge publishes session notifications and applies inbound control
// messages.
type Bridge struct {
	client   Client
	sessions Doer
	prefix   string
	qos      byte
	frames   bool
	timeout  time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	attached map[string]func()
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithPrefix sets the topic root.
func WithPrefix(prefix string) Option {
	return func(b *Bridge) { b.prefix = strings.Trim(prefix, "/") }
}

// WithQoS sets the QoS of published and subscribed messages.
func WithQoS(qos byte) Option {
	return func(b *Bridge) { b.qos = qos }
}

// WithFrames also publishes frame and render notifications.
func WithFrames(frames bool) Option {
	return func(b *Bridge) { b.frames = frames }
}

// WithLogger sets the bridge logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// NewBridge creates a bridge over client. sessions may be nil for a
// publish-only bridge.
func NewBridge(client Client, sessions Doer, opts ...Option) *Bridge {
	b := &Bridge{
		client:   client,
		sessions: sessions,
		prefix:   DefaultPrefix,
		timeout:  5 * time.Second,
		logger:   slog.Default(),
		attached: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Topic joins parts under the bridge prefix.
func (b *Bridge) Topic(parts ...string) string {
	return b.prefix + "/" + strings.Join(parts, "/")
}

// Attach publishes the notifications of p under sessionID until the
// returned function is called. Attaching the same session again replaces
// the previous subscription.
func (b *Bridge) Attach(sessionID string, p *kinema.Player) func() {
	playerID := p.Subscribe(domain.PlayerFunc(func(e domain.PlayerEvent) {
		b.Publish(runner.Notification{Session: sessionID, Player: &e})
	}))
	machineID := p.StateMachineSubscribe(domain.MachineFunc(func(e domain.MachineEvent) {
		b.Publish(runner.Notification{Session: sessionID, Machine: &e})
	}))

	var once sync.Once
	detach := func() {
		once.Do(func() {
			p.Unsubscribe(playerID)
			p.StateMachineUnsubscribe(machineID)
		})
	}

	b.mu.Lock()
	if prev, ok := b.attached[sessionID]; ok {
		prev()
	}
	b.attached[sessionID] = detach
	b.mu.Unlock()
	return detach
}

// Detach stops publishing for sessionID.
func (b *Bridge) Detach(sessionID string) {
	b.mu.Lock()
	detach, ok := b.attached[sessionID]
	delete(b.attached, sessionID)
	b.mu.Unlock()
	if ok {
		detach()
	}
}

// Publish sends n to its topic. It never blocks on the broker: delivery
// failures are logged.
func (b *Bridge) Publish(n runner.Notification) {
	if n.IsFrame() && !b.frames {
		return
	}
	var topic string
	switch {
	case n.Player != nil:
		topic = b.Topic(n.Session, "player", string(n.Player.Type))
	case n.Machine != nil:
		topic = b.Topic(n.Session, "machine", string(n.Machine.Type))
	default:
		return
	}
	b.send(topic, false, n)
}

// PublishStatus sends the retained status document of a session.
func (b *Bridge) PublishStatus(sessionID string, status runner.Status) {
	b.send(b.Topic(sessionID, "status"), true, status)
}

func (b *Bridge) send(topic string, retained bool, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("MQTT payload encoding failed", "topic", topic, "err", err)
		return
	}
	token := b.client.Publish(topic, b.qos, retained, payload)
	go b.await("publish", topic, token)
}

func (b *Bridge) await(op, topic string, token paho.Token) {
	if !token.WaitTimeout(b.timeout) {
		b.logger.Warn("MQTT "+op+" timed out", "topic", topic)
		return
	}
	if err := token.Error(); err != nil {
		b.logger.Warn("MQTT "+op+" failed", "topic", topic, "err", err)
	}
}

// Listen subscribes to the inbound control topics of every session.
// Call it again from the client's OnConnect handler after a reconnect.
func (b *Bridge) Listen() error {
	if b.sessions == nil {
		return errors.New("mqtt bridge has no sessions to control")
	}
	for _, kind := range []string{"events", "commands"} {
		topic := b.Topic("+", kind)
		token := b.client.Subscribe(topic, b.qos, b.HandleMessage)
		if !token.WaitTimeout(b.timeout) {
			return fmt.Errorf("subscribe %s: timed out", topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		b.logger.Debug("MQTT subscribed", "topic", topic)
	}
	return nil
}

// Close unsubscribes from the control topics and detaches every session.
func (b *Bridge) Close() {
	token := b.client.Unsubscribe(b.Topic("+", "events"), b.Topic("+", "commands"))
	b.await("unsubscribe", b.prefix, token)

	b.mu.Lock()
	attached := b.attached
	b.attached = make(map[string]func())
	b.mu.Unlock()
	for _, detach := range attached {
		detach()
	}
}

// HandleMessage applies one inbound control message. It is the paho
// callback installed by Listen.
func (b *Bridge) HandleMessage(_ paho.Client, msg paho.Message) {
	if err := b.handle(context.Background(), msg.Topic(), msg.Payload()); err != nil {
		b.logger.Warn("MQTT control message rejected", "topic", msg.Topic(), "err", err)
	}
}

func (b *Bridge) handle(ctx context.Context, topic string, payload []byte) error {
	rest, ok := strings.CutPrefix(topic, b.prefix+"/")
	if !ok {
		return fmt.Errorf("%w: topic outside %s", domain.ErrInvalidParameter, b.prefix)
	}
	sessionID, kind, ok := strings.Cut(rest, "/")
	if !ok || sessionID == "" {
		return fmt.Errorf("%w: malformed topic", domain.ErrInvalidParameter)
	}

	var apply func(*kinema.Player) error
	switch kind {
	case "events":
		var ev domain.Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
		}
		if err := ev.Validate(); err != nil {
			return err
		}
		apply = func(p *kinema.Player) error { return p.StateMachinePostEvent(ev) }
	case "commands":
		line, err := runner.SanitizeInput(string(payload))
		if err != nil {
			return err
		}
		cmd, err := runner.ParseCommand(line)
		if err != nil {
			return err
		}
		if cmd.Verb == "quit" || cmd.Verb == "exit" {
			return fmt.Errorf("%w: %s is not available over MQTT", domain.ErrInvalidParameter, cmd.Verb)
		}
		apply = func(p *kinema.Player) error {
			_, err := runner.Apply(p, cmd)
			return err
		}
	default:
		return fmt.Errorf("%w: unknown control topic %q", domain.ErrInvalidParameter, kind)
	}

	return b.sessions.Do(ctx, sessionID, func(ctx context.Context, p *kinema.Player) error {
		b.mu.Lock()
		_, ok := b.attached[sessionID]
		b.mu.Unlock()
		if !ok {
			b.Attach(sessionID, p)
		}
		if err := apply(p); err != nil {
			return err
		}
		b.PublishStatus(sessionID, runner.Inspect(p))
		return nil
	})
}
