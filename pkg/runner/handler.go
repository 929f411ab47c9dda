package runner

import (
	"context"
	"sync"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/pkg/domain"
)

// IOHandler abstracts the interaction mode of the Runner.
type IOHandler interface {
	// Input blocks until a command line is available or ctx is done.
	Input(ctx context.Context) (string, error)

	// Output delivers one notification.
	Output(ctx context.Context, n Notification) error

	// SystemOutput delivers a meta-message such as a command reply or a
	// rejected command.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms system messages before they are printed. The
// CLI uses it to render markdown reports for the terminal.
type ContentRenderer func(string) (string, error)

// Notification is one player or state machine event, tagged with the
// session that produced it.
type Notification struct {
	Session string               `json:"session,omitempty"`
	Player  *domain.PlayerEvent  `json:"player,omitempty"`
	Machine *domain.MachineEvent `json:"machine,omitempty"`
}

// IsFrame reports whether n is a per-frame notification (frame or render).
func (n Notification) IsFrame() bool {
	return n.Player != nil && (n.Player.Type == domain.PlayerFrame || n.Player.Type == domain.PlayerRender)
}

// Collector queues the notifications of one player until they are drained.
type Collector struct {
	session string
	frames  bool

	mu    sync.Mutex
	queue []Notification
}

// NewCollector returns a collector tagging notifications with session.
// Frame and render notifications are dropped unless frames is set.
func NewCollector(session string, frames bool) *Collector {
	return &Collector{session: session, frames: frames}
}

// Attach subscribes the collector to p and returns the function that
// detaches it.
func (c *Collector) Attach(p *kinema.Player) func() {
	playerID := p.Subscribe(domain.PlayerFunc(c.player))
	machineID := p.StateMachineSubscribe(domain.MachineFunc(c.machine))
	return func() {
		p.Unsubscribe(playerID)
		p.StateMachineUnsubscribe(machineID)
	}
}

func (c *Collector) player(e domain.PlayerEvent) {
	c.push(Notification{Session: c.session, Player: &e})
}

func (c *Collector) machine(e domain.MachineEvent) {
	c.push(Notification{Session: c.session, Machine: &e})
}

func (c *Collector) push(n Notification) {
	if n.IsFrame() && !c.frames {
		return
	}
	c.mu.Lock()
	c.queue = append(c.queue, n)
	c.mu.Unlock()
}

// Drain returns and clears the queued notifications.
func (c *Collector) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.queue
	c.queue = nil
	return out
}
