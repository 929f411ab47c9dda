package kinema

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/kinema/internal/compiler"
	"github.com/aretw0/kinema/internal/eventbus"
	"github.com/aretw0/kinema/internal/playback"
	"github.com/aretw0/kinema/internal/runtime"
	"github.com/aretw0/kinema/internal/theming"
	"github.com/aretw0/kinema/internal/tween"
	"github.com/aretw0/kinema/pkg/adapters/bundle"
	"github.com/aretw0/kinema/pkg/adapters/flat"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/observability"
	"github.com/aretw0/kinema/pkg/ports"
)

// Player is the high-level entry point of Kinema. It composes playback,
// tweening, theming and the interactive state machine behind one mutex.
//
// Notifications are queued while the lock is held and delivered after it is
// released, so observers may call back into the player.
type Player struct {
	mu sync.Mutex

	name    string
	logger  *slog.Logger
	raster  ports.Rasterizer
	loader  ports.BundleLoader
	source  ports.DefinitionSource
	parser  *compiler.Parser
	bus     *eventbus.Bus
	machine *runtime.Engine

	controller *playback.Controller
	tween      *tween.Engine
	theme      *theming.Applier

	machineOpts []runtime.Option
	observers   []domain.Observer
	smObservers []domain.StateMachineObserver

	bundle      ports.Bundle
	animationID string
	machineID   string
	buffer      []uint32
	dirty       bool

	// Pending state machine inputs collected by Tick.
	completed bool
	looped    bool

	// Marker to activate once the running tween lands.
	tweenMarker string

	metrics *observability.Metrics
}

// Option defines a functional option for configuring the Player.
type Option func(*Player)

// WithLogger sets a custom structured logger for the player.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Player) {
		p.logger = logger
	}
}

// WithName labels the player in logs and metrics.
func WithName(name string) Option {
	return func(p *Player) {
		p.name = name
	}
}

// WithRasterizer injects the vector renderer. The default is the flat
// reference rasterizer.
func WithRasterizer(r ports.Rasterizer) Option {
	return func(p *Player) {
		p.raster = r
	}
}

// WithBundleLoader replaces the dotLottie loader.
func WithBundleLoader(l ports.BundleLoader) Option {
	return func(p *Player) {
		p.loader = l
	}
}

// WithSource registers a project source used to resolve animation, theme
// and state machine ids when no bundle is loaded.
func WithSource(s ports.DefinitionSource) Option {
	return func(p *Player) {
		p.source = s
	}
}

// WithObserver subscribes o before the player is returned.
func WithObserver(o domain.Observer) Option {
	return func(p *Player) {
		p.observers = append(p.observers, o)
	}
}

// WithStateMachineObserver subscribes o before the player is returned.
func WithStateMachineObserver(o domain.StateMachineObserver) Option {
	return func(p *Player) {
		p.smObservers = append(p.smObservers, o)
	}
}

// WithMetrics records the player's notifications in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Player) {
		p.metrics = m
	}
}

// WithOpenURLPolicy controls which OpenUrl actions become custom events.
func WithOpenURLPolicy(policy runtime.OpenURLPolicy) Option {
	return func(p *Player) {
		p.machineOpts = append(p.machineOpts, runtime.WithOpenURLPolicy(policy))
	}
}

// WithMaxCycles bounds the transitions a single state machine evaluation
// may take.
func WithMaxCycles(n int) Option {
	return func(p *Player) {
		p.machineOpts = append(p.machineOpts, runtime.WithMaxCycles(n))
	}
}

// New creates a player using cfg. Nothing is loaded yet.
func New(cfg domain.Config, opts ...Option) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Player{}
	for _, opt := range opts {
		opt(p)
	}

	// Ensure logger is initialized so that components never log to nil.
	if p.logger == nil {
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if p.name != "" {
		p.logger = p.logger.With("player", p.name)
	}
	if p.raster == nil {
		p.raster = flat.New()
	}
	if p.loader == nil {
		p.loader = bundle.NewLoader()
	}

	p.parser = compiler.NewParser(compiler.WithLogger(p.logger))
	p.controller = playback.New(cfg)
	p.tween = tween.New()
	p.theme = theming.New()
	p.bus = eventbus.New(eventbus.WithLogger(p.logger))
	p.bus.SetInternal(
		observability.NewLogObserver(p.logger),
		observability.NewMachineLogObserver(p.logger),
	)
	p.machine = runtime.New(append([]runtime.Option{runtime.WithLogger(p.logger)}, p.machineOpts...)...)

	if p.metrics != nil {
		label := p.name
		if label == "" {
			label = "default"
		}
		p.observers = append([]domain.Observer{p.metrics.Player(label)}, p.observers...)
		p.smObservers = append([]domain.StateMachineObserver{p.metrics.Machine(label)}, p.smObservers...)
	}
	for _, o := range p.observers {
		p.bus.Subscribe(o)
	}
	for _, o := range p.smObservers {
		p.bus.SubscribeStateMachine(o)
	}

	if err := p.applyRenderConfig(cfg); err != nil {
		return nil, fmt.Errorf("configure rasterizer: %w", err)
	}
	return p, nil
}

// Name returns the label given with WithName.
func (p *Player) Name() string { return p.name }

// Destroy releases the document, the bundle and the state machine. The
// player may be loaded again afterwards.
func (p *Player) Destroy() {
	p.mu.Lock()
	p.machine.Unload()
	p.unload()
	p.bundle = nil
	p.unlockAndPublish()
}

// SubscriptionID identifies an observer registration.
type SubscriptionID uint64

// Subscribe registers a playback observer. Observers are notified in
// subscription order.
func (p *Player) Subscribe(o domain.Observer) SubscriptionID {
	return SubscriptionID(p.bus.Subscribe(o))
}

// Unsubscribe removes a playback observer. It is idempotent.
func (p *Player) Unsubscribe(id SubscriptionID) bool {
	return p.bus.Unsubscribe(eventbus.Handle(id))
}

// StateMachineSubscribe registers a state machine observer.
func (p *Player) StateMachineSubscribe(o domain.StateMachineObserver) SubscriptionID {
	return SubscriptionID(p.bus.SubscribeStateMachine(o))
}

// StateMachineUnsubscribe removes a state machine observer. It is
// idempotent.
func (p *Player) StateMachineUnsubscribe(id SubscriptionID) bool {
	return p.bus.UnsubscribeStateMachine(eventbus.Handle(id))
}

// unlockAndPublish drains every outbox, releases the lock and delivers the
// notifications. Every exported method that may notify ends with it.
func (p *Player) unlockAndPublish() {
	playerEvents, machineEvents := p.drain()
	p.mu.Unlock()
	p.bus.PublishPlayer(playerEvents...)
	p.bus.PublishMachine(machineEvents...)
}

func (p *Player) drain() ([]domain.PlayerEvent, []domain.MachineEvent) {
	return p.controller.Drain(), p.machine.Drain()
}

// emit queues a player-level notification behind the controller's own.
func (p *Player) emit(e domain.PlayerEvent) {
	p.controller.Emit(e)
}
