package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/internal/compiler"
	"github.com/aretw0/kinema/pkg/adapters/bundle"
	"github.com/aretw0/kinema/pkg/adapters/loam"
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/observability"
)

// PlayerFactory builds the player of a session.
type PlayerFactory func(ctx context.Context, sessionID string) (*kinema.Player, error)

// NewPlayerFactory returns the factory shared by the run, serve and mcp
// commands. The project source is opened once.
func NewPlayerFactory(opts RunOptions, logger *slog.Logger, metrics *observability.Metrics) (PlayerFactory, error) {
	if opts.Animation == "" {
		return nil, fmt.Errorf("%w: no animation given", domain.ErrInvalidParameter)
	}
	var source *loam.Source
	if opts.Project != "" {
		s, err := loam.Open(opts.Project)
		if err != nil {
			return nil, err
		}
		source = s
	}
	return func(_ context.Context, sessionID string) (*kinema.Player, error) {
		return createPlayer(opts, sessionID, source, logger, metrics)
	}, nil
}

func createPlayer(opts RunOptions, name string, source *loam.Source, logger *slog.Logger, metrics *observability.Metrics) (*kinema.Player, error) {
	cfg := domain.DefaultConfig()
	cfg.Autoplay = opts.Autoplay
	cfg.Loop = opts.Loop
	if opts.Speed > 0 {
		cfg.Speed = opts.Speed
	}

	playerOpts := []kinema.Option{kinema.WithLogger(logger), kinema.WithName(name)}
	if source != nil {
		playerOpts = append(playerOpts, kinema.WithSource(source))
	}
	if metrics != nil {
		playerOpts = append(playerOpts, kinema.WithMetrics(metrics))
	}
	if opts.Debug {
		player, machine := debugObservers(logger)
		playerOpts = append(playerOpts, kinema.WithObserver(player), kinema.WithStateMachineObserver(machine))
	}

	p, err := kinema.New(cfg, playerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	if err := loadInto(p, opts); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func loadInto(p *kinema.Player, opts RunOptions) error {
	if isFile(opts.Animation) {
		if err := p.LoadAnimationPath(opts.Animation, opts.Width, opts.Height); err != nil {
			return fmt.Errorf("failed to load animation %s: %w", opts.Animation, err)
		}
	} else if err := p.LoadAnimation(opts.Animation); err != nil {
		return fmt.Errorf("failed to load animation %q: %w", opts.Animation, err)
	}

	if opts.Theme != "" {
		if err := p.SetTheme(opts.Theme); err != nil {
			return fmt.Errorf("failed to apply theme %q: %w", opts.Theme, err)
		}
	}

	switch {
	case opts.Machine == "":
		return nil
	case isFile(opts.Machine):
		data, err := os.ReadFile(opts.Machine)
		if err != nil {
			return fmt.Errorf("failed to read state machine: %w", err)
		}
		if err := p.StateMachineLoadData(data); err != nil {
			return fmt.Errorf("failed to load state machine %s: %w", opts.Machine, err)
		}
	default:
		if err := p.StateMachineLoad(opts.Machine); err != nil {
			return fmt.Errorf("failed to load state machine %q: %w", opts.Machine, err)
		}
	}
	return nil
}

// LoadDefinition parses the state machine of opts without compiling it,
// so invalid definitions can still be reported. A file is read directly;
// an id is resolved against the project, then the .lottie bundle. The
// returned markers are those of the animation, or nil without one.
func LoadDefinition(opts RunOptions) (*domain.Definition, []string, error) {
	if opts.Machine == "" {
		return nil, nil, fmt.Errorf("%w: no state machine given", domain.ErrInvalidParameter)
	}
	data, err := readMachine(opts)
	if err != nil {
		return nil, nil, err
	}
	def, err := compiler.NewParser(compiler.WithLogger(createLogger(opts))).ParseDefinition(data)
	if err != nil {
		return nil, nil, err
	}
	if opts.Animation == "" {
		return def, nil, nil
	}

	opts.Machine = ""
	opts.Autoplay = false
	var source *loam.Source
	if opts.Project != "" {
		if source, err = loam.Open(opts.Project); err != nil {
			return nil, nil, err
		}
	}
	p, err := createPlayer(opts, "inspect", source, createLogger(opts), nil)
	if err != nil {
		return nil, nil, err
	}
	defer p.Destroy()
	markers := []string{}
	for _, m := range p.Markers() {
		markers = append(markers, m.Name)
	}
	return def, markers, nil
}

func readMachine(opts RunOptions) ([]byte, error) {
	if isFile(opts.Machine) {
		data, err := os.ReadFile(opts.Machine)
		if err != nil {
			return nil, fmt.Errorf("failed to read state machine: %w", err)
		}
		return data, nil
	}
	if opts.Project != "" {
		source, err := loam.Open(opts.Project)
		if err != nil {
			return nil, err
		}
		if data, err := source.StateMachine(opts.Machine); err == nil {
			return data, nil
		}
	}
	if strings.HasSuffix(opts.Animation, ".lottie") && isFile(opts.Animation) {
		raw, err := os.ReadFile(opts.Animation)
		if err != nil {
			return nil, fmt.Errorf("failed to read bundle: %w", err)
		}
		b, err := bundle.Open(raw)
		if err != nil {
			return nil, err
		}
		return b.StateMachine(opts.Machine)
	}
	return nil, fmt.Errorf("%w: state machine %q not found", domain.ErrLoad, opts.Machine)
}
