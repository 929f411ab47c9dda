package cli

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/pkg/adapters/process"
	"github.com/aretw0/kinema/pkg/registry"
)

// attachHooks subscribes the command hooks listed in opts.Hooks to p. The
// returned function detaches them and waits for running commands.
func attachHooks(ctx context.Context, opts RunOptions, p *kinema.Player, logger *slog.Logger) (func(), error) {
	if opts.Hooks == "" {
		return func() {}, nil
	}
	hooks, err := process.LoadHooks(opts.Hooks)
	if err != nil {
		return nil, err
	}

	reg := registry.NewRegistry()
	process.NewRunner(
		process.WithHooks(hooks),
		process.WithBaseDir(filepath.Dir(opts.Hooks)),
	).Bind(reg)
	logger.Debug("hooks loaded", "path", opts.Hooks, "events", reg.Names())

	d := registry.NewDispatcher(ctx, reg, sessionName(opts), logger)
	id := p.StateMachineSubscribe(d.Observer())
	return func() {
		p.StateMachineUnsubscribe(id)
		d.Wait()
	}, nil
}
