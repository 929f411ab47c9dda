// Package process runs allow-listed commands in response to custom state
// machine events.
package process

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"os/exec"
	"strings"

	"github.com/aretw0/kinema/pkg/registry"
)

// URLArg is replaced by the event URL when it is a whole argument.
const URLArg = "{url}"

// Runner executes the commands registered for custom events.
// Only registered commands run; event data never becomes a command.
type Runner struct {
	registry map[string]HookConfig
	baseDir  string
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithHooks populates the allow-list from a loaded config.
func WithHooks(hooks map[string]HookConfig) RunnerOption {
	return func(r *Runner) {
		maps.Copy(r.registry, hooks)
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: make(map[string]HookConfig),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command for event to the allow-list.
func (r *Runner) Register(event string, command string, args ...string) {
	r.registry[event] = HookConfig{
		Event:   event,
		Command: command,
		Args:    args,
	}
}

// Bind registers every allow-listed command as a hook in reg.
func (r *Runner) Bind(reg *registry.Registry) {
	for event := range r.registry {
		reg.Register(event, func(ctx context.Context, ev registry.Event) error {
			_, err := r.Execute(ctx, ev)
			return err
		})
	}
}

// Execute runs the command registered for ev.Name and returns its trimmed
// stdout. Event data reaches the process through KINEMA_* variables, and
// the URL also through URLArg.
func (r *Runner) Execute(ctx context.Context, ev registry.Event) (string, error) {
	hook, ok := r.registry[ev.Name]
	if !ok {
		return "", fmt.Errorf("process hook not registered: %s", ev.Name)
	}

	args := make([]string, len(hook.Args))
	for i, arg := range hook.Args {
		if arg == URLArg {
			arg = ev.URL
		}
		args[i] = arg
	}

	cmd := exec.CommandContext(ctx, hook.Command, args...)
	cmd.Dir = r.baseDir

	env := []string{
		"KINEMA_EVENT=" + ev.Name,
		"KINEMA_SESSION=" + ev.Session,
		"KINEMA_URL=" + ev.URL,
	}
	for k, v := range hook.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("execution failed: %w. Stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
