package runner

import (
	"context"
	"fmt"
)

// CommandInterceptor is a middleware that can inspect, rewrite or block a
// command before it reaches the player. It returns false with a reason to
// block the command.
type CommandInterceptor func(ctx context.Context, cmd Command) (Command, bool, string, error)

// MultiInterceptor chains multiple interceptors. The first one to block
// wins; rewrites are passed down the chain.
func MultiInterceptor(interceptors ...CommandInterceptor) CommandInterceptor {
	return func(ctx context.Context, cmd Command) (Command, bool, string, error) {
		for _, interceptor := range interceptors {
			next, allowed, reason, err := interceptor(ctx, cmd)
			if err != nil {
				return cmd, false, "", err
			}
			if !allowed {
				return cmd, false, reason, nil
			}
			cmd = next
		}
		return cmd, true, "", nil
	}
}

// AutoApproveMiddleware allows every command.
func AutoApproveMiddleware() CommandInterceptor {
	return func(ctx context.Context, cmd Command) (Command, bool, string, error) {
		return cmd, true, "", nil
	}
}

// ReadOnlyMiddleware blocks every command that changes the player.
func ReadOnlyMiddleware() CommandInterceptor {
	return func(ctx context.Context, cmd Command) (Command, bool, string, error) {
		if cmd.Mutates() {
			return cmd, false, fmt.Sprintf("%q is not allowed in read-only mode", cmd.Verb), nil
		}
		return cmd, true, "", nil
	}
}

// AllowListMiddleware only lets the given verbs through. quit and exit are
// always allowed.
func AllowListMiddleware(verbs ...string) CommandInterceptor {
	allowed := map[string]bool{"quit": true, "exit": true}
	for _, v := range verbs {
		allowed[v] = true
	}
	return func(ctx context.Context, cmd Command) (Command, bool, string, error) {
		if !allowed[cmd.Verb] {
			return cmd, false, fmt.Sprintf("%q is not allowed", cmd.Verb), nil
		}
		return cmd, true, "", nil
	}
}

// ConfirmationMiddleware asks the user through handler before running a
// command that changes the player. Anything but y or yes denies it.
func ConfirmationMiddleware(handler IOHandler) CommandInterceptor {
	return func(ctx context.Context, cmd Command) (Command, bool, string, error) {
		if !cmd.Mutates() {
			return cmd, true, "", nil
		}
		if err := handler.SystemOutput(ctx, fmt.Sprintf("Run %q? [y/N]", cmd.String())); err != nil {
			return cmd, false, "", err
		}
		answer, err := handler.Input(ctx)
		if err != nil {
			return cmd, false, "", err
		}
		switch answer {
		case "y", "Y", "yes", "YES", "Yes":
			return cmd, true, "", nil
		}
		return cmd, false, "denied by user", nil
	}
}
