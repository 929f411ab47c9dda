package tui

import (
	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/runner"
	"github.com/muesli/termenv"
)

// NewFormatter returns a notification formatter that colors lines by kind:
// state machine transitions stand out, per-frame lines are faint.
func NewFormatter(profile termenv.Profile) func(runner.Notification) string {
	return func(n runner.Notification) string {
		line := runner.FormatNotification(n)
		if line == "" {
			return line
		}
		s := profile.String(line)
		switch {
		case n.IsFrame():
			return s.Faint().String()
		case n.Machine != nil && n.Machine.Type == domain.MachineError:
			return s.Foreground(profile.Color("#fb7185")).String()
		case n.Machine != nil && n.Machine.Type == domain.MachineTransition:
			return s.Foreground(profile.Color("#c084fc")).Bold().String()
		case n.Machine != nil:
			return s.Foreground(profile.Color("#818cf8")).String()
		case n.Player != nil && n.Player.Type == domain.PlayerLoadError:
			return s.Foreground(profile.Color("#fb7185")).String()
		}
		return s.Foreground(profile.Color("#a3e635")).String()
	}
}
