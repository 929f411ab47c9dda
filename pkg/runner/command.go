package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/pkg/domain"
)

// ErrQuit is returned by Apply for the quit and exit verbs.
var ErrQuit = errors.New("quit")

// Command is one parsed input line.
type Command struct {
	Verb string   `json:"cmd"`
	Args []string `json:"args,omitempty"`
}

func (c Command) String() string {
	return strings.TrimSpace(c.Verb + " " + strings.Join(c.Args, " "))
}

// Mutates reports whether the command changes the player.
func (c Command) Mutates() bool {
	switch c.Verb {
	case "status", "report", "help", "quit", "exit":
		return false
	}
	return true
}

// ParseCommand splits a text line into a verb and its arguments. A line
// holding a JSON object is decoded as a Command.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, fmt.Errorf("%w: empty command", domain.ErrInvalidParameter)
	}
	if strings.HasPrefix(line, "{") {
		var cmd Command
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			return Command{}, fmt.Errorf("%w: %v", domain.ErrInvalidParameter, err)
		}
		if cmd.Verb == "" {
			return Command{}, fmt.Errorf("%w: missing cmd", domain.ErrInvalidParameter)
		}
		cmd.Verb = strings.ToLower(cmd.Verb)
		return cmd, nil
	}
	fields := strings.Fields(line)
	return Command{Verb: strings.ToLower(fields[0]), Args: fields[1:]}, nil
}

// Help lists the verbs Apply understands.
const Help = `play | pause | stop
seek <frame> | frame <frame> | progress <0..1>
tween <frame> [seconds] [easing] | marker <name> [seconds]
click|down|up|move|enter|leave <x> <y>
event <name> | fire <input> | set <input> <value> | reset <input>
state <name> | machine start|stop
theme [id] | status | report | quit`

// Apply executes cmd against p and returns a short reply for the user.
func Apply(p *kinema.Player, cmd Command) (string, error) {
	switch cmd.Verb {
	case "play":
		return reply(p.Play(), "playing")
	case "pause":
		return reply(p.Pause(), "paused")
	case "stop":
		return reply(p.Stop(), "stopped")
	case "seek", "frame", "progress":
		n, err := floatArg(cmd, 0)
		if err != nil {
			return "", err
		}
		switch cmd.Verb {
		case "seek":
			return reply(p.Seek(n), "frame %g", n)
		case "frame":
			return reply(p.SetFrame(n), "frame %g", n)
		}
		return reply(p.SetProgress(n), "progress %g", n)
	case "tween":
		return applyTween(p, cmd)
	case "marker":
		if len(cmd.Args) < 1 {
			return "", usage(cmd)
		}
		duration := 0.0
		if len(cmd.Args) > 1 {
			d, err := floatArg(cmd, 1)
			if err != nil {
				return "", err
			}
			duration = d
		}
		return reply(p.TweenToMarker(cmd.Args[0], duration, nil), "tweening to %s", cmd.Args[0])
	case "click", "down", "up", "move", "enter", "leave":
		x, err := floatArg(cmd, 0)
		if err != nil {
			return "", err
		}
		y, err := floatArg(cmd, 1)
		if err != nil {
			return "", err
		}
		return post(p, pointer(cmd.Verb, x, y))
	case "event":
		if len(cmd.Args) != 1 {
			return "", usage(cmd)
		}
		return post(p, domain.Custom(cmd.Args[0]))
	case "fire":
		if len(cmd.Args) != 1 {
			return "", usage(cmd)
		}
		if err := p.FireTrigger(cmd.Args[0]); err != nil {
			return "", err
		}
		return "fired " + cmd.Args[0], nil
	case "set":
		if len(cmd.Args) < 2 {
			return "", usage(cmd)
		}
		value := strings.Join(cmd.Args[1:], " ")
		if err := SetTrigger(p, cmd.Args[0], value); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s = %s", cmd.Args[0], value), nil
	case "reset":
		if len(cmd.Args) != 1 {
			return "", usage(cmd)
		}
		if err := p.ResetTrigger(cmd.Args[0]); err != nil {
			return "", err
		}
		return "reset " + cmd.Args[0], nil
	case "state":
		if len(cmd.Args) != 1 {
			return "", usage(cmd)
		}
		if err := p.StateMachineOverrideState(cmd.Args[0], false); err != nil {
			return "", err
		}
		return "state " + cmd.Args[0], nil
	case "machine":
		return applyMachine(p, cmd)
	case "theme":
		if len(cmd.Args) == 0 {
			p.ResetTheme()
			return "theme reset", nil
		}
		if err := p.SetTheme(cmd.Args[0]); err != nil {
			return "", err
		}
		return "theme " + cmd.Args[0], nil
	case "status":
		return Inspect(p).String(), nil
	case "report":
		return Inspect(p).Markdown(), nil
	case "help":
		return Help, nil
	case "quit", "exit":
		return "", ErrQuit
	}
	return "", fmt.Errorf("%w: unknown command %q", domain.ErrInvalidParameter, cmd.Verb)
}

func applyTween(p *kinema.Player, cmd Command) (string, error) {
	to, err := floatArg(cmd, 0)
	if err != nil {
		return "", err
	}
	duration := 1.0
	if len(cmd.Args) > 1 {
		if duration, err = floatArg(cmd, 1); err != nil {
			return "", err
		}
	}
	preset := "linear"
	if len(cmd.Args) > 2 {
		preset = cmd.Args[2]
	}
	return reply(p.TweenPreset(to, duration, preset), "tweening to %g", to)
}

func applyMachine(p *kinema.Player, cmd Command) (string, error) {
	if len(cmd.Args) != 1 {
		return "", usage(cmd)
	}
	switch cmd.Args[0] {
	case "start":
		if err := p.StateMachineStart(); err != nil {
			return "", err
		}
		return "machine started in " + p.StateMachineCurrentState(), nil
	case "stop":
		return reply(p.StateMachineStop(), "machine stopped")
	}
	return "", usage(cmd)
}

func post(p *kinema.Player, ev domain.Event) (string, error) {
	if err := p.StateMachinePostEvent(ev); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s -> %s", ev, p.StateMachineCurrentState()), nil
}

func pointer(verb string, x, y float64) domain.Event {
	switch verb {
	case "down":
		return domain.PointerDown(x, y)
	case "up":
		return domain.PointerUp(x, y)
	case "move":
		return domain.PointerMove(x, y)
	case "enter":
		return domain.PointerEnter(x, y)
	case "leave":
		return domain.PointerExit(x, y)
	}
	return domain.Click(x, y)
}

func floatArg(cmd Command, i int) (float64, error) {
	if i >= len(cmd.Args) {
		return 0, usage(cmd)
	}
	n, err := strconv.ParseFloat(cmd.Args[i], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %q is not a number", domain.ErrInvalidParameter, cmd.Verb, cmd.Args[i])
	}
	return n, nil
}

func reply(ok bool, format string, args ...any) (string, error) {
	if !ok {
		return "", fmt.Errorf("%w: rejected", domain.ErrInvalidParameter)
	}
	return fmt.Sprintf(format, args...), nil
}

func usage(cmd Command) error {
	return fmt.Errorf("%w: bad arguments for %q, try help", domain.ErrInvalidParameter, cmd.Verb)
}
