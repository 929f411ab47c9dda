package runner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/kinema"
	"github.com/aretw0/kinema/pkg/domain"
)

// Status is a read-only summary of a player, shared by the CLI and the
// server surfaces.
type Status struct {
	Name      string    `json:"name,omitempty"`
	Loaded    bool      `json:"loaded"`
	Animation string    `json:"animation,omitempty"`
	Theme     string    `json:"theme,omitempty"`
	Playback  string    `json:"playback"`
	Frame     float64   `json:"frame"`
	Total     float64   `json:"totalFrames"`
	Segment   []float64 `json:"segment"`
	Loops     uint32    `json:"loops"`
	Tweening  bool      `json:"tweening"`
	Markers   []string  `json:"markers,omitempty"`

	Machine       string                  `json:"machine,omitempty"`
	MachineStatus domain.MachineStatus    `json:"machineStatus"`
	State         string                  `json:"state,omitempty"`
	Triggers      map[string]domain.Value `json:"triggers,omitempty"`
}

// Inspect collects the Status of p.
func Inspect(p *kinema.Player) Status {
	start, end := p.Segment()
	s := Status{
		Name:          p.Name(),
		Loaded:        p.IsLoaded(),
		Animation:     p.ActiveAnimationID(),
		Theme:         p.ActiveThemeID(),
		Playback:      string(p.Status()),
		Frame:         p.CurrentFrame(),
		Total:         p.TotalFrames(),
		Segment:       []float64{start, end},
		Loops:         p.LoopCount(),
		Tweening:      p.IsTweening(),
		Machine:       p.ActiveStateMachineID(),
		MachineStatus: p.StateMachineStatus(),
		State:         p.StateMachineCurrentState(),
		Triggers:      p.Triggers(),
	}
	for _, m := range p.Markers() {
		s.Markers = append(s.Markers, m.Name)
	}
	return s
}

// String renders a one-line summary.
func (s Status) String() string {
	line := fmt.Sprintf("%s frame=%.3f/%g loops=%d", s.Playback, s.Frame, s.Total, s.Loops)
	if s.State != "" {
		line += fmt.Sprintf(" state=%s", s.State)
	}
	for _, name := range s.triggerNames() {
		line += fmt.Sprintf(" %s=%s", name, s.Triggers[name])
	}
	return line
}

// Markdown renders the summary as a markdown report.
func (s Status) Markdown() string {
	var b strings.Builder
	title := s.Name
	if title == "" {
		title = "player"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	row := func(k string, v any) { fmt.Fprintf(&b, "| %s | %v |\n", k, v) }
	row("Playback", s.Playback)
	row("Frame", fmt.Sprintf("%.3f of %g", s.Frame, s.Total))
	row("Segment", fmt.Sprintf("%g..%g", s.Segment[0], s.Segment[1]))
	row("Loops", s.Loops)
	if s.Animation != "" {
		row("Animation", s.Animation)
	}
	if s.Theme != "" {
		row("Theme", s.Theme)
	}
	if len(s.Markers) > 0 {
		row("Markers", strings.Join(s.Markers, ", "))
	}

	if s.MachineStatus == domain.MachineUnloaded {
		return b.String()
	}
	fmt.Fprintf(&b, "\n## State machine %s\n\n", s.Machine)
	fmt.Fprintf(&b, "Status **%s**", s.MachineStatus)
	if s.State != "" {
		fmt.Fprintf(&b, ", state `%s`", s.State)
	}
	b.WriteString("\n")
	if names := s.triggerNames(); len(names) > 0 {
		b.WriteString("\n| Input | Value |\n|---|---|\n")
		for _, name := range names {
			fmt.Fprintf(&b, "| %s | %s |\n", name, s.Triggers[name])
		}
	}
	return b.String()
}

func (s Status) triggerNames() []string {
	names := make([]string, 0, len(s.Triggers))
	for name := range s.Triggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
