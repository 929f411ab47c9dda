package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/kinema/pkg/domain"
)

// Overlay contains runtime state to highlight on the graph.
type Overlay struct {
	Visited []string
	Current string
}

var conditionSymbols = map[domain.Condition]string{
	domain.CondEqual:              "==",
	domain.CondNotEqual:           "!=",
	domain.CondGreaterThan:        ">",
	domain.CondGreaterThanOrEqual: ">=",
	domain.CondLessThan:           "<",
	domain.CondLessThanOrEqual:    "<=",
}

// GenerateMermaid produces a Mermaid flowchart of a state machine
// definition. It applies semantic styling:
//   - Initial: ((Circle))
//   - Final: (((Double circle)))
//   - Global: {{Hexagon}}, its transitions dotted
//   - Default: [Rectangle]
//
// Tweened transitions are drawn thick. Guards become edge labels.
func GenerateMermaid(def *domain.Definition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, state := range def.States {
		safeID := sanitizeMermaidID(state.Name)

		opener, closer := "[", "]"
		switch {
		case state.IsGlobal():
			opener, closer = "{{", "}}"
		case state.Final:
			opener, closer = "(((", ")))"
		case state.Name == def.Initial:
			opener, closer = "((", "))"
		}

		label := state.Name
		if state.Segment != "" {
			label += " <br/> ▶ " + state.Segment
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label, closer)

		for _, t := range state.Transitions {
			safeTo := sanitizeMermaidID(t.ToState)

			arrow := "-->"
			switch {
			case state.IsGlobal():
				arrow = "-.->"
			case t.Tween != nil:
				arrow = "==>"
			}
			if cond := describeGuards(t.Guards); cond != "" {
				// Escape double quotes in condition for Mermaid label
				cond = strings.ReplaceAll(cond, "\"", "'")
				switch {
				case state.IsGlobal():
					arrow = fmt.Sprintf("-. \"%s\" .->", cond)
				case t.Tween != nil:
					arrow = fmt.Sprintf("== \"%s\" ==>", cond)
				default:
					arrow = fmt.Sprintf("-- \"%s\" -->", cond)
				}
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, safeTo)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, name := range overlay.Visited {
			safeID := sanitizeMermaidID(name)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

// describeGuards renders an AND-ed guard list.
func describeGuards(guards []domain.Guard) string {
	parts := make([]string, 0, len(guards))
	for _, g := range guards {
		parts = append(parts, describeGuard(g))
	}
	return strings.Join(parts, " and ")
}

func describeGuard(g domain.Guard) string {
	switch g.Type {
	case domain.GuardEvent:
		if g.LayerName != "" {
			return fmt.Sprintf("on %s@%s", g.InputName, g.LayerName)
		}
		return "on " + g.InputName
	case domain.GuardAll:
		return "(" + describeGuards(g.Guards) + ")"
	case domain.GuardAny:
		parts := make([]string, 0, len(g.Guards))
		for _, c := range g.Guards {
			parts = append(parts, describeGuard(c))
		}
		return "(" + strings.Join(parts, " or ") + ")"
	case domain.GuardNot:
		return "not " + describeGuards(g.Guards)
	}
	op, ok := conditionSymbols[g.ConditionType]
	if !ok {
		op = "=="
	}
	return fmt.Sprintf("%s %s %v", g.InputName, op, g.CompareTo)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
