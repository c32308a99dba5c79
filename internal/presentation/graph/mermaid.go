package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/storygraph/pkg/domain"
)

// GraphOverlay contains editor state to highlight on the graph.
type GraphOverlay struct {
	Selected []string
}

// GenerateMermaid produces a Mermaid flowchart from a graph snapshot.
// It applies semantic styling:
// - Linear: [Rectangle]
// - Branching kinds: {Rhombus}
// - Parse failure: >Flag] with the broken class
// Edges to units that do not exist are drawn to a ghost node with the
// missing class. Edge colors and stroke styles are carried by linkStyle.
func GenerateMermaid(g *domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if g == nil {
		return sb.String()
	}

	known := make(map[string]bool, len(g.Nodes))
	var broken []string
	for _, node := range g.Nodes {
		known[node.ID] = true
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ParseError != "":
			opener, closer = ">", "]"
			broken = append(broken, safeID)
		case node.Kind != "" && !node.Kind.IsLinear():
			opener, closer = "{", "}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(node.Label), closer)
	}

	var missing []string
	seenMissing := make(map[string]bool)
	for _, e := range g.Edges {
		if known[e.Target] || seenMissing[e.Target] {
			continue
		}
		seenMissing[e.Target] = true
		safeID := sanitizeMermaidID(e.Target)
		missing = append(missing, safeID)
		fmt.Fprintf(&sb, "    %s((\"%s ?\"))\n", safeID, escapeLabel(e.Target))
	}

	for _, e := range g.Edges {
		from, to := sanitizeMermaidID(e.Source), sanitizeMermaidID(e.Target)
		dashed := e.StrokeStyle == domain.StrokeDashed || e.StrokeStyle == domain.StrokeDotted
		switch {
		case e.Role == domain.RoleBranch && dashed:
			fmt.Fprintf(&sb, "    %s -. \"%s\" .-> %s\n", from, escapeLabel(e.Handle), to)
		case e.Role == domain.RoleBranch:
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escapeLabel(e.Handle), to)
		case dashed:
			fmt.Fprintf(&sb, "    %s -.-> %s\n", from, to)
		default:
			fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
		}
	}

	if len(g.Edges) > 0 {
		sb.WriteString("\n    %% Edge Styles\n")
		for i, e := range g.Edges {
			style := "stroke:" + e.Color
			if e.StrokeStyle == domain.StrokeDotted {
				style += ",stroke-dasharray:2 4"
			}
			fmt.Fprintf(&sb, "    linkStyle %d %s;\n", i, style)
		}
	}

	if len(broken) > 0 || len(missing) > 0 {
		sb.WriteString("\n    %% Diagnostics\n")
		sb.WriteString("    classDef broken fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef missing fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4 4,color:#000;\n")
		for _, id := range broken {
			fmt.Fprintf(&sb, "    class %s broken;\n", id)
		}
		for _, id := range missing {
			fmt.Fprintf(&sb, "    class %s missing;\n", id)
		}
	}

	if overlay != nil && len(overlay.Selected) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		seen := make(map[string]bool)
		for _, id := range overlay.Selected {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || seen[safeID] {
				continue
			}
			seen[safeID] = true
			fmt.Fprintf(&sb, "    class %s selected;\n", safeID)
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
