package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/storygraph/pkg/domain"
)

// GraphMarkdown lays the graph out as two markdown tables: units and edges.
func GraphMarkdown(g *domain.Graph) string {
	var sb strings.Builder
	sb.WriteString("# Units\n\n")
	if g == nil || len(g.Nodes) == 0 {
		sb.WriteString("_No units._\n")
		return sb.String()
	}

	sb.WriteString("| Unit | Exit | Handles | Events | Status |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, n := range g.Nodes {
		status := "ok"
		if n.ParseError != "" {
			status = "⚠ " + n.ParseError
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %d | %s |\n",
			cell(n.ID), cell(string(n.Kind)), cell(strings.Join(n.Handles, ", ")), n.EventCount, cell(status))
	}

	sb.WriteString("\n# Edges\n\n")
	if len(g.Edges) == 0 {
		sb.WriteString("_No edges._\n")
		return sb.String()
	}

	known := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = true
	}

	sb.WriteString("| From | Handle | To | Style |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, e := range g.Edges {
		to := e.Target
		if !known[to] {
			to += " (missing)"
		}
		style := string(e.StrokeStyle) + " " + e.Color
		if e.Animated {
			style += " animated"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n", cell(e.Source), cell(e.Handle), cell(to), cell(style))
	}
	return sb.String()
}

// UnitMarkdown shows a unit document with its parse status.
func UnitMarkdown(doc domain.UnitDocument) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", doc.ID)
	if doc.ParseErr != nil {
		fmt.Fprintf(&sb, "> ⚠ %s\n\n", doc.ParseErr)
	} else {
		fmt.Fprintf(&sb, "**Exit:** %s", doc.Unit.Exit.Kind)
		if outlets := doc.Unit.Exit.Outlets(); len(outlets) > 0 {
			parts := make([]string, len(outlets))
			for i, o := range outlets {
				parts[i] = o.Handle + " → " + o.Target
			}
			fmt.Fprintf(&sb, " (%s)", strings.Join(parts, ", "))
		}
		sb.WriteString("\n\n")
	}
	sb.WriteString("```yaml\n")
	sb.WriteString(doc.Content)
	if !strings.HasSuffix(doc.Content, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
	return sb.String()
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
