package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/storygraph/pkg/domain"
)

// Issue is one consistency problem found in a graph.
type Issue struct {
	Unit    string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Unit, i.Message)
}

// Inspect lists the documents that do not parse and the edges whose target
// unit does not exist. When start is set, units not reachable from it are
// reported as well. Issues are ordered by unit id.
func Inspect(g *domain.Graph, start string) []Issue {
	if g == nil {
		return nil
	}

	var issues []Issue
	known := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n.ID] = true
		if n.ParseError != "" {
			issues = append(issues, Issue{Unit: n.ID, Message: "document does not parse: " + n.ParseError})
		}
	}
	for _, e := range g.Edges {
		if !known[e.Target] {
			issues = append(issues, Issue{Unit: e.Source, Message: fmt.Sprintf("handle %q points to missing unit %q", e.Handle, e.Target)})
		}
	}

	if start != "" {
		if !known[start] {
			issues = append(issues, Issue{Unit: start, Message: "start unit not found"})
		} else {
			visited := crawl(g, start)
			for _, n := range g.Nodes {
				if !visited[n.ID] {
					issues = append(issues, Issue{Unit: n.ID, Message: fmt.Sprintf("unreachable from %q", start)})
				}
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Unit < issues[j].Unit })
	return issues
}

// ValidateGraph returns an error summarizing every issue found by Inspect.
func ValidateGraph(g *domain.Graph, start string) error {
	issues := Inspect(g, start)
	if len(issues) == 0 {
		return nil
	}
	lines := make([]string, len(issues))
	for i, issue := range issues {
		lines[i] = issue.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(issues), strings.Join(lines, "\n- "))
}

// crawl walks the edges breadth-first from start.
func crawl(g *domain.Graph, start string) map[string]bool {
	out := make(map[string][]string)
	for _, e := range g.Edges {
		out[e.Source] = append(out[e.Source], e.Target)
	}

	visited := make(map[string]bool)
	queue := []string{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		for _, target := range out[current] {
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}
	return visited
}
