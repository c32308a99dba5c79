package domain

import "strings"

// Position is the client-side layout of a node.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is the graph projection of one Story Unit.
type Node struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Label    string   `json:"label"`

	// Content is the raw document text.
	Content string `json:"content"`

	// Kind, Handles and EventCount summarize the parsed unit for node
	// rendering. They are empty when the document failed to parse.
	Kind       ExitKind `json:"kind,omitempty"`
	Handles    []string `json:"handles,omitempty"`
	EventCount int      `json:"event_count"`

	// ParseError is set when the document does not coerce into the model.
	ParseError string `json:"parse_error,omitempty"`
}

// Edge is a resolved outgoing reference of a unit.
type Edge struct {
	ID          string      `json:"id"`
	Source      string      `json:"source"`
	Target      string      `json:"target"`
	Handle      string      `json:"handle"`
	Role        EdgeRole    `json:"role"`
	Color       string      `json:"color"`
	StrokeStyle StrokeStyle `json:"stroke_style"`
	Animated    bool        `json:"animated"`
}

// edgeIDPart escapes the separator so that parts containing "-" cannot
// collide. Ids without "-" or "%" are left unchanged.
var edgeIDPart = strings.NewReplacer("%", "%25", "-", "%2D")

// EdgeID is the identifier of the edge leaving source through handle:
// "e-<source>-<target>-<handle>", with "-" and "%" percent-encoded inside
// each part.
func EdgeID(source, target, handle string) string {
	return "e-" + edgeIDPart.Replace(source) + "-" + edgeIDPart.Replace(target) + "-" + edgeIDPart.Replace(handle)
}

// Graph is an immutable snapshot of the story graph.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Positions returns the layout of every node, keyed by id.
func (g *Graph) Positions() map[string]Position {
	if g == nil {
		return map[string]Position{}
	}
	positions := make(map[string]Position, len(g.Nodes))
	for _, n := range g.Nodes {
		positions[n.ID] = n.Position
	}
	return positions
}

// EdgesFrom returns the edges whose source is id.
func (g *Graph) EdgesFrom(id string) []Edge {
	if g == nil {
		return nil
	}
	var edges []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			edges = append(edges, e)
		}
	}
	return edges
}
