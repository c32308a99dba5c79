package domain

import (
	"reflect"
)

// GraphDiff represents the changes between two graph snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type GraphDiff struct {
	// Nodes added or whose content/summary changed. Positions are client
	// state and do not count as a change.
	UpsertedNodes []Node `json:"upserted_nodes,omitempty"`

	// RemovedNodes lists ids that no longer exist.
	RemovedNodes []string `json:"removed_nodes,omitempty"`

	// UpsertedEdges lists edges that are new or restyled.
	UpsertedEdges []Edge `json:"upserted_edges,omitempty"`

	// RemovedEdges lists edge ids that no longer exist.
	RemovedEdges []string `json:"removed_edges,omitempty"`
}

// Diff calculates the difference between oldGraph and newGraph.
// If oldGraph is nil, it returns a diff representing the entire newGraph (initial load).
// It returns nil when nothing changed.
func Diff(oldGraph, newGraph *Graph) *GraphDiff {
	if newGraph == nil {
		return nil
	}
	if oldGraph == nil {
		oldGraph = &Graph{}
	}

	diff := &GraphDiff{}

	oldNodes := make(map[string]Node, len(oldGraph.Nodes))
	for _, n := range oldGraph.Nodes {
		oldNodes[n.ID] = n
	}
	newNodes := make(map[string]struct{}, len(newGraph.Nodes))
	for _, n := range newGraph.Nodes {
		newNodes[n.ID] = struct{}{}
		prev, existed := oldNodes[n.ID]
		if !existed || !sameNode(prev, n) {
			diff.UpsertedNodes = append(diff.UpsertedNodes, n)
		}
	}
	for _, n := range oldGraph.Nodes {
		if _, ok := newNodes[n.ID]; !ok {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	oldEdges := make(map[string]Edge, len(oldGraph.Edges))
	for _, e := range oldGraph.Edges {
		oldEdges[e.ID] = e
	}
	newEdges := make(map[string]struct{}, len(newGraph.Edges))
	for _, e := range newGraph.Edges {
		if _, dup := newEdges[e.ID]; dup {
			continue
		}
		newEdges[e.ID] = struct{}{}
		prev, existed := oldEdges[e.ID]
		if !existed || prev != e {
			diff.UpsertedEdges = append(diff.UpsertedEdges, e)
		}
	}
	removed := make(map[string]struct{})
	for _, e := range oldGraph.Edges {
		if _, ok := newEdges[e.ID]; ok {
			continue
		}
		if _, dup := removed[e.ID]; dup {
			continue
		}
		removed[e.ID] = struct{}{}
		diff.RemovedEdges = append(diff.RemovedEdges, e.ID)
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func sameNode(a, b Node) bool {
	a.Position, b.Position = Position{}, Position{}
	return reflect.DeepEqual(a, b)
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *GraphDiff) IsEmpty() bool {
	return len(d.UpsertedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.UpsertedEdges) == 0 &&
		len(d.RemovedEdges) == 0
}
