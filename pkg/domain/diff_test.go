package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	a := Node{ID: "a", Label: "a", Content: "x", Kind: ExitLinear, Handles: []string{"next"}}
	b := Node{ID: "b", Label: "b", Content: "y", Kind: ExitLinear, Handles: []string{"next"}}
	ab := Edge{ID: EdgeID("a", "b", "next"), Source: "a", Target: "b", Handle: "next", Role: RolePrimary, Color: "#FF9900", StrokeStyle: StrokeSolid, Animated: true}

	moved := a
	moved.Position = Position{X: 900, Y: 350}

	edited := a
	edited.Content = "changed"

	restyled := ab
	restyled.Color = "#000000"

	tests := []struct {
		name     string
		old      *Graph
		new      *Graph
		wantDiff *GraphDiff
	}{
		{
			name:     "Initial Load (Old is Nil)",
			old:      nil,
			new:      &Graph{Nodes: []Node{a, b}, Edges: []Edge{ab}},
			wantDiff: &GraphDiff{UpsertedNodes: []Node{a, b}, UpsertedEdges: []Edge{ab}},
		},
		{
			name:     "No Changes",
			old:      &Graph{Nodes: []Node{a, b}, Edges: []Edge{ab}},
			new:      &Graph{Nodes: []Node{a, b}, Edges: []Edge{ab}},
			wantDiff: nil,
		},
		{
			name:     "Position Only Is Not A Change",
			old:      &Graph{Nodes: []Node{a}},
			new:      &Graph{Nodes: []Node{moved}},
			wantDiff: nil,
		},
		{
			name:     "Content Change",
			old:      &Graph{Nodes: []Node{a, b}},
			new:      &Graph{Nodes: []Node{edited, b}},
			wantDiff: &GraphDiff{UpsertedNodes: []Node{edited}},
		},
		{
			name:     "Node And Edge Removed",
			old:      &Graph{Nodes: []Node{a, b}, Edges: []Edge{ab}},
			new:      &Graph{Nodes: []Node{a}},
			wantDiff: &GraphDiff{RemovedNodes: []string{"b"}, RemovedEdges: []string{ab.ID}},
		},
		{
			name:     "Edge Restyled",
			old:      &Graph{Nodes: []Node{a, b}, Edges: []Edge{ab}},
			new:      &Graph{Nodes: []Node{a, b}, Edges: []Edge{restyled}},
			wantDiff: &GraphDiff{UpsertedEdges: []Edge{restyled}},
		},
		{
			name:     "Nil New Graph",
			old:      &Graph{Nodes: []Node{a}},
			new:      nil,
			wantDiff: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if !reflect.DeepEqual(got, tt.wantDiff) {
				t.Errorf("Diff() = %+v, want %+v", got, tt.wantDiff)
			}
		})
	}
}

func TestGraphDiff_JSON(t *testing.T) {
	diff := &GraphDiff{RemovedNodes: []string{"gone"}}
	data, err := json.Marshal(diff)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"removed_nodes":["gone"]`) {
		t.Errorf("unexpected json: %s", s)
	}
	if strings.Contains(s, "upserted_nodes") {
		t.Errorf("empty fields should be omitted: %s", s)
	}
}

func TestEdgeID(t *testing.T) {
	if got := EdgeID("intro", "hall", "next"); got != "e-intro-hall-next" {
		t.Errorf("EdgeID plain = %q", got)
	}

	first := EdgeID("a-b", "c", "next")
	second := EdgeID("a", "b-c", "next")
	if first == second {
		t.Fatalf("hyphenated ids collide: %q", first)
	}
	if EdgeID("a%2Db", "c", "next") == first {
		t.Errorf("escaped and literal ids collide: %q", first)
	}
}

func TestDiff_HyphenatedUnits(t *testing.T) {
	e1 := Edge{ID: EdgeID("a-b", "c", "next"), Source: "a-b", Target: "c", Handle: "next"}
	e2 := Edge{ID: EdgeID("a", "b-c", "next"), Source: "a", Target: "b-c", Handle: "next"}

	diff := Diff(&Graph{}, &Graph{Edges: []Edge{e1, e2}})
	if diff == nil || len(diff.UpsertedEdges) != 2 {
		t.Fatalf("expected both edges upserted, got %+v", diff)
	}

	diff = Diff(&Graph{Edges: []Edge{e1, e2}}, &Graph{Edges: []Edge{e2}})
	if diff == nil || !reflect.DeepEqual(diff.RemovedEdges, []string{e1.ID}) {
		t.Fatalf("expected only %q removed, got %+v", e1.ID, diff)
	}
}

func TestDiff_DuplicateEdgeIDs(t *testing.T) {
	e := Edge{ID: "e-x-y-next", Source: "x", Target: "y", Handle: "next"}

	diff := Diff(nil, &Graph{Edges: []Edge{e, e}})
	if diff == nil || len(diff.UpsertedEdges) != 1 {
		t.Fatalf("expected one upsert, got %+v", diff)
	}

	diff = Diff(&Graph{Edges: []Edge{e, e}}, &Graph{})
	if diff == nil || len(diff.RemovedEdges) != 1 {
		t.Fatalf("expected one removal, got %+v", diff)
	}
}
