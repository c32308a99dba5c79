/*
Package storygraph keeps an interactive story graph in sync with the YAML
documents that define it.

A story is a set of units. Each unit is one document holding an ordered list
of events and an exit condition that names its successors: a single next unit
for Linear exits, or a mapping of named branches for the branching kinds. The
graph is a projection of those documents: one node per unit and one edge per
non-empty reference, styled by the per-handle visual metadata stored in the
exit condition.

# Source of truth

The documents are authoritative. Every edit reads the current document from
the store, rewrites the typed exit condition, serializes it back in the
dialect it was read in and rebuilds the whole graph from the store. The
in-memory graph is swapped atomically after each rebuild, so readers always
see a complete snapshot, and a failed rebuild keeps the previous one.

# Usage

	ctx := context.Background()

	// Units are <dir>/<id>.yaml files by default.
	ed, err := storygraph.New(ctx, "./story")
	if err != nil {
		log.Fatal(err)
	}

	// Point the "left" branch of the crossroads at the forest.
	if err := ed.Connect(ctx, "crossroads", "forest", "left"); err != nil {
		log.Fatal(err)
	}

	// Rename a unit and repair every reference to it.
	if err := ed.Rename(ctx, "forest", "dark-forest"); err != nil {
		log.Fatal(err)
	}

	for _, e := range ed.Graph().Edges {
		fmt.Println(e.Source, "->", e.Target, e.Handle)
	}

Other stores (memory, redis, loam, a remote store service) are injected with
WithStore. The cmd/storygraph binary serves the same operations over HTTP and
MCP.
*/
package storygraph
