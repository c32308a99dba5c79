/*
Package domain contains the core models of the story-graph editor.

A story is a collection of Story Units. Each unit is a YAML document holding an
ordered list of opaque narrative events and one Exit Condition describing how
the unit leads to its successors. Graph edges are never stored on their own:
they are projected from the Exit Conditions and every edge mutation is written
back into the referencing unit.

# Key Entities

  - StoryUnit: a named document (events + exit condition).
  - ExitCondition: tagged union of Linear (single successor) and the branching
    kinds (Branching, AIDecision, ResponseEvaluation) sharing one payload.
  - BranchTarget: a bare unit id or an object carrying extra opaque fields.
  - VisualStyle: per-handle edge presentation metadata.
  - Graph, Node, Edge: the read-only projection consumed by rendering surfaces.

Opaque document fragments (events, unknown keys, extra branch fields) are kept
as yaml.v3 nodes so that they survive edits untouched.
*/
package domain
