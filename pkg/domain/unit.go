package domain

import "gopkg.in/yaml.v3"

// Dialect identifies the key naming used by a unit document.
// Documents are written back in the dialect they were read in.
type Dialect int

const (
	// DialectCanonical uses lower camel keys: events, exitCondition, nextUnit...
	DialectCanonical Dialect = iota
	// DialectLegacy uses the keys of the first editor generation:
	// Events, EndCondition, NextUnitID, Branches, _Visual.
	DialectLegacy
)

func (d Dialect) String() string {
	if d == DialectLegacy {
		return "legacy"
	}
	return "canonical"
}

// Field is an opaque key/value pair carried through edits untouched.
type Field struct {
	Key   string
	Value *yaml.Node
}

// StoryUnit is one named narrative beat plus its exit logic.
type StoryUnit struct {
	ID string

	// Events is the ordered list of narrative events. The engine never
	// interprets them.
	Events []*yaml.Node

	Exit ExitCondition

	// Extra holds unknown top-level keys in document order.
	Extra []Field

	Dialect Dialect
}

// NewUnit returns a unit with the defaults applied to documents lacking
// events or an exit condition.
func NewUnit(id string) *StoryUnit {
	return &StoryUnit{
		ID:     id,
		Events: []*yaml.Node{},
		Exit:   ExitCondition{Kind: ExitLinear},
	}
}

// UnitDocument pairs the raw text of a unit with its parsed form.
// When the text does not parse, Unit is nil and ParseErr is set; callers
// fall back to raw-text editing.
type UnitDocument struct {
	ID       string
	Content  string
	Unit     *StoryUnit
	ParseErr error
}
