// Package document converts Story Unit text to and from domain.StoryUnit.
//
// Two key dialects are understood. The canonical one:
//
//	events:
//	  - {...}
//	exitCondition:
//	  type: Branching
//	  branches:
//	    left: intro
//	    right: {nextUnit: cave, weight: 7}
//	  visualStyle:
//	    left: {color: '#00CCFF', strokeStyle: dashed, animated: false}
//
// and the legacy one (Events, EndCondition, NextUnitID, Branches, _Visual with
// Color/Style/Animated). A unit is written back in the dialect it was read in.
//
// Anything the engine does not interpret (event records, unknown keys, extra
// fields of object branch targets) is kept as YAML nodes and re-emitted as is.
package document
