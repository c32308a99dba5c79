package domain

import (
	"fmt"
	"strconv"
)

// HandleNext is the handle of the single successor of a Linear unit.
// It is reserved and never used as a branch key.
const HandleNext = "next"

// ExitKind is the tag of an ExitCondition.
type ExitKind string

const (
	ExitLinear             ExitKind = "Linear"
	ExitBranching          ExitKind = "Branching"
	ExitAIDecision         ExitKind = "AIDecision"
	ExitResponseEvaluation ExitKind = "ResponseEvaluation"
	ExitConditional        ExitKind = "Conditional"
)

// IsLinear reports whether the kind routes through NextUnit.
// Every other tag, including ones this engine does not know, uses the
// shared branch payload.
func (k ExitKind) IsLinear() bool {
	return k == ExitLinear
}

// EdgeRole distinguishes the linear successor from branch successors.
type EdgeRole string

const (
	RolePrimary EdgeRole = "primary"
	RoleBranch  EdgeRole = "branch"
)

// BranchTarget is the destination of a branch: either a bare unit id or an
// object carrying nextUnit plus opaque extra fields.
type BranchTarget struct {
	Unit   string
	Object bool
	Extra  []Field
}

// Bare returns a bare-id branch target.
func Bare(id string) BranchTarget {
	return BranchTarget{Unit: id}
}

// WithUnit returns a copy of t pointing at id. Object form and extra fields
// are preserved.
func (t BranchTarget) WithUnit(id string) BranchTarget {
	t.Unit = id
	return t
}

// Branch is one named successor.
type Branch struct {
	Key    string
	Target BranchTarget
}

// Branches is the branch mapping of an ExitCondition, in document order.
type Branches []Branch

// Get returns the target of key.
func (b Branches) Get(key string) (BranchTarget, bool) {
	for _, br := range b {
		if br.Key == key {
			return br.Target, true
		}
	}
	return BranchTarget{}, false
}

// Set replaces the target of key in place, or appends a new branch.
func (b *Branches) Set(key string, target BranchTarget) {
	for i := range *b {
		if (*b)[i].Key == key {
			(*b)[i].Target = target
			return
		}
	}
	*b = append(*b, Branch{Key: key, Target: target})
}

// Delete removes key and reports whether it existed.
func (b *Branches) Delete(key string) bool {
	for i := range *b {
		if (*b)[i].Key == key {
			*b = append((*b)[:i], (*b)[i+1:]...)
			return true
		}
	}
	return false
}

// ExitCondition describes how a unit leads to its successors.
//
// Kind is the tag. NextUnit is the Linear payload and Branches the payload
// shared by all branching kinds. NextUnit only routes when the tag is Linear
// and it is set; otherwise the branches route, whatever the tag.
type ExitCondition struct {
	Kind     ExitKind
	NextUnit string
	Branches Branches
	Visual   Visuals

	// Extra holds unknown exit condition keys in document order.
	Extra []Field
}

// Outlet is an outgoing connection that currently resolves to a target.
type Outlet struct {
	Handle string
	Target string
	Role   EdgeRole
}

// routesNext reports whether the Linear successor is the only route.
func (e *ExitCondition) routesNext() bool {
	return e.Kind.IsLinear() && e.NextUnit != ""
}

// Outlets lists the handles that currently resolve to a non-empty target.
// A Linear unit with a successor routes through "next" alone; any other
// unit routes through its branches, so a Linear unit whose successor was
// cleared still shows the branches kept in its document.
func (e *ExitCondition) Outlets() []Outlet {
	if e.routesNext() {
		return []Outlet{{Handle: HandleNext, Target: e.NextUnit, Role: RolePrimary}}
	}

	outlets := make([]Outlet, 0, len(e.Branches))
	for _, br := range e.Branches {
		if br.Target.Unit == "" {
			continue
		}
		outlets = append(outlets, Outlet{Handle: br.Key, Target: br.Target.Unit, Role: RoleBranch})
	}
	if len(outlets) == 0 {
		return nil
	}
	return outlets
}

// Handles lists the connection points a rendering surface should offer.
// Linear and Conditional units offer "next" first, followed by their branch
// keys when the branches route; the other kinds offer their branch keys.
func (e *ExitCondition) Handles() []string {
	if e.routesNext() {
		return []string{HandleNext}
	}
	keys := make([]string, 0, len(e.Branches)+1)
	if e.Kind.IsLinear() || e.Kind == ExitConditional {
		keys = append(keys, HandleNext)
	}
	for _, br := range e.Branches {
		keys = append(keys, br.Key)
	}
	return keys
}

// Connect points handle at target.
//
// The "next" handle (or an empty one) forces the condition to Linear, which
// replaces a previous branching tag. Any other handle becomes a branch: an
// object-form target only has its unit replaced, anything else is overwritten
// with a bare id.
func (e *ExitCondition) Connect(target, handle string) {
	if e.Kind == "" {
		e.Kind = ExitLinear
	}
	if handle == "" || handle == HandleNext {
		e.Kind = ExitLinear
		e.NextUnit = target
		return
	}

	if e.Branches == nil {
		e.Branches = Branches{}
	}
	if current, ok := e.Branches.Get(handle); ok && current.Object {
		e.Branches.Set(handle, current.WithUnit(target))
		return
	}
	e.Branches.Set(handle, Bare(target))
}

// Disconnect removes the edge leaving through handle.
// For "next" only the successor is cleared and the tag stays as it is;
// a branch loses both its mapping entry and its visual style.
func (e *ExitCondition) Disconnect(handle string) error {
	if handle == "" {
		return fmt.Errorf("%w: empty", ErrInvalidHandle)
	}
	if handle == HandleNext {
		e.NextUnit = ""
		return nil
	}
	e.Branches.Delete(handle)
	e.Visual.Delete(handle)
	return nil
}

// Restyle sets one field of the visual style of handle, creating the entry
// when needed and leaving the other fields untouched.
func (e *ExitCondition) Restyle(handle string, field StyleField, value string) error {
	if handle == "" {
		return fmt.Errorf("%w: empty", ErrInvalidHandle)
	}

	style, _ := e.Visual.Get(handle)
	switch field {
	case FieldColor:
		style.Color = value
	case FieldStrokeStyle:
		s := StrokeStyle(value)
		if !s.Valid() {
			return fmt.Errorf("%w: stroke style %q", ErrInvalidStyle, value)
		}
		style.StrokeStyle = s
	case FieldAnimated:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: animated %q", ErrInvalidStyle, value)
		}
		style.Animated = &b
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidStyle, field)
	}
	e.Visual.Set(handle, style)
	return nil
}

// Retarget rewrites every reference to oldID into newID and reports whether
// anything changed. The Linear successor is only considered for Linear
// units; branch targets are rewritten in place in both forms.
func (e *ExitCondition) Retarget(oldID, newID string) bool {
	changed := false
	if e.Kind.IsLinear() && e.NextUnit == oldID {
		e.NextUnit = newID
		changed = true
	}
	for i := range e.Branches {
		if e.Branches[i].Target.Unit == oldID {
			e.Branches[i].Target = e.Branches[i].Target.WithUnit(newID)
			changed = true
		}
	}
	return changed
}
