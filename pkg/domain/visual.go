package domain

import "fmt"

// StrokeStyle is the line style of an edge.
type StrokeStyle string

const (
	StrokeSolid  StrokeStyle = "solid"
	StrokeDashed StrokeStyle = "dashed"
	StrokeDotted StrokeStyle = "dotted"
)

// Valid reports whether s is one of the supported stroke styles.
func (s StrokeStyle) Valid() bool {
	switch s {
	case StrokeSolid, StrokeDashed, StrokeDotted:
		return true
	}
	return false
}

// VisualStyle is the presentation metadata of one outgoing handle.
// Zero values mean "unset" and fall back to role defaults at build time.
type VisualStyle struct {
	Color       string
	StrokeStyle StrokeStyle
	Animated    *bool

	// Extra keeps unknown style keys.
	Extra map[string]any
}

// HandleStyle binds a VisualStyle to a handle.
type HandleStyle struct {
	Handle string
	Style  VisualStyle
}

// Visuals is the per-handle style mapping, in document order.
type Visuals []HandleStyle

// Get returns the style for handle.
func (v Visuals) Get(handle string) (VisualStyle, bool) {
	for _, hs := range v {
		if hs.Handle == handle {
			return hs.Style, true
		}
	}
	return VisualStyle{}, false
}

// Set replaces the style of handle in place, or appends it.
func (v *Visuals) Set(handle string, style VisualStyle) {
	for i := range *v {
		if (*v)[i].Handle == handle {
			(*v)[i].Style = style
			return
		}
	}
	*v = append(*v, HandleStyle{Handle: handle, Style: style})
}

// Delete removes the style of handle and reports whether it existed.
func (v *Visuals) Delete(handle string) bool {
	for i := range *v {
		if (*v)[i].Handle == handle {
			*v = append((*v)[:i], (*v)[i+1:]...)
			return true
		}
	}
	return false
}

// StyleField names a restylable attribute of a VisualStyle.
type StyleField string

const (
	FieldColor       StyleField = "color"
	FieldStrokeStyle StyleField = "strokeStyle"
	FieldAnimated    StyleField = "animated"
)

// ParseStyleField accepts both the canonical names and the legacy
// Color/Style spelling.
func ParseStyleField(name string) (StyleField, error) {
	switch name {
	case "color", "Color":
		return FieldColor, nil
	case "strokeStyle", "style", "Style", "StrokeStyle":
		return FieldStrokeStyle, nil
	case "animated", "Animated":
		return FieldAnimated, nil
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrInvalidStyle, name)
}
