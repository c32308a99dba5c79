package domain

import (
	"reflect"

	"gopkg.in/yaml.v3"
)

// Equal reports whether two units are structurally equal: same typed fields
// and same opaque content, ignoring YAML formatting (styles, comments,
// positions). A nil and an empty collection are considered equal.
func Equal(a, b *StoryUnit) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Dialect != b.Dialect {
		return false
	}
	if len(a.Events) != len(b.Events) {
		return false
	}
	for i := range a.Events {
		if !NodeEqual(a.Events[i], b.Events[i]) {
			return false
		}
	}
	return fieldsEqual(a.Extra, b.Extra) && ExitEqual(&a.Exit, &b.Exit)
}

// ExitEqual reports whether two exit conditions are structurally equal.
func ExitEqual(a, b *ExitCondition) bool {
	if a.Kind != b.Kind || a.NextUnit != b.NextUnit {
		return false
	}
	if len(a.Branches) != len(b.Branches) || len(a.Visual) != len(b.Visual) {
		return false
	}
	for i := range a.Branches {
		x, y := a.Branches[i], b.Branches[i]
		if x.Key != y.Key || x.Target.Unit != y.Target.Unit || x.Target.Object != y.Target.Object {
			return false
		}
		if !fieldsEqual(x.Target.Extra, y.Target.Extra) {
			return false
		}
	}
	for i := range a.Visual {
		x, y := a.Visual[i], b.Visual[i]
		if x.Handle != y.Handle || !styleEqual(x.Style, y.Style) {
			return false
		}
	}
	return fieldsEqual(a.Extra, b.Extra)
}

func styleEqual(a, b VisualStyle) bool {
	if a.Color != b.Color || a.StrokeStyle != b.StrokeStyle {
		return false
	}
	if (a.Animated == nil) != (b.Animated == nil) {
		return false
	}
	if a.Animated != nil && *a.Animated != *b.Animated {
		return false
	}
	if len(a.Extra) == 0 && len(b.Extra) == 0 {
		return true
	}
	return reflect.DeepEqual(a.Extra, b.Extra)
}

func fieldsEqual(a, b []Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || !NodeEqual(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

// NodeEqual compares two YAML nodes by content: kind, resolved tag, value and
// children. Styles, comments and source positions are ignored.
func NodeEqual(a, b *yaml.Node) bool {
	a, b = deref(a), deref(b)
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind == yaml.DocumentNode && len(a.Content) == 1 {
		return NodeEqual(a.Content[0], b)
	}
	if b.Kind == yaml.DocumentNode && len(b.Content) == 1 {
		return NodeEqual(a, b.Content[0])
	}
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == yaml.ScalarNode {
		return a.ShortTag() == b.ShortTag() && a.Value == b.Value
	}
	if len(a.Content) != len(b.Content) {
		return false
	}
	for i := range a.Content {
		if !NodeEqual(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}
