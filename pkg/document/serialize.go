package document

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/aretw0/storygraph/pkg/domain"
	"gopkg.in/yaml.v3"
)

// FlowDepth is the nesting depth from which collections are written in flow
// style. The root mapping is depth 0, so events and exit keys stay in block
// style while event payloads, branch objects and per-handle styles are
// inlined.
const FlowDepth = 3

// Serialize encodes unit in the dialect it was read in.
func Serialize(unit *domain.StoryUnit) (string, error) {
	if unit == nil {
		return "", fmt.Errorf("serialize: nil unit")
	}

	root := Node(unit)
	applyFlow(root, 0)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return "", fmt.Errorf("serialize %s: %w", unit.ID, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("serialize %s: %w", unit.ID, err)
	}
	return buf.String(), nil
}

// Node builds the YAML node tree of unit. Opaque fragments are deep copies,
// so the result can be restyled without touching the unit.
func Node(unit *domain.StoryUnit) *yaml.Node {
	keys := keysFor(unit.Dialect)
	root := mapping()

	events := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, ev := range unit.Events {
		events.Content = append(events.Content, clone(ev))
	}
	put(root, keys.Events, events)
	put(root, keys.Exit, exitNode(&unit.Exit, keys))
	putFields(root, unit.Extra)

	return root
}

func exitNode(exit *domain.ExitCondition, keys keySet) *yaml.Node {
	n := mapping()
	kind := exit.Kind
	if kind == "" {
		kind = domain.ExitLinear
	}
	put(n, keys.Kind, str(string(kind)))

	if kind.IsLinear() || exit.NextUnit != "" {
		put(n, keys.Next, str(exit.NextUnit))
	}

	if len(exit.Branches) > 0 {
		branches := mapping()
		for _, br := range exit.Branches {
			put(branches, br.Key, targetNode(br.Target, keys))
		}
		put(n, keys.Branches, branches)
	}

	if len(exit.Visual) > 0 {
		visual := mapping()
		for _, hs := range exit.Visual {
			put(visual, hs.Handle, styleNode(hs.Style, keys))
		}
		put(n, keys.Visual, visual)
	}

	putFields(n, exit.Extra)
	return n
}

func targetNode(t domain.BranchTarget, keys keySet) *yaml.Node {
	if !t.Object {
		return str(t.Unit)
	}
	n := mapping()
	put(n, keys.Next, str(t.Unit))
	putFields(n, t.Extra)
	return n
}

func styleNode(s domain.VisualStyle, keys keySet) *yaml.Node {
	n := mapping()
	if s.Color != "" {
		put(n, keys.Color, str(s.Color))
	}
	if s.StrokeStyle != "" {
		put(n, keys.Stroke, str(string(s.StrokeStyle)))
	}
	if s.Animated != nil {
		v := "false"
		if *s.Animated {
			v = "true"
		}
		put(n, keys.Animated, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v})
	}

	extra := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		var v yaml.Node
		if err := v.Encode(s.Extra[k]); err != nil {
			continue
		}
		put(n, k, &v)
	}
	return n
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func str(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func put(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, str(key), value)
}

func putFields(m *yaml.Node, fields []domain.Field) {
	for _, f := range fields {
		put(m, f.Key, clone(f.Value))
	}
}

// clone deep-copies n, resolving aliases and dropping anchors and comments.
func clone(n *yaml.Node) *yaml.Node {
	n = deref(n)
	if n == nil {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		return clone(n.Content[0])
	}
	c := &yaml.Node{
		Kind:  n.Kind,
		Style: n.Style,
		Tag:   n.Tag,
		Value: n.Value,
	}
	if len(n.Content) > 0 {
		c.Content = make([]*yaml.Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = clone(child)
		}
	}
	return c
}

func applyFlow(n *yaml.Node, depth int) {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		if depth >= FlowDepth {
			n.Style |= yaml.FlowStyle
		} else {
			n.Style &^= yaml.FlowStyle
		}
		for _, child := range n.Content {
			applyFlow(child, depth+1)
		}
	case yaml.ScalarNode:
		if depth > FlowDepth {
			n.Style &^= yaml.LiteralStyle | yaml.FoldedStyle
		}
	}
}
