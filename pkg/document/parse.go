package document

import (
	"fmt"
	"strings"

	"github.com/aretw0/storygraph/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parse decodes the text of unit id into a StoryUnit.
//
// Parsing is lenient: an empty document, a missing event list or a missing
// exit condition are coerced to the defaults of domain.NewUnit. Anything that
// cannot be coerced is reported as a *domain.ParseError.
func Parse(id, text string) (*domain.StoryUnit, error) {
	unit := domain.NewUnit(id)
	if strings.TrimSpace(text) == "" {
		return unit, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, parseError(id, "invalid yaml", err)
	}
	if len(doc.Content) == 0 {
		return unit, nil
	}

	root := deref(doc.Content[0])
	if isNull(root) {
		return unit, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, parseError(id, "document root must be a mapping", nil)
	}

	unit.Dialect = detectDialect(mappingKeys(root))

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		switch {
		case isKey(key.Value, func(k keySet) string { return k.Events }):
			events, err := parseEvents(value)
			if err != nil {
				return nil, parseError(id, "events", err)
			}
			unit.Events = events
		case isKey(key.Value, func(k keySet) string { return k.Exit }):
			exit, err := parseExit(value)
			if err != nil {
				return nil, parseError(id, "exit condition", err)
			}
			unit.Exit = exit
		default:
			unit.Extra = append(unit.Extra, domain.Field{Key: key.Value, Value: value})
		}
	}

	return unit, nil
}

// ParseDocument parses text and packs the outcome into a UnitDocument,
// keeping the raw text either way.
func ParseDocument(id, text string) domain.UnitDocument {
	unit, err := Parse(id, text)
	return domain.UnitDocument{ID: id, Content: text, Unit: unit, ParseErr: err}
}

func parseError(id, reason string, err error) error {
	return &domain.ParseError{UnitID: id, Reason: reason, Err: err}
}

func parseEvents(n *yaml.Node) ([]*yaml.Node, error) {
	n = deref(n)
	if isNull(n) {
		return []*yaml.Node{}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected a list, got %s", kindName(n))
	}
	events := make([]*yaml.Node, len(n.Content))
	copy(events, n.Content)
	return events, nil
}

func parseExit(n *yaml.Node) (domain.ExitCondition, error) {
	exit := domain.ExitCondition{Kind: domain.ExitLinear}
	n = deref(n)
	if isNull(n) {
		return exit, nil
	}
	if n.Kind != yaml.MappingNode {
		return exit, fmt.Errorf("expected a mapping, got %s", kindName(n))
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		switch {
		case isKey(key.Value, func(k keySet) string { return k.Kind }):
			kind, err := scalarString(value)
			if err != nil {
				return exit, fmt.Errorf("type: %w", err)
			}
			if kind != "" {
				exit.Kind = domain.ExitKind(kind)
			}
		case isKey(key.Value, func(k keySet) string { return k.Next }):
			next, err := scalarString(value)
			if err != nil {
				return exit, fmt.Errorf("next unit: %w", err)
			}
			exit.NextUnit = next
		case isKey(key.Value, func(k keySet) string { return k.Branches }):
			branches, err := parseBranches(value)
			if err != nil {
				return exit, fmt.Errorf("branches: %w", err)
			}
			exit.Branches = branches
		case isKey(key.Value, func(k keySet) string { return k.Visual }):
			visual, err := parseVisuals(value)
			if err != nil {
				return exit, fmt.Errorf("visual style: %w", err)
			}
			exit.Visual = visual
		default:
			exit.Extra = append(exit.Extra, domain.Field{Key: key.Value, Value: value})
		}
	}
	return exit, nil
}

func parseBranches(n *yaml.Node) (domain.Branches, error) {
	n = deref(n)
	if isNull(n) {
		return domain.Branches{}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping, got %s", kindName(n))
	}

	branches := make(domain.Branches, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], deref(n.Content[i+1])
		target, err := parseTarget(value)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", key.Value, err)
		}
		branches = append(branches, domain.Branch{Key: key.Value, Target: target})
	}
	return branches, nil
}

func parseTarget(n *yaml.Node) (domain.BranchTarget, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		id, err := scalarString(n)
		return domain.Bare(id), err
	case yaml.MappingNode:
		target := domain.BranchTarget{Object: true}
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			if isKey(key.Value, func(k keySet) string { return k.Next }) {
				id, err := scalarString(value)
				if err != nil {
					return target, fmt.Errorf("next unit: %w", err)
				}
				target.Unit = id
				continue
			}
			target.Extra = append(target.Extra, domain.Field{Key: key.Value, Value: value})
		}
		return target, nil
	}
	return domain.BranchTarget{}, fmt.Errorf("expected an id or a mapping, got %s", kindName(n))
}

// visualFields is the decoding shape of one visual style entry. Key matching
// is case-insensitive, which covers both dialects except for the stroke
// field, spelled "strokeStyle" or "Style".
type visualFields struct {
	Color       string         `mapstructure:"color"`
	StrokeStyle string         `mapstructure:"strokeStyle"`
	Style       string         `mapstructure:"style"`
	Animated    *bool          `mapstructure:"animated"`
	Extra       map[string]any `mapstructure:",remain"`
}

func parseVisuals(n *yaml.Node) (domain.Visuals, error) {
	n = deref(n)
	if isNull(n) {
		return domain.Visuals{}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping, got %s", kindName(n))
	}

	visuals := make(domain.Visuals, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], deref(n.Content[i+1])
		style, err := decodeStyle(value)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", key.Value, err)
		}
		visuals = append(visuals, domain.HandleStyle{Handle: key.Value, Style: style})
	}
	return visuals, nil
}

func decodeStyle(n *yaml.Node) (domain.VisualStyle, error) {
	if isNull(n) {
		return domain.VisualStyle{}, nil
	}
	if n.Kind != yaml.MappingNode {
		return domain.VisualStyle{}, fmt.Errorf("expected a mapping, got %s", kindName(n))
	}

	var raw map[string]any
	if err := n.Decode(&raw); err != nil {
		return domain.VisualStyle{}, err
	}

	var fields visualFields
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &fields,
	})
	if err != nil {
		return domain.VisualStyle{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return domain.VisualStyle{}, err
	}

	style := domain.VisualStyle{
		Color:       fields.Color,
		StrokeStyle: domain.StrokeStyle(fields.StrokeStyle),
		Animated:    fields.Animated,
	}
	if style.StrokeStyle == "" {
		style.StrokeStyle = domain.StrokeStyle(fields.Style)
	}
	if len(fields.Extra) > 0 {
		style.Extra = fields.Extra
	}
	return style, nil
}

func scalarString(n *yaml.Node) (string, error) {
	n = deref(n)
	if isNull(n) {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("expected a scalar, got %s", kindName(n))
	}
	return n.Value, nil
}

func mappingKeys(n *yaml.Node) []string {
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown node"
}
