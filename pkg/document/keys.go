package document

import "github.com/aretw0/storygraph/pkg/domain"

// keySet is the spelling of the structural keys in one dialect.
type keySet struct {
	Events   string
	Exit     string
	Kind     string
	Next     string
	Branches string
	Visual   string
	Color    string
	Stroke   string
	Animated string
}

var canonicalKeys = keySet{
	Events:   "events",
	Exit:     "exitCondition",
	Kind:     "type",
	Next:     "nextUnit",
	Branches: "branches",
	Visual:   "visualStyle",
	Color:    "color",
	Stroke:   "strokeStyle",
	Animated: "animated",
}

var legacyKeys = keySet{
	Events:   "Events",
	Exit:     "EndCondition",
	Kind:     "Type",
	Next:     "NextUnitID",
	Branches: "Branches",
	Visual:   "_Visual",
	Color:    "Color",
	Stroke:   "Style",
	Animated: "Animated",
}

func keysFor(d domain.Dialect) keySet {
	if d == domain.DialectLegacy {
		return legacyKeys
	}
	return canonicalKeys
}

// Parsing accepts either spelling regardless of the detected dialect.
func isKey(name string, pick func(keySet) string) bool {
	return name == pick(canonicalKeys) || name == pick(legacyKeys)
}

func detectDialect(keys []string) domain.Dialect {
	for _, k := range keys {
		if k == legacyKeys.Exit || k == legacyKeys.Events {
			return domain.DialectLegacy
		}
	}
	return domain.DialectCanonical
}
