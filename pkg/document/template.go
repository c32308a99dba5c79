package document

import (
	"github.com/aretw0/storygraph/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Template returns the unit written by "new unit": one preset narration
// event and a Linear exit with no successor.
func Template(id string) *domain.StoryUnit {
	event := mapping()
	put(event, "Type", str("Narration"))
	put(event, "Mode", str("Preset"))
	put(event, "Content", str("Init..."))

	unit := domain.NewUnit(id)
	unit.Events = []*yaml.Node{event}
	return unit
}

// TemplateText is the serialized form of Template(id).
func TemplateText(id string) (string, error) {
	return Serialize(Template(id))
}
