package barcanyonkillboss

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// NpcExtractor extracts the boss NPC's type, level, and map position.
//
// mappings observed in the field:
//   - 102000063: Miser Khaolak
//   - 102000055: Ironhand Baulur
type NpcExtractor struct{}

// NewNpcExtractor returns a new npc extractor.
func NewNpcExtractor() *NpcExtractor { return &NpcExtractor{} }

// Section returns the npc section name.
func (NpcExtractor) Section() string { return "npc" }

// Extract builds the npc section from the mail content's npcType, npcLevel,
// and pos fields.
func (NpcExtractor) Extract(input codec.Value) (*extract.Section, error) {
	content, err := requireContent(input)
	if err != nil {
		return nil, err
	}
	npcType, err := requireU64Field(content, "npcType")
	if err != nil {
		return nil, err
	}
	npcLevel, err := requireU64Field(content, "npcLevel")
	if err != nil {
		return nil, err
	}
	pos, err := requireChildObject(content, "pos")
	if err != nil {
		return nil, err
	}
	posX, err := requireNumberField(pos, "x")
	if err != nil {
		return nil, err
	}
	posY, err := requireNumberField(pos, "y")
	if err != nil {
		return nil, err
	}

	section := extract.NewSection()
	section.Insert("type", float64(npcType))
	section.Insert("level", float64(npcLevel))
	section.Insert("location", map[string]codec.Value{"x": posX, "y": posY})
	return section, nil
}
