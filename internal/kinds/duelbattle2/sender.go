package duelbattle2

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// SenderExtractor extracts the attacking player's participant details from
// AtkPlayer.
type SenderExtractor struct{}

// NewSenderExtractor returns a new sender extractor.
func NewSenderExtractor() *SenderExtractor { return &SenderExtractor{} }

// Section returns the sender section name.
func (SenderExtractor) Section() string { return "sender" }

// Extract builds the sender section from AtkPlayer.
func (SenderExtractor) Extract(input codec.Value) (*extract.Section, error) {
	return extractPlayer(input, "AtkPlayer")
}

func extractPlayer(input codec.Value, field string) (*extract.Section, error) {
	player, err := locatePlayer(input, field)
	if err != nil {
		return nil, err
	}
	section, err := playerSection(player)
	if err != nil {
		return nil, err
	}
	primary, secondary, err := playerCommanders(player)
	if err != nil {
		return nil, err
	}
	buffsOut, err := playerBuffs(player)
	if err != nil {
		return nil, err
	}
	section.Insert("primary_commander", primary)
	section.Insert("secondary_commander", secondary)
	section.Insert("buffs", buffsOut)
	return section, nil
}
