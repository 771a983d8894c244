package duelbattle2

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// OpponentExtractor extracts the defending player's participant details
// from DefPlayer.
type OpponentExtractor struct{}

// NewOpponentExtractor returns a new opponent extractor.
func NewOpponentExtractor() *OpponentExtractor { return &OpponentExtractor{} }

// Section returns the opponent section name.
func (OpponentExtractor) Section() string { return "opponent" }

// Extract builds the opponent section from DefPlayer.
func (OpponentExtractor) Extract(input codec.Value) (*extract.Section, error) {
	return extractPlayer(input, "DefPlayer")
}
