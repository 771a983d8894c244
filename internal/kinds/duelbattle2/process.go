package duelbattle2

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// Extractors returns the full set of DuelBattle2 extractors, in declaration
// order (metadata, sender, opponent, battle_results).
func Extractors() []extract.Extractor {
	return []extract.Extractor{
		NewMetadataExtractor(),
		NewSenderExtractor(),
		NewOpponentExtractor(),
		NewBattleResultsExtractor(),
	}
}

// ProcessSequential runs the DuelBattle2 extractor set in declaration
// order against the mail's first section, stopping at the first failure.
func ProcessSequential(sections []codec.Value) (*extract.ProcessedMail, error) {
	input, err := rootSection(sections)
	if err != nil {
		return nil, err
	}
	return extract.NewProcessor(Extractors()).RunSequential(input)
}

// ProcessParallel runs the DuelBattle2 extractor set concurrently against
// the mail's first section.
func ProcessParallel(sections []codec.Value) (*extract.ProcessedMail, error) {
	input, err := rootSection(sections)
	if err != nil {
		return nil, err
	}
	return extract.NewProcessor(Extractors()).RunParallel(input)
}

// rootSection returns the mail's first section, which carries both the
// top-level header fields (id/time/receiver/serverId) and the nested
// body.detail.AtkPlayer/DefPlayer payloads every extractor reads from.
func rootSection(sections []codec.Value) (codec.Value, error) {
	if len(sections) == 0 {
		return nil, extract.ErrEmptySections
	}
	return sections[0], nil
}
