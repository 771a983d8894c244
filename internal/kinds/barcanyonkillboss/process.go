package barcanyonkillboss

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// Extractors returns the full set of BarCanyonKillBoss extractors, in
// declaration order (metadata, npc, participants).
func Extractors() []extract.Extractor {
	return []extract.Extractor{
		NewMetadataExtractor(),
		NewNpcExtractor(),
		NewParticipantsExtractor(),
	}
}

// ProcessSequential runs the BarCanyonKillBoss extractor set in declaration
// order against the mail's first section.
func ProcessSequential(sections []codec.Value) (*extract.ProcessedMail, error) {
	input, err := rootSection(sections)
	if err != nil {
		return nil, err
	}
	return extract.NewProcessor(Extractors()).RunSequential(input)
}

// ProcessParallel runs the BarCanyonKillBoss extractor set concurrently
// against the mail's first section.
func ProcessParallel(sections []codec.Value) (*extract.ProcessedMail, error) {
	input, err := rootSection(sections)
	if err != nil {
		return nil, err
	}
	return extract.NewProcessor(Extractors()).RunParallel(input)
}

func rootSection(sections []codec.Value) (codec.Value, error) {
	if len(sections) == 0 {
		return nil, extract.ErrEmptySections
	}
	return sections[0], nil
}
