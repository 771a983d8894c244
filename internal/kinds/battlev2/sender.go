package battlev2

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// BattleSenderResolver fills "battle_sender" with the mail owner's own
// participant row: the STs entry keyed "-2", the convention the legacy
// battle package's self resolver relies on too.
type BattleSenderResolver struct{}

// NewBattleSenderResolver returns a new battle sender resolver.
func NewBattleSenderResolver() *BattleSenderResolver { return &BattleSenderResolver{} }

// Name returns the step name used for error reporting.
func (BattleSenderResolver) Name() string { return "battle_sender" }

// Resolve fills battle_sender from the group's content STs["-2"] entry, if
// the mail carries a content object at all.
func (BattleSenderResolver) Resolve(ctx *Context, output *extract.ProcessedMail) error {
	if len(ctx.Sections) == 0 {
		return nil
	}
	content, err := requireContent(ctx.Sections[0])
	if err != nil {
		return nil
	}
	participants, err := extractParticipants(content, "STs")
	if err != nil {
		return err
	}

	fields := getOrInsertSection(output, "battle_sender").Fields()
	for _, p := range participants {
		entry, ok := p.(map[string]codec.Value)
		if !ok {
			continue
		}
		if id, ok := entry["participant_id"].(float64); ok && id == -2 {
			for key, val := range entry {
				if _, exists := fields[key]; !exists {
					fields[key] = val
				}
			}
			break
		}
	}
	return nil
}
