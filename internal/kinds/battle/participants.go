package battle

import (
	"strconv"

	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// ParticipantSelfResolver fills the "self" section from the STs entry keyed
// "-2", the reserved key the original uses for the mail owner's own
// participant row (mirrored by the players count step, which excludes it
// from the opponent headcount).
type ParticipantSelfResolver struct{}

// NewParticipantSelfResolver returns a new self participant resolver.
func NewParticipantSelfResolver() *ParticipantSelfResolver { return &ParticipantSelfResolver{} }

// Name returns the step name used for error reporting.
func (ParticipantSelfResolver) Name() string { return "participant_self" }

// Resolve fills the self section from STs["-2"], if present.
func (ParticipantSelfResolver) Resolve(ctx *Context, output *extract.ProcessedMail) error {
	sts := findSTs(ctx.Sections)
	if sts == nil {
		return nil
	}
	entry, ok := sts.Get("-2")
	if !ok {
		return nil
	}
	participant, ok := asObject(entry)
	if !ok {
		return nil
	}
	fillParticipantSection(getOrInsertSection(output, "self"), participant)
	return nil
}

// ParticipantEnemyResolver fills the "enemy" section from the lowest-keyed
// STs entry other than "-2".
type ParticipantEnemyResolver struct{}

// NewParticipantEnemyResolver returns a new enemy participant resolver.
func NewParticipantEnemyResolver() *ParticipantEnemyResolver { return &ParticipantEnemyResolver{} }

// Name returns the step name used for error reporting.
func (ParticipantEnemyResolver) Name() string { return "participant_enemy" }

// Resolve fills the enemy section from the lowest-numbered STs entry that
// is not the self key "-2".
func (ParticipantEnemyResolver) Resolve(ctx *Context, output *extract.ProcessedMail) error {
	sts := findSTs(ctx.Sections)
	if sts == nil {
		return nil
	}

	var bestKey int64
	haveBest := false
	for _, key := range sts.Keys() {
		if key == "-2" {
			continue
		}
		n, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		if !haveBest || n < bestKey {
			bestKey = n
			haveBest = true
		}
	}
	if !haveBest {
		return nil
	}
	entry, ok := sts.Get(strconv.FormatInt(bestKey, 10))
	if !ok {
		return nil
	}
	participant, ok := asObject(entry)
	if !ok {
		return nil
	}
	fillParticipantSection(getOrInsertSection(output, "enemy"), participant)
	return nil
}

func findSTs(sections []codec.Value) *codec.Object {
	statsBlock := findStatsBlock(sections)
	if statsBlock == nil {
		return nil
	}
	if sts, ok := childObject(statsBlock, "STs"); ok {
		return sts
	}
	if body, ok := childObject(statsBlock, "body"); ok {
		if sts, ok := childObject(body, "STs"); ok {
			return sts
		}
	}
	return nil
}

// fillParticipantSection writes the shared participant shape (player_id,
// player_name, alliance, commanders) into section's fields, leaving any
// field already set by a previous step untouched.
func fillParticipantSection(section *extract.Section, participant *codec.Object) {
	fields := section.Fields()

	if v, ok := participant.Get("PId"); ok {
		n, ok := asInt64(v)
		insertI64IfAbsent(fields, "player_id", n, ok)
	}
	if v, ok := participant.Get("PName"); ok {
		s, ok := asString(v)
		insertStrIfAbsent(fields, "player_name", s, ok)
	}
	if v, ok := participant.Get("Abbr"); ok {
		if s, ok := asString(v); ok {
			if _, exists := fields["alliance"]; !exists {
				fields["alliance"] = map[string]codec.Value{"abbreviation": s}
			}
		}
	}

	primary := map[string]codec.Value{}
	if v, ok := participant.Get("HId"); ok {
		if n, ok := asInt64(v); ok {
			primary["id"] = float64(n)
		}
	}
	if v, ok := participant.Get("HLv"); ok {
		if n, ok := asInt64(v); ok {
			primary["level"] = float64(n)
		}
	}
	secondary := map[string]codec.Value{}
	if v, ok := participant.Get("HId2"); ok {
		if n, ok := asInt64(v); ok {
			secondary["id"] = float64(n)
		}
	}
	if v, ok := participant.Get("HLv2"); ok {
		if n, ok := asInt64(v); ok {
			secondary["level"] = float64(n)
		}
	}
	if _, exists := fields["commanders"]; !exists {
		fields["commanders"] = map[string]codec.Value{
			"primary":   primary,
			"secondary": secondary,
		}
	}
}
