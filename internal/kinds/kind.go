// Package kinds identifies which per-mail-kind extractor set a decoded mail
// should run through.
package kinds

import "github.com/rokbattles/mailcore/internal/codec"

// Kind is the recognized mail kind string, taken verbatim from the decoded
// tree's "type" field.
type Kind string

const (
	Battle            Kind = "Battle"
	DuelBattle2       Kind = "DuelBattle2"
	BarCanyonKillBoss Kind = "BarCanyonKillBoss"
)

// recognized lists every Kind the dispatcher knows how to route; any other
// "type" value is treated as opaque.
var recognized = map[string]Kind{
	string(Battle):            Battle,
	string(DuelBattle2):       DuelBattle2,
	string(BarCanyonKillBoss): BarCanyonKillBoss,
}

// Detect scans sections in order for the first object carrying a "type"
// string field. It returns the recognized Kind and true, or ("", false) if
// no section carries a type field or the type isn't one of the recognized
// kinds.
func Detect(sections []codec.Value) (Kind, bool) {
	for _, section := range sections {
		obj, ok := section.(*codec.Object)
		if !ok {
			continue
		}
		v, ok := obj.Get("type")
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		kind, known := recognized[s]
		return kind, known
	}
	return "", false
}
