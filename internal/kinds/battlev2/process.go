package battlev2

import (
	"errors"
	"sort"

	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// ErrNoBattles is returned when a non-empty mail carries no recognizable
// attack groups.
var ErrNoBattles = errors.New("battlev2: no battles found in mail")

type battleRef struct {
	index    int
	attackID string
}

// Process scans sections for one or more attack groups and runs the
// resolver chain once per group, returning one processed entry per group. A
// mail with no sections produces no entries; a mail with sections but no
// recognizable attack groups is an error.
func Process(sections []codec.Value) ([]*extract.ProcessedMail, error) {
	if len(sections) == 0 {
		return nil, nil
	}

	var battles []battleRef
	for index, section := range sections {
		obj, ok := asObject(section)
		if !ok {
			continue
		}
		for _, key := range obj.Keys() {
			if !isASCIIDigits(key) {
				continue
			}
			value, _ := obj.Get(key)
			if looksLikeAttackBlock(value) {
				battles = append(battles, battleRef{index: index, attackID: key})
			}
		}
		if attacks, ok := childObject(obj, "Attacks"); ok {
			for _, key := range attacks.Keys() {
				if isASCIIDigits(key) {
					battles = append(battles, battleRef{index: index, attackID: key})
				}
			}
		}
	}

	if len(battles) == 0 {
		return nil, ErrNoBattles
	}

	sort.Slice(battles, func(i, j int) bool {
		if battles[i].index != battles[j].index {
			return battles[i].index < battles[j].index
		}
		return battles[i].attackID < battles[j].attackID
	})
	battles = dedupBattles(battles)

	boundaries := make([]int, 0, len(battles))
	for _, b := range battles {
		boundaries = append(boundaries, b.index)
	}
	sort.Ints(boundaries)
	boundaries = dedupInts(boundaries)

	chain := extract.NewResolverChain[Context, extract.ProcessedMail]().
		With(NewMetadataResolver()).
		With(NewBattleSenderResolver()).
		With(NewBattleTrendsResolver()).
		With(NewDataSummaryResolver())

	entries := make([]*extract.ProcessedMail, 0, len(battles))
	for _, b := range battles {
		end := len(sections)
		for _, boundary := range boundaries {
			if boundary > b.index {
				end = boundary
				break
			}
		}

		output := extract.NewProcessedMail()
		output.Insert("metadata", extract.NewSection())
		output.Insert("battle_sender", extract.NewSection())

		ctx := &Context{
			Sections: sections,
			Group:    sections[b.index:end],
			AttackID: b.attackID,
		}
		if err := chain.Apply(ctx, output); err != nil {
			return nil, err
		}
		entries = append(entries, output)
	}

	return entries, nil
}

// looksLikeAttackBlock reports whether value is an object carrying at least
// one of Kill, Damage, or CIdt, the heuristic that distinguishes an actual
// attack block from an unrelated digit-keyed field.
func looksLikeAttackBlock(value codec.Value) bool {
	obj, ok := asObject(value)
	if !ok {
		return false
	}
	for _, key := range []string{"Kill", "Damage", "CIdt"} {
		if _, ok := obj.Get(key); ok {
			return true
		}
	}
	return false
}

func dedupBattles(battles []battleRef) []battleRef {
	out := battles[:0:0]
	for i, b := range battles {
		if i > 0 && b == battles[i-1] {
			continue
		}
		out = append(out, b)
	}
	return out
}

func dedupInts(values []int) []int {
	out := values[:0:0]
	for i, v := range values {
		if i > 0 && v == values[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
