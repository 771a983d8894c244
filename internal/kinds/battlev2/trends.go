package battlev2

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// BattleTrendsResolver fills "battle_trends" with one entry per attack block
// found in the group, in section order, recording each block's self and
// enemy kill score.
type BattleTrendsResolver struct{}

// NewBattleTrendsResolver returns a new battle trends resolver.
func NewBattleTrendsResolver() *BattleTrendsResolver { return &BattleTrendsResolver{} }

// Name returns the step name used for error reporting.
func (BattleTrendsResolver) Name() string { return "battle_trends" }

// Resolve walks the group's sections collecting one trend entry per
// digit-keyed attack block, whether it sits directly on the section or
// under its "Attacks" child object.
func (BattleTrendsResolver) Resolve(ctx *Context, output *extract.ProcessedMail) error {
	var entries []codec.Value
	for _, s := range ctx.Group {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		for _, key := range obj.Keys() {
			if !isASCIIDigits(key) {
				continue
			}
			if block, ok := childObject(obj, key); ok {
				entries = append(entries, trendEntry(key, block))
			}
		}
		if attacks, ok := childObject(obj, "Attacks"); ok {
			for _, key := range attacks.Keys() {
				if !isASCIIDigits(key) {
					continue
				}
				if block, ok := childObject(attacks, key); ok {
					entries = append(entries, trendEntry(key, block))
				}
			}
		}
	}

	if _, exists := output.Sections()["battle_trends"]; !exists {
		output.Insert("battle_trends", extract.NewArraySection(entries))
	}
	return nil
}

func trendEntry(attackID string, block *codec.Object) codec.Value {
	fields := map[string]codec.Value{"attack_id": attackID}
	if damage, ok := childObject(block, "Damage"); ok {
		if ks, ok := damage.Get("KillScore"); ok {
			if n, ok := asInt64(ks); ok {
				fields["kill_score"] = float64(n)
			}
		}
	}
	if kill, ok := childObject(block, "Kill"); ok {
		if ks, ok := kill.Get("KillScore"); ok {
			if n, ok := asInt64(ks); ok {
				fields["enemy_kill_score"] = float64(n)
			}
		}
	}
	return fields
}
