package battle

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

var stdFields = []struct {
	from string
	to   string
}{
	{"InitMax", "init_max"},
	{"Max", "max"},
	{"Healing", "healing"},
	{"Death", "death"},
	{"BadHurt", "severely_wounded"},
	{"Hurt", "wounded"},
	{"Cnt", "remaining"},
	{"Gt", "watchtower"},
	{"GtMax", "watchtower_max"},
	{"KillScore", "kill_score"},
}

// BattleResolver fills "battle_results" from the attack block's Damage
// (self) and Kill (enemy) stat blocks.
type BattleResolver struct{}

// NewBattleResolver returns a new battle results resolver.
func NewBattleResolver() *BattleResolver { return &BattleResolver{} }

// Name returns the step name used for error reporting.
func (BattleResolver) Name() string { return "battle_results" }

// Resolve locates the current group's attack block and copies its Damage
// (self) and Kill (enemy) stats into battle_results.
func (BattleResolver) Resolve(ctx *Context, output *extract.ProcessedMail) error {
	idx, block, found := findBestAttackBlock(ctx.Group, ctx.AttackID)

	var section *codec.Object
	if found {
		section, _ = asObject(ctx.Group[idx])
	}
	attackBlock := block
	if attackBlock == nil {
		attackBlock = section
	}

	damage := childObjectOf(attackBlock, "Damage")
	if damage == nil {
		damage = childObjectOf(section, "Damage")
	}
	if damage == nil && found {
		damage = findNearbyObj(ctx.Group, idx, "Damage", 3)
	}

	kill := childObjectOf(attackBlock, "Kill")
	if kill == nil {
		kill = childObjectOf(section, "Kill")
	}
	if kill == nil && found {
		kill = findNearbyObj(ctx.Group, idx, "Kill", 3)
	}

	fields := getOrInsertSection(output, "battle_results").Fields()
	copySide(fields, damage, "")
	copySide(fields, kill, "enemy_")
	return nil
}

func childObjectOf(obj *codec.Object, key string) *codec.Object {
	if obj == nil {
		return nil
	}
	child, _ := childObject(obj, key)
	return child
}

func copySide(dst map[string]codec.Value, src *codec.Object, prefix string) {
	if src == nil {
		return
	}
	power, ok := i64Any(src, "Power", "AtkPower")
	insertI64IfAbsentPrefixed(dst, prefix, "power", power, ok)
	copyStdFields(dst, src, prefix)
}

func copyStdFields(dst map[string]codec.Value, src *codec.Object, prefix string) {
	for _, f := range stdFields {
		v, ok := src.Get(f.from)
		if !ok {
			continue
		}
		n, ok := asInt64(v)
		insertI64IfAbsentPrefixed(dst, prefix, f.to, n, ok)
	}
}

func insertI64IfAbsentPrefixed(dst map[string]codec.Value, prefix, name string, val int64, ok bool) {
	if !ok {
		return
	}
	key := prefix + name
	if _, exists := dst[key]; exists {
		return
	}
	dst[key] = float64(val)
}

func i64Any(obj *codec.Object, keys ...string) (int64, bool) {
	for _, k := range keys {
		if v, ok := obj.Get(k); ok {
			if n, ok := asInt64(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// findNearbyObj searches outward from start within group for an object-typed
// field named key, alternating one step back then one step forward, up to
// maxSpan steps in each direction.
func findNearbyObj(group []codec.Value, start int, key string, maxSpan int) *codec.Object {
	for d := 1; d <= maxSpan; d++ {
		if start >= d {
			if obj, ok := asObject(group[start-d]); ok {
				if child, ok := childObject(obj, key); ok {
					return child
				}
			}
		}
		if start+d < len(group) {
			if obj, ok := asObject(group[start+d]); ok {
				if child, ok := childObject(obj, key); ok {
					return child
				}
			}
		}
	}
	return nil
}
