package battle

import (
	"strconv"

	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

const tickEpochThreshold = 1_000_000_000

// MetadataResolver fills the "metadata" section's attack id, email basics,
// role/season flags, normalized time window, position, and player count.
type MetadataResolver struct{}

// NewMetadataResolver returns a new metadata resolver.
func NewMetadataResolver() *MetadataResolver { return &MetadataResolver{} }

// Name returns the step name used for error reporting.
func (MetadataResolver) Name() string { return "metadata" }

// Resolve fills the metadata section's fields, skipping any that are
// already present (a resolver never overwrites an earlier step's value).
func (MetadataResolver) Resolve(ctx *Context, output *extract.ProcessedMail) error {
	section := getOrInsertSection(output, "metadata")
	fields := section.Fields()

	resolveEmailBasics(ctx, fields)
	resolveRoleSeason(ctx, fields)
	resolveTime(ctx, fields)
	resolvePosition(ctx, fields)
	resolvePlayers(ctx, fields)
	return nil
}

func resolveEmailBasics(ctx *Context, fields map[string]codec.Value) {
	if _, exists := fields["attack_id"]; !exists {
		fields["attack_id"] = ctx.AttackID
	}

	if len(ctx.Sections) > 0 {
		if g0, ok := asObject(ctx.Sections[0]); ok {
			if id, ok := g0.Get("id"); ok {
				s, ok := asString(id)
				insertStrIfAbsent(fields, "email_id", s, ok)
			}
			if typ, ok := g0.Get("type"); ok {
				s, ok := asString(typ)
				insertStrIfAbsent(fields, "email_type", s, ok)
			}
			if box, ok := g0.Get("box"); ok {
				s, ok := asString(box)
				insertStrIfAbsent(fields, "email_box", s, ok)
			}
			if t, ok := g0.Get("time"); ok {
				n, ok := parseI128ish(t)
				insertI64IfAbsent(fields, "email_time", n, ok)
			}
		}
	}

	selfSnap, _ := findSelfSnapshotSection(ctx.Sections)
	selfBody, _ := findSelfContentRoot(ctx.Sections)

	var pid int64
	havePid := false
	if selfSnap != nil {
		if v, ok := selfSnap.Get("PId"); ok {
			pid, havePid = asInt64(v)
		}
	}
	if !havePid && selfBody != nil {
		if selfChar, ok := childObject(selfBody, "SelfChar"); ok {
			if v, ok := selfChar.Get("PId"); ok {
				pid, havePid = asInt64(v)
			}
		}
	}
	if havePid && pid != 0 {
		insertStrIfAbsent(fields, "email_receiver", strconv.FormatInt(pid, 10), true)
	}
}

func resolveRoleSeason(ctx *Context, fields map[string]codec.Value) {
	statsBlock := findStatsBlock(ctx.Sections)

	if statsBlock != nil {
		var role codec.Value
		var hasRole bool
		role, hasRole = statsBlock.Get("Role")
		if !hasRole {
			if body, ok := childObject(statsBlock, "body"); ok {
				role, hasRole = body.Get("Role")
			}
		}
		if hasRole {
			s, ok := asString(role)
			insertStrIfAbsent(fields, "email_role", s, ok)
		}
	}

	isKvK := false
	if statsBlock != nil {
		if v, ok := statsBlock.Get("isConquerSeason"); ok {
			if b, ok := v.(bool); ok {
				isKvK = b
			}
		} else if body, ok := childObject(statsBlock, "body"); ok {
			if v, ok := body.Get("isConquerSeason"); ok {
				if b, ok := v.(bool); ok {
					isKvK = b
				}
			}
		}
	}
	if _, exists := fields["is_kvk"]; !exists {
		if isKvK {
			fields["is_kvk"] = float64(1)
		} else {
			fields["is_kvk"] = float64(0)
		}
	}
}

func resolvePosition(ctx *Context, fields map[string]codec.Value) {
	for _, s := range ctx.Group {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		pos, ok := childObject(obj, "Pos")
		if !ok {
			if attacks, ok2 := childObject(obj, "Attacks"); ok2 {
				pos, ok = childObject(attacks, "Pos")
			}
		}
		if ok {
			if x, ok := pos.Get("X"); ok {
				f, ok := parseFloat64(x)
				insertF64IfAbsent(fields, "pos_x", f, ok)
			}
			if y, ok := pos.Get("Y"); ok {
				f, ok := parseFloat64(y)
				insertF64IfAbsent(fields, "pos_y", f, ok)
			}
			return
		}
	}

	for _, s := range ctx.Sections {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		attacks, ok := childObject(obj, "Attacks")
		if !ok {
			continue
		}
		if _, hasAttack := attacks.Get(ctx.AttackID); !hasAttack {
			continue
		}
		pos, ok := childObject(attacks, "Pos")
		if !ok {
			continue
		}
		if x, ok := pos.Get("X"); ok {
			f, ok := parseFloat64(x)
			insertF64IfAbsent(fields, "pos_x", f, ok)
		}
		if y, ok := pos.Get("Y"); ok {
			f, ok := parseFloat64(y)
			insertF64IfAbsent(fields, "pos_y", f, ok)
		}
		return
	}
}

func resolvePlayers(ctx *Context, fields map[string]codec.Value) {
	statsBlock := findStatsBlock(ctx.Sections)
	if statsBlock == nil {
		return
	}
	sts, ok := childObject(statsBlock, "STs")
	if !ok {
		if body, ok2 := childObject(statsBlock, "body"); ok2 {
			sts, ok = childObject(body, "STs")
		}
	}
	if !ok {
		return
	}
	count := 0
	for _, key := range sts.Keys() {
		if key != "-2" {
			count++
		}
	}
	if _, exists := fields["players"]; !exists {
		fields["players"] = float64(count)
	}
}

// findStatsBlock finds the first section carrying an STs or Role field,
// directly or under "body", that the role/season and player-count steps
// both read from.
func findStatsBlock(sections []codec.Value) *codec.Object {
	for _, s := range sections {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		if _, ok := obj.Get("STs"); ok {
			return obj
		}
		if _, ok := obj.Get("Role"); ok {
			return obj
		}
		if body, ok := childObject(obj, "body"); ok {
			if _, ok := body.Get("STs"); ok {
				return obj
			}
			if _, ok := body.Get("Role"); ok {
				return obj
			}
		}
	}
	return nil
}

// resolveTime fills start_date/end_date by bridging the battle group's
// small per-battle ticks to the mail's large wall-clock epoch, the way the
// original TickStart/Bts anchoring does.
func resolveTime(ctx *Context, fields map[string]codec.Value) {
	baseEpoch := firstEpochGeq(ctx.Sections, "Bts", tickEpochThreshold)
	if baseEpoch == 0 {
		for _, s := range ctx.Sections {
			if obj, ok := asObject(s); ok {
				if v, ok := obj.Get("Bts"); ok {
					if e, ok := parseEpochSeconds(v); ok {
						baseEpoch = e
						break
					}
				}
			}
		}
	}
	baseSmall := firstSmallTickStart(ctx.Sections)

	tsSmall, etsSmall, ok := findSmallTickPair(ctx.Group)
	if !ok {
		gba := findEpochInGroup(ctx.Group, "Bts")
		if gba == 0 {
			gba = baseEpoch
		}
		gea := findEpochInGroup(ctx.Group, "Ets")
		if gea == 0 {
			gea = baseEpoch
		}
		if gba < tickEpochThreshold {
			tsSmall = gba
		} else {
			tsSmall = gba - baseEpoch + baseSmall
		}
		if gea < tickEpochThreshold {
			etsSmall = gea
		} else {
			etsSmall = gea - baseEpoch + baseSmall
		}
	}

	startDate := baseEpoch + (tsSmall - baseSmall)
	endDate := baseEpoch + (etsSmall - baseSmall)
	insertI64IfAbsent(fields, "start_date", startDate, true)
	insertI64IfAbsent(fields, "end_date", endDate, true)
}

// normalizeEpochSeconds converts a raw timestamp to seconds: values at or
// above 1e15 are microseconds, at or above 1e12 are milliseconds, otherwise
// already seconds.
func normalizeEpochSeconds(n int64) int64 {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1_000_000_000_000_000:
		return n / 1_000_000
	case abs >= 1_000_000_000_000:
		return n / 1_000
	default:
		return n
	}
}

func parseEpochSeconds(v codec.Value) (int64, bool) {
	n, ok := parseI128ish(v)
	if !ok {
		return 0, false
	}
	return normalizeEpochSeconds(n), true
}

func findEpochInGroup(group []codec.Value, key string) int64 {
	for _, s := range group {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		if v, ok := obj.Get(key); ok {
			if e, ok := parseEpochSeconds(v); ok {
				return e
			}
		}
		if body, ok := childObject(obj, "body"); ok {
			if v, ok := body.Get(key); ok {
				if e, ok := parseEpochSeconds(v); ok {
					return e
				}
			}
		}
	}
	return 0
}

func firstEpochGeq(sections []codec.Value, key string, min int64) int64 {
	for _, s := range sections {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		if v, ok := obj.Get(key); ok {
			if e, ok := parseEpochSeconds(v); ok && e >= min {
				return e
			}
		}
		if body, ok := childObject(obj, "body"); ok {
			if v, ok := body.Get(key); ok {
				if e, ok := parseEpochSeconds(v); ok && e >= min {
					return e
				}
			}
		}
	}
	return 0
}

func firstSmallTickStart(sections []codec.Value) int64 {
	for _, s := range sections {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		if v, ok := obj.Get("TickStart"); ok {
			if n, ok := asInt64(v); ok {
				return n
			}
		}
		if v, ok := obj.Get("Bts"); ok {
			if n, ok := asInt64(v); ok && n < tickEpochThreshold {
				return n
			}
		}
		if attacks, ok := childObject(obj, "Attacks"); ok {
			if v, ok := attacks.Get("TickStart"); ok {
				if n, ok := asInt64(v); ok && n < tickEpochThreshold {
					return n
				}
			}
			if v, ok := attacks.Get("Bts"); ok {
				if n, ok := asInt64(v); ok && n < tickEpochThreshold {
					return n
				}
			}
		}
		if body, ok := childObject(obj, "body"); ok {
			if v, ok := body.Get("Bts"); ok {
				if n, ok := asInt64(v); ok && n < tickEpochThreshold {
					return n
				}
			}
		}
	}
	return 0
}

// findSmallTickPair finds a (start, end) pair of small per-battle ticks
// directly on a group section, either as an explicit TickStart/Ets pair or
// from TickStart and an exclusive end tick T (T > TickStart), giving an end
// of T-1.
func findSmallTickPair(group []codec.Value) (ts, ets int64, ok bool) {
	for _, s := range group {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		var tsv int64
		haveTs := false
		if v, ok := obj.Get("TickStart"); ok {
			tsv, haveTs = asInt64(v)
		}
		if !haveTs {
			if v, ok := obj.Get("Bts"); ok {
				if n, ok := asInt64(v); ok && n < tickEpochThreshold {
					tsv, haveTs = n, true
				}
			}
		}
		if !haveTs {
			continue
		}
		if v, ok := obj.Get("Ets"); ok {
			if etsv, ok := asInt64(v); ok && etsv < tickEpochThreshold && etsv >= tsv {
				return tsv, etsv, true
			}
		}
	}

	for _, s := range group {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		tsv, haveTs := int64(0), false
		if v, ok := obj.Get("TickStart"); ok {
			tsv, haveTs = asInt64(v)
		}
		if !haveTs {
			continue
		}
		v, ok := obj.Get("T")
		if !ok {
			continue
		}
		tval, ok := asInt64(v)
		if !ok || tval >= tickEpochThreshold || tval <= tsv {
			continue
		}
		return tsv, tsv + (tval - tsv - 1), true
	}

	return 0, 0, false
}
