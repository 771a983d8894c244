package battle

import (
	"strconv"
	"strings"

	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

func isASCIIDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// getOrInsertSection returns the named section of output, creating an empty
// object-backed one if it doesn't already exist.
func getOrInsertSection(output *extract.ProcessedMail, name string) *extract.Section {
	if section, ok := output.Sections()[name]; ok {
		return section
	}
	section := extract.NewSection()
	output.Insert(name, section)
	return section
}

func asObject(v codec.Value) (*codec.Object, bool) {
	obj, ok := v.(*codec.Object)
	return obj, ok
}

func asString(v codec.Value) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat64(v codec.Value) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func asInt64(v codec.Value) (int64, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

func childValue(obj *codec.Object, key string) (codec.Value, bool) {
	if obj == nil {
		return nil, false
	}
	return obj.Get(key)
}

func childObject(obj *codec.Object, key string) (*codec.Object, bool) {
	v, ok := childValue(obj, key)
	if !ok {
		return nil, false
	}
	return asObject(v)
}

// parseI128ish parses a number-or-numeric-string field the way the original
// implementation's i128 staging does, losslessly enough for Go's int64.
func parseI128ish(v codec.Value) (int64, bool) {
	switch val := v.(type) {
	case float64:
		return int64(val), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func parseFloat64(v codec.Value) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func insertStrIfAbsent(fields map[string]codec.Value, key string, val string, ok bool) {
	if !ok {
		return
	}
	if _, exists := fields[key]; exists {
		return
	}
	fields[key] = val
}

func insertI64IfAbsent(fields map[string]codec.Value, key string, val int64, ok bool) {
	if !ok {
		return
	}
	if _, exists := fields[key]; exists {
		return
	}
	fields[key] = float64(val)
}

func insertF64IfAbsent(fields map[string]codec.Value, key string, val float64, ok bool) {
	if !ok {
		return
	}
	if _, exists := fields[key]; exists {
		return
	}
	fields[key] = val
}

// findSelfSnapshotSection finds the section describing the mail owner's own
// player snapshot: the first section with an AppUid field and CtId==0, or
// failing that, the first section with an AppUid field at all.
func findSelfSnapshotSection(sections []codec.Value) (*codec.Object, bool) {
	var fallback *codec.Object
	for _, s := range sections {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		if _, hasAppUid := obj.Get("AppUid"); !hasAppUid {
			continue
		}
		if fallback == nil {
			fallback = obj
		}
		if ctID, ok := asInt64(mustGet(obj, "CtId")); ok && ctID == 0 {
			return obj, true
		}
	}
	if fallback != nil {
		return fallback, true
	}
	return nil, false
}

func mustGet(obj *codec.Object, key string) codec.Value {
	v, _ := obj.Get(key)
	return v
}

// findSelfContentRoot finds the content object containing the mail owner's
// SelfChar payload, checking both body.content.SelfChar and
// content.SelfChar layouts.
func findSelfContentRoot(sections []codec.Value) (*codec.Object, bool) {
	for _, s := range sections {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		if body, ok := childObject(obj, "body"); ok {
			if content, ok := childObject(body, "content"); ok {
				if _, hasSelf := content.Get("SelfChar"); hasSelf {
					return content, true
				}
			}
		}
		if content, ok := childObject(obj, "content"); ok {
			if _, hasSelf := content.Get("SelfChar"); hasSelf {
				return content, true
			}
		}
	}
	return nil, false
}

// findBestAttackBlock locates the attack block for attackID within group,
// preferring a block carrying CIdt.HSS, falling back to a section whose Idt
// matches attackID and carries HSS/HId/HId2.
func findBestAttackBlock(group []codec.Value, attackID string) (idx int, block *codec.Object, found bool) {
	bestHasHSS := false
	found = false
	for gi, s := range group {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		var candidate codec.Value
		if v, ok := obj.Get(attackID); ok {
			candidate = v
		} else if attacks, ok := childObject(obj, "Attacks"); ok {
			if v, ok := attacks.Get(attackID); ok {
				candidate = v
			}
		}
		if candidate == nil {
			continue
		}
		candidateObj, _ := asObject(candidate)
		hasHSS := false
		if cidt, ok := childObject(candidateObj, "CIdt"); ok {
			_, hasHSS = cidt.Get("HSS")
		}
		if !found || (!bestHasHSS && hasHSS) {
			idx = gi
			block = candidateObj
			found = true
			bestHasHSS = hasHSS
			if bestHasHSS {
				return idx, block, true
			}
		}
	}
	if found {
		return idx, block, true
	}

	for gi, s := range group {
		obj, ok := asObject(s)
		if !ok {
			continue
		}
		idtValue, hasIdt := obj.Get("Idt")
		if !hasIdt {
			continue
		}
		matches := false
		if s, ok := asString(idtValue); ok {
			matches = s == attackID
		} else if n, ok := asInt64(idtValue); ok {
			matches = strconv.FormatInt(n, 10) == attackID
		}
		if !matches {
			continue
		}
		_, hasHSS := obj.Get("HSS")
		_, hasHId := obj.Get("HId")
		_, hasHId2 := obj.Get("HId2")
		if hasHSS || hasHId || hasHId2 {
			return gi, codec.NewObject(), true
		}
	}

	return 0, nil, false
}
