// Package duelbattle2 extracts sections from decoded DuelBattle2 mail.
package duelbattle2

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// locatePlayer finds a named player object (e.g. "AtkPlayer"/"DefPlayer")
// either directly on the mail root or under body.detail.
func locatePlayer(input codec.Value, field string) (*codec.Object, error) {
	root, err := extract.RequireObject(input)
	if err != nil {
		return nil, err
	}
	if v, ok := root.Get(field); ok {
		player, ok := v.(*codec.Object)
		if !ok {
			return nil, fieldTypeErr(field, "object")
		}
		return player, nil
	}
	if body, ok := childObject(root, "body"); ok {
		if detail, ok := childObject(body, "detail"); ok {
			if v, ok := detail.Get(field); ok {
				player, ok := v.(*codec.Object)
				if !ok {
					return nil, fieldTypeErr(field, "object")
				}
				return player, nil
			}
		}
	}
	return nil, missingFieldErr(field)
}

func childObject(obj *codec.Object, key string) (*codec.Object, bool) {
	v, ok := obj.Get(key)
	if !ok {
		return nil, false
	}
	child, ok := v.(*codec.Object)
	return child, ok
}

func missingFieldErr(field string) error {
	return &extract.ExtractError{Kind: extract.MissingField, Field: field}
}

func fieldTypeErr(field, expected string) error {
	return &extract.ExtractError{Kind: extract.InvalidFieldType, Field: field, Expected: expected}
}

func requireStringField(obj *codec.Object, field string) (string, error) {
	v, ok := obj.Get(field)
	if !ok {
		return "", missingFieldErr(field)
	}
	s, ok := v.(string)
	if !ok {
		return "", fieldTypeErr(field, "string")
	}
	return s, nil
}

func requireSignedField(obj *codec.Object, field string) (int64, error) {
	v, ok := obj.Get(field)
	if !ok {
		return 0, missingFieldErr(field)
	}
	f, ok := v.(float64)
	if !ok || f != float64(int64(f)) {
		return 0, fieldTypeErr(field, "signed 64-bit integer")
	}
	return int64(f), nil
}

func requireUintField(obj *codec.Object, field string) (uint64, error) {
	v, ok := obj.Get(field)
	if !ok {
		return 0, missingFieldErr(field)
	}
	f, ok := v.(float64)
	if !ok || f < 0 || f != float64(uint64(f)) {
		return 0, fieldTypeErr(field, "unsigned integer")
	}
	return uint64(f), nil
}

func requireBoolField(obj *codec.Object, field string) (bool, error) {
	v, ok := obj.Get(field)
	if !ok {
		return false, missingFieldErr(field)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fieldTypeErr(field, "boolean")
	}
	return b, nil
}

func optionalInt64(obj *codec.Object, field string) (int64, bool) {
	v, ok := obj.Get(field)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

func optionalBool(obj *codec.Object, field string) (bool, bool) {
	v, ok := obj.Get(field)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func optionalFloat64(obj *codec.Object, field string) (float64, bool) {
	v, ok := obj.Get(field)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// parseAvatar unpacks a string field that itself holds a JSON object with
// "avatar"/"avatarFrame" keys, used when the game embeds a small JSON
// payload instead of a plain URL.
func parseAvatar(raw string) (avatar, frame string, ok bool) {
	var payload struct {
		Avatar      *string `json:"avatar"`
		AvatarFrame *string `json:"avatarFrame"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", "", false
	}
	if payload.Avatar != nil {
		avatar = *payload.Avatar
	}
	if payload.AvatarFrame != nil {
		frame = *payload.AvatarFrame
	}
	return avatar, frame, true
}

// commander builds a {id, level, star, awakened, skills} value from a hero
// object laid out as HeroId/HeroLevel/Star/Awaked/Skills.
func commander(value codec.Value) map[string]codec.Value {
	out := map[string]codec.Value{}
	obj, ok := value.(*codec.Object)
	if !ok {
		return out
	}
	if id, ok := optionalInt64(obj, "HeroId"); ok {
		out["id"] = float64(id)
	}
	if level, ok := optionalInt64(obj, "HeroLevel"); ok {
		out["level"] = float64(level)
	}
	if star, ok := optionalInt64(obj, "Star"); ok {
		out["star"] = float64(star)
	}
	if awakened, ok := optionalBool(obj, "Awaked"); ok {
		out["awakened"] = awakened
	}
	if skillsRaw, ok := obj.Get("Skills"); ok {
		out["skills"] = skills(skillsRaw)
	}
	return out
}

func skills(value codec.Value) []codec.Value {
	arr, ok := value.([]codec.Value)
	if !ok {
		return []codec.Value{}
	}
	values := extract.ExtractIndexedValues(arr)
	out := make([]codec.Value, 0, len(values))
	for _, v := range values {
		obj, ok := v.(*codec.Object)
		if !ok {
			continue
		}
		skill := map[string]codec.Value{}
		if id, ok := optionalInt64(obj, "SkillId"); ok {
			skill["id"] = float64(id)
		}
		if level, ok := optionalInt64(obj, "Level"); ok {
			skill["level"] = float64(level)
		}
		if order, ok := optionalInt64(obj, "Id"); ok {
			skill["order"] = float64(order)
		}
		if len(skill) == 0 {
			continue
		}
		out = append(out, skill)
	}
	return out
}

// buffs reads a player's Heroes.Buffs field, which may be a plain array or
// an indexed array, into a list of {id, value} entries.
func buffs(heroes *codec.Object) []codec.Value {
	v, ok := heroes.Get("Buffs")
	if !ok {
		return []codec.Value{}
	}
	arr, ok := v.([]codec.Value)
	if !ok {
		return []codec.Value{}
	}
	values := extract.ExtractIndexedValues(arr)
	out := make([]codec.Value, 0, len(values))
	for _, v := range values {
		obj, ok := v.(*codec.Object)
		if !ok {
			continue
		}
		_, hasID := obj.Get("BuffId")
		_, hasVal := obj.Get("BuffValue")
		if !hasID && !hasVal {
			continue
		}
		entry := map[string]codec.Value{}
		if id, ok := optionalInt64(obj, "BuffId"); ok {
			entry["id"] = float64(id)
		}
		if val, ok := optionalFloat64(obj, "BuffValue"); ok {
			entry["value"] = val
		}
		out = append(out, entry)
	}
	return out
}

// playerSection builds the shared participant shape (player_id, player_name,
// alliance, duel, avatar_url, frame_url) for a player object.
func playerSection(player *codec.Object) (*extract.Section, error) {
	playerID, err := requireSignedField(player, "PlayerId")
	if err != nil {
		return nil, err
	}
	playerName, err := requireStringField(player, "PlayerName")
	if err != nil {
		return nil, err
	}

	section := extract.NewSection()
	section.Insert("player_id", float64(playerID))
	section.Insert("player_name", playerName)

	if abbr, ok := player.Get("Abbr"); ok {
		if s, ok := abbr.(string); ok {
			section.Insert("alliance", map[string]codec.Value{"abbreviation": s})
		}
	}
	if teamID, ok := optionalInt64(player, "DuelTeamId"); ok {
		section.Insert("duel", map[string]codec.Value{"team_id": float64(teamID)})
	}

	avatarURL, frameURL := extractAvatar(player)
	section.Insert("avatar_url", avatarURL)
	section.Insert("frame_url", frameURL)

	return section, nil
}

// extractAvatar reads PlayerAvatar, which is either a plain URL string or a
// small embedded-JSON string carrying "avatar"/"avatarFrame" keys.
func extractAvatar(player *codec.Object) (avatarURL, frameURL codec.Value) {
	v, ok := player.Get("PlayerAvatar")
	if !ok {
		return nil, nil
	}
	switch av := v.(type) {
	case string:
		if strings.HasPrefix(strings.TrimSpace(av), "{") {
			if avatar, frame, ok := parseAvatar(av); ok {
				return strOrNil(avatar), strOrNil(frame)
			}
		}
		return av, nil
	case *codec.Object:
		var avatar, frame codec.Value
		if a, ok := av.Get("avatar"); ok {
			if s, ok := a.(string); ok {
				avatar = s
			}
		}
		if f, ok := av.Get("avatarFrame"); ok {
			if s, ok := f.(string); ok {
				frame = s
			}
		}
		return avatar, frame
	default:
		return nil, nil
	}
}

func strOrNil(s string) codec.Value {
	if s == "" {
		return nil
	}
	return s
}

// playerCommanders reads a player's Heroes.MainHero/AssistHero slots.
func playerCommanders(player *codec.Object) (primary, secondary codec.Value, err error) {
	heroesV, ok := player.Get("Heroes")
	if !ok {
		return map[string]codec.Value{}, map[string]codec.Value{}, nil
	}
	heroes, ok := heroesV.(*codec.Object)
	if !ok {
		return nil, nil, fieldTypeErr("Heroes", "object")
	}
	primary = map[string]codec.Value{}
	secondary = map[string]codec.Value{}
	if main, ok := heroes.Get("MainHero"); ok {
		primary = commander(main)
	}
	if assist, ok := heroes.Get("AssistHero"); ok {
		secondary = commander(assist)
	}
	return primary, secondary, nil
}

// playerBuffs reads a player's Heroes.Buffs field.
func playerBuffs(player *codec.Object) ([]codec.Value, error) {
	heroesV, ok := player.Get("Heroes")
	if !ok {
		return []codec.Value{}, nil
	}
	heroes, ok := heroesV.(*codec.Object)
	if !ok {
		return nil, fieldTypeErr("Heroes", "object")
	}
	return buffs(heroes), nil
}

// sortedKeys returns an object's keys sorted lexicographically, used where
// deterministic iteration order matters for deduplicated output.
func sortedKeys(obj *codec.Object) []string {
	keys := append([]string(nil), obj.Keys()...)
	sort.Strings(keys)
	return keys
}
