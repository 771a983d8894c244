package barcanyonkillboss

import (
	"sort"
	"strconv"

	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// ParticipantsExtractor extracts the roster of players who fought the boss
// from the content's STs field, keyed by participant id.
type ParticipantsExtractor struct{}

// NewParticipantsExtractor returns a new participants extractor.
func NewParticipantsExtractor() *ParticipantsExtractor { return &ParticipantsExtractor{} }

// Section returns the participants section name.
func (ParticipantsExtractor) Section() string { return "participants" }

// Extract builds the participants array section from the content's STs map.
func (ParticipantsExtractor) Extract(input codec.Value) (*extract.Section, error) {
	content, err := requireContent(input)
	if err != nil {
		return nil, err
	}
	entries, err := extractParticipants(content, "STs")
	if err != nil {
		return nil, err
	}
	return extract.NewArraySection(entries), nil
}

// extractParticipants reads a map of participant id to participant object
// off container[field], returning participant entries sorted by id. A
// missing or null field yields an empty list rather than an error.
func extractParticipants(container *codec.Object, field string) ([]codec.Value, error) {
	value, ok := container.Get(field)
	if !ok || value == nil {
		return []codec.Value{}, nil
	}
	participants, ok := value.(*codec.Object)
	if !ok {
		return nil, invalidFieldType(field, "object")
	}

	type entry struct {
		id   int64
		data map[string]codec.Value
	}
	entries := make([]entry, 0, participants.Len())
	for _, key := range participants.Keys() {
		raw, _ := participants.Get(key)
		participant, ok := raw.(*codec.Object)
		if !ok {
			return nil, invalidFieldType(field, "object")
		}
		participantID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, invalidFieldType(field, "numeric object key")
		}
		playerID, err := requireSignedIDField(participant, "PId")
		if err != nil {
			return nil, err
		}
		playerName, err := requireStringField(participant, "PName")
		if err != nil {
			return nil, err
		}
		allianceAbbr, err := requireStringField(participant, "Abbr")
		if err != nil {
			return nil, err
		}
		primaryID := optionalU64Field(participant, "HId")
		primaryLevel := optionalU64Field(participant, "HLv")
		secondaryID := optionalU64Field(participant, "HId2")
		secondaryLevel := optionalU64Field(participant, "HLv2")

		entries = append(entries, entry{
			id: participantID,
			data: map[string]codec.Value{
				"participant_id": float64(participantID),
				"player_id":      float64(playerID),
				"player_name":    playerName,
				"alliance":       map[string]codec.Value{"abbreviation": allianceAbbr},
				"commanders": map[string]codec.Value{
					"primary":   map[string]codec.Value{"id": primaryID, "level": primaryLevel},
					"secondary": map[string]codec.Value{"id": secondaryID, "level": secondaryLevel},
				},
			},
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })
	out := make([]codec.Value, len(entries))
	for i, e := range entries {
		out[i] = e.data
	}
	return out, nil
}

func requireSignedIDField(object *codec.Object, field string) (int64, error) {
	value, ok := object.Get(field)
	if !ok {
		return 0, missingField(field)
	}
	f, ok := value.(float64)
	if !ok || f != float64(int64(f)) {
		return 0, invalidFieldType(field, "integer")
	}
	return int64(f), nil
}

// optionalU64Field returns nil when the field is absent or null, matching
// the original's Option<u64> semantics.
func optionalU64Field(object *codec.Object, field string) codec.Value {
	value, ok := object.Get(field)
	if !ok || value == nil {
		return nil
	}
	f, ok := value.(float64)
	if !ok || f < 0 || f != float64(uint64(f)) {
		return nil
	}
	return f
}
