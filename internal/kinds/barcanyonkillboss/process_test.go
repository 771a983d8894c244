package barcanyonkillboss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rokbattles/mailcore/internal/codec"
)

func sampleRoot() *codec.Object {
	root := codec.NewObject()
	root.Set("id", "21162669176948646831")
	root.Set("time", float64(1766182379846826))
	root.Set("receiver", "player_71738515")
	root.Set("serverId", float64(15790))

	pos := codec.NewObject()
	pos.Set("x", 4788.31689453125)
	pos.Set("y", 4418.36669921875)

	content := codec.NewObject()
	content.Set("npcType", float64(102000055))
	content.Set("npcLevel", float64(25))
	content.Set("pos", pos)

	sts := codec.NewObject()
	alpha := codec.NewObject()
	alpha.Set("PId", float64(100))
	alpha.Set("PName", "Alpha")
	alpha.Set("Abbr", "AA")
	alpha.Set("HId", float64(10))
	alpha.Set("HLv", float64(20))
	alpha.Set("HId2", float64(11))
	alpha.Set("HLv2", float64(21))
	sts.Set("-2", alpha)

	beta := codec.NewObject()
	beta.Set("PId", float64(101))
	beta.Set("PName", "Beta")
	beta.Set("Abbr", "BB")
	sts.Set("3", beta)
	content.Set("STs", sts)

	body := codec.NewObject()
	body.Set("content", content)
	root.Set("body", body)
	return root
}

func TestNpcExtractor_ExtractsSample(t *testing.T) {
	section, err := NewNpcExtractor().Extract(sampleRoot())
	require.NoError(t, err)

	fields := section.Fields()
	assert.Equal(t, float64(102000055), fields["type"])
	assert.Equal(t, float64(25), fields["level"])
	assert.Equal(t, map[string]codec.Value{"x": 4788.31689453125, "y": 4418.36669921875}, fields["location"])
}

func TestNpcExtractor_RejectsMissingField(t *testing.T) {
	input := codec.NewObject()
	body := codec.NewObject()
	content := codec.NewObject()
	content.Set("npcLevel", float64(32))
	body.Set("content", content)
	input.Set("body", body)

	_, err := NewNpcExtractor().Extract(input)
	assert.Error(t, err)
}

func TestParticipantsExtractor_ExtractsSortedEntries(t *testing.T) {
	section, err := NewParticipantsExtractor().Extract(sampleRoot())
	require.NoError(t, err)

	arr, isArr := section.Array()
	require.True(t, isArr)
	require.Len(t, arr, 2)

	first := arr[0].(map[string]codec.Value)
	assert.Equal(t, float64(-2), first["participant_id"])
	second := arr[1].(map[string]codec.Value)
	assert.Equal(t, float64(3), second["participant_id"])
}

func TestExtractParticipants_AllowsMissingField(t *testing.T) {
	entries, err := extractParticipants(codec.NewObject(), "STs")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMetadataExtractor_ExtractsSample(t *testing.T) {
	section, err := NewMetadataExtractor().Extract(sampleRoot())
	require.NoError(t, err)

	fields := section.Fields()
	assert.Equal(t, "21162669176948646831", fields["mail_id"])
	assert.Equal(t, "player_71738515", fields["mail_receiver"])
	assert.Equal(t, float64(15790), fields["server_id"])
}

func TestProcessSequential_BuildsAllSections(t *testing.T) {
	processed, err := ProcessSequential([]codec.Value{sampleRoot()})
	require.NoError(t, err)

	out := processed.Sections()
	assert.Contains(t, out, "metadata")
	assert.Contains(t, out, "npc")
	assert.Contains(t, out, "participants")
}

func TestProcessSequential_EmptySections(t *testing.T) {
	_, err := ProcessSequential(nil)
	assert.Error(t, err)
}
