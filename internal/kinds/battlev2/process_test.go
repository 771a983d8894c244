package battlev2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rokbattles/mailcore/internal/codec"
)

func headerSection() *codec.Object {
	header := codec.NewObject()
	header.Set("id", "mail-1")
	header.Set("type", "Battle")
	header.Set("time", float64(1700000000))

	self := codec.NewObject()
	self.Set("PId", float64(100))
	self.Set("PName", "Owner")
	self.Set("Abbr", "SLF")

	enemy := codec.NewObject()
	enemy.Set("PId", float64(200))
	enemy.Set("PName", "Rival")
	enemy.Set("Abbr", "ENM")

	sts := codec.NewObject()
	sts.Set("-2", self)
	sts.Set("3", enemy)

	content := codec.NewObject()
	content.Set("STs", sts)
	body := codec.NewObject()
	body.Set("content", content)
	header.Set("body", body)

	return header
}

func battleSection(attackID string) *codec.Object {
	attack := codec.NewObject()
	damage := codec.NewObject()
	damage.Set("KillScore", float64(500))
	attack.Set("Damage", damage)

	kill := codec.NewObject()
	kill.Set("KillScore", float64(200))
	attack.Set("Kill", kill)

	section := codec.NewObject()
	section.Set(attackID, attack)
	return section
}

func TestProcess_SingleBattleGroup(t *testing.T) {
	sections := []codec.Value{headerSection(), battleSection("1")}

	entries, err := Process(sections)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	meta := entries[0].Sections()["metadata"].Fields()
	assert.Equal(t, "1", meta["attack_id"])
	assert.Equal(t, "mail-1", meta["email_id"])

	sender := entries[0].Sections()["battle_sender"].Fields()
	assert.Equal(t, float64(-2), sender["participant_id"])
	assert.Equal(t, float64(100), sender["player_id"])

	summary, isArr := entries[0].Sections()["data_summary"].Array()
	require.True(t, isArr)
	assert.Len(t, summary, 2)

	trends, isArr := entries[0].Sections()["battle_trends"].Array()
	require.True(t, isArr)
	require.Len(t, trends, 1)
	trendFields := trends[0].(map[string]codec.Value)
	assert.Equal(t, float64(500), trendFields["kill_score"])
	assert.Equal(t, float64(200), trendFields["enemy_kill_score"])
}

func TestProcess_NoBattlesIsError(t *testing.T) {
	sections := []codec.Value{headerSection()}
	_, err := Process(sections)
	assert.ErrorIs(t, err, ErrNoBattles)
}

func TestProcess_EmptySectionsYieldsNoEntries(t *testing.T) {
	entries, err := Process(nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExtractParticipants_AllowsMissingField(t *testing.T) {
	empty := codec.NewObject()
	entries, err := extractParticipants(empty, "STs")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBattleSenderResolver_SkipsWithoutContent(t *testing.T) {
	header := codec.NewObject()
	header.Set("id", "mail-2")

	sections := []codec.Value{header, battleSection("9")}
	entries, err := Process(sections)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Sections()["battle_sender"].Fields())
}
