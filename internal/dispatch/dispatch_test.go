package dispatch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodedMailJSON(sections ...map[string]interface{}) []byte {
	buf, err := json.Marshal(map[string]interface{}{"sections": sections})
	if err != nil {
		panic(err)
	}
	return buf
}

func TestExtractMailID(t *testing.T) {
	cases := map[string]string{
		"12345.json":         "12345",
		"mail.12345.json":    "12345",
		"mail.12345":         "12345",
		"mail.bin":           "mail",
		"noextension":        "noextension",
		"/some/dir/987.json": "987",
		"weird..9988..txt":   "9988",
	}
	for input, want := range cases {
		assert.Equal(t, want, extractMailID(input), "input=%s", input)
	}
}

func TestIsProcessedFilename(t *testing.T) {
	assert.True(t, IsProcessedFilename("123-processed.json"))
	assert.True(t, IsProcessedFilename("123-processed-v2.json"))
	assert.False(t, IsProcessedFilename("123.json"))
}

func TestProcess_UnrecognizedKindWritesRawOnly(t *testing.T) {
	dir := t.TempDir()
	data := decodedMailJSON(map[string]interface{}{"type": "SomethingElse"})

	result, err := Process(filepath.Join(dir, "42.json"), data, filepath.Join(dir, "out"), false, JSON)
	require.NoError(t, err)
	assert.Equal(t, "42", result.ID)
	assert.False(t, result.Known)
	assert.Empty(t, result.Paths.Processed)
	assert.Empty(t, result.Paths.ProcessedV2)

	raw, err := os.ReadFile(result.Paths.Raw)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "SomethingElse")
}

func TestProcess_RawOnlySkipsExtraction(t *testing.T) {
	dir := t.TempDir()
	data := decodedMailJSON(map[string]interface{}{"type": "BarCanyonKillBoss"})

	result, err := Process(filepath.Join(dir, "7.json"), data, filepath.Join(dir, "out"), true, JSON)
	require.NoError(t, err)
	assert.Empty(t, result.Paths.Processed)
	_, err = os.Stat(result.Paths.Raw)
	require.NoError(t, err)
}

func TestProcess_BarCanyonKillBoss(t *testing.T) {
	dir := t.TempDir()
	section := map[string]interface{}{
		"type":     "BarCanyonKillBoss",
		"id":       "mail-9",
		"time":     1700000000,
		"receiver": "player-1",
		"serverId": 1001,
		"body": map[string]interface{}{
			"content": map[string]interface{}{
				"npcType":  102000063,
				"npcLevel": 5,
				"pos":      map[string]interface{}{"x": 10.5, "y": 20.25},
			},
		},
	}
	data := decodedMailJSON(section)

	result, err := Process(filepath.Join(dir, "55.json"), data, filepath.Join(dir, "out"), false, JSON)
	require.NoError(t, err)
	require.NotEmpty(t, result.Paths.Processed)
	assert.Empty(t, result.Paths.ProcessedV2)

	_, err = os.Stat(result.Paths.Processed)
	require.NoError(t, err)
}

func TestProcess_BadBinaryInputFails(t *testing.T) {
	dir := t.TempDir()
	garbage := []byte{0xAB, 0xCD, 0xEF}

	_, err := Process(filepath.Join(dir, "1.bin"), garbage, filepath.Join(dir, "out"), false, Binary)
	require.Error(t, err)
}
