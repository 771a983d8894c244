package batch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMailJSON(t *testing.T, dir, name string, kind string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	buf, err := json.Marshal(map[string]interface{}{
		"sections": []map[string]interface{}{
			{
				"type":     kind,
				"id":       name,
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
			},
		},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestRun_ProcessesEligibleFiles(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")

	writeMailJSON(t, inputDir, "1.json", "BarCanyonKillBoss")
	writeMailJSON(t, inputDir, "2.json", "BarCanyonKillBoss")
	require.NoError(t, os.Mkdir(filepath.Join(inputDir, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "1-processed.json"), []byte("{}"), 0o644))

	summary, err := Run(context.Background(), Job{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		Concurrency: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, summary.Skipped) // subdir + the stale processed file

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 4) // raw + processed file per mail
}

func TestRun_EmptyDirectoryYieldsEmptySummary(t *testing.T) {
	inputDir := t.TempDir()
	summary, err := Run(context.Background(), Job{
		InputDir:  inputDir,
		OutputDir: filepath.Join(t.TempDir(), "out"),
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}

func TestRun_BadBinaryFileCountsAsFailed(t *testing.T) {
	inputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "bad.bin"), []byte{0xFF, 0xFF}, 0o644))

	summary, err := Run(context.Background(), Job{
		InputDir:  inputDir,
		OutputDir: filepath.Join(t.TempDir(), "out"),
	})
	require.Error(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Processed)
}

func TestClassify(t *testing.T) {
	format, ok := classify("42.json")
	require.True(t, ok)
	assert.Equal(t, 1, int(format)) // dispatch.JSON

	_, ok = classify("42-processed.json")
	assert.False(t, ok)

	format, ok = classify("42.bin")
	require.True(t, ok)
	assert.Equal(t, 0, int(format)) // dispatch.Binary
}
