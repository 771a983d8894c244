package watcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadProcessedStoreMissingFileYieldsEmpty(t *testing.T) {
	store, err := ReadProcessedStore(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, store.Entries)
}

func TestReadProcessedStoreRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "processed-v3.json")

	store := NewProcessedStore()
	store.Entries["/a/b.bin"] = FileSig{Size: 10, Modified: 1234}
	require.NoError(t, WriteProcessedStore(path, store))

	loaded, err := ReadProcessedStore(path)
	require.NoError(t, err)
	assert.Equal(t, store.Entries, loaded.Entries)
}

func TestReadProcessedStoreTreatsLegacyArrayAsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "processed-v3.json")
	require.NoError(t, os.WriteFile(path, []byte(`["/a/b.bin", "/c/d.bin"]`), 0o644))

	store, err := ReadProcessedStore(path)
	require.NoError(t, err)
	assert.Empty(t, store.Entries)
}

func TestUploadQueueStoreRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload-queue.json")

	notBefore := uint64(99)
	store := NewUploadQueueStore()
	store.Items = append(store.Items, QueuedUpload{
		Path:        "/a/b.bin",
		Sig:         FileSig{Size: 5, Modified: 6},
		Attempts:    2,
		NotBeforeMs: &notBefore,
	})
	require.NoError(t, WriteUploadQueueStore(path, store))

	loaded, err := ReadUploadQueueStore(path)
	require.NoError(t, err)
	assert.Equal(t, store.Version, loaded.Version)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, store.Items[0].Path, loaded.Items[0].Path)
	assert.Equal(t, *store.Items[0].NotBeforeMs, *loaded.Items[0].NotBeforeMs)
}

func TestDeleteProcessedStoreIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "processed-v3.json")
	require.NoError(t, WriteProcessedStore(path, NewProcessedStore()))

	require.NoError(t, DeleteProcessedStore(path))
	require.NoError(t, DeleteProcessedStore(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
