package watcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectorySetAddDedupesAndTrims(t *testing.T) {
	ds := NewDirectorySet(filepath.Join(t.TempDir(), "dirs.json"))

	dirs, err := ds.Add([]string{" /a ", "/b", "/a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, dirs)

	dirs, err = ds.Add([]string{"/c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b", "/c"}, dirs)
}

func TestDirectorySetRemove(t *testing.T) {
	ds := NewDirectorySet(filepath.Join(t.TempDir(), "dirs.json"))
	_, err := ds.Add([]string{"/a", "/b"})
	require.NoError(t, err)

	dirs, err := ds.Remove("/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"/b"}, dirs)
}

func TestDirectorySetListOnMissingFile(t *testing.T) {
	ds := NewDirectorySet(filepath.Join(t.TempDir(), "dirs.json"))
	dirs, err := ds.List()
	require.NoError(t, err)
	assert.Empty(t, dirs)
}
