package watcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rokbattles/mailcore/internal/config"
)

func fastWatcherConfig() config.Config {
	cfg := *config.Default()
	cfg.Watcher.FileStableAge = 10 * time.Millisecond
	cfg.Watcher.FileRetryDelay = 10 * time.Millisecond
	cfg.Watcher.FileChangedDelay = 10 * time.Millisecond
	cfg.Watcher.DirRefreshIdle = 20 * time.Millisecond
	cfg.Watcher.DirRefreshBusy = 20 * time.Millisecond
	cfg.Watcher.FullDirRefresh = 50 * time.Millisecond
	cfg.Watcher.IdleSleep = 10 * time.Millisecond
	cfg.Watcher.HotRescanInterval = 20 * time.Millisecond
	cfg.Watcher.ConfigRefreshInterval = 20 * time.Millisecond
	cfg.Watcher.ShutdownTimeout = 500 * time.Millisecond
	cfg.Store.FlushEveryUpdates = 1
	cfg.Store.FlushInterval = 50 * time.Millisecond
	return cfg
}

func runWatcherUntil(t *testing.T, w *Watcher, condition func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, condition, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down within the timeout")
	}
}

func TestWatcherUploadsStableMailFile(t *testing.T) {
	uploaded := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case uploaded <- struct{}{}:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "stored"})
	}))
	defer server.Close()

	mailDir := t.TempDir()
	stateDir := t.TempDir()
	dirsPath := filepath.Join(stateDir, "dirs.json")

	require.NoError(t, os.WriteFile(filepath.Join(mailDir, "Persistent.Mail.1"), validMailHeader(), 0o644))

	cfg := fastWatcherConfig()
	cfg.Upload.IngressURL = server.URL

	w, err := New(&cfg, stateDir, dirsPath)
	require.NoError(t, err)
	_, err = w.AddDir([]string{mailDir})
	require.NoError(t, err)

	runWatcherUntil(t, w, func() bool {
		select {
		case <-uploaded:
			return true
		default:
			return false
		}
	})

	store, err := ReadProcessedStore(filepath.Join(stateDir, cfg.Store.ProcessedFileName))
	require.NoError(t, err)
	assert.Len(t, store.Entries, 1)
}

func TestWatcherUploadsFileWithOldMtimeImmediately(t *testing.T) {
	uploaded := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case uploaded <- struct{}{}:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "stored"})
	}))
	defer server.Close()

	mailDir := t.TempDir()
	stateDir := t.TempDir()
	dirsPath := filepath.Join(stateDir, "dirs.json")

	path := filepath.Join(mailDir, "Persistent.Mail.1")
	require.NoError(t, os.WriteFile(path, validMailHeader(), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	cfg := fastWatcherConfig()
	// FileStableAge is much longer than the test's eventually-timeout: if
	// the watcher seeded stability from its own start time instead of the
	// file's mtime, this upload would never happen in time.
	cfg.Watcher.FileStableAge = time.Hour
	cfg.Upload.IngressURL = server.URL

	w, err := New(&cfg, stateDir, dirsPath)
	require.NoError(t, err)
	_, err = w.AddDir([]string{mailDir})
	require.NoError(t, err)

	runWatcherUntil(t, w, func() bool {
		select {
		case <-uploaded:
			return true
		default:
			return false
		}
	})
}

func TestWatcherIgnoresFileWithoutMailHeader(t *testing.T) {
	uploadAttempted := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case uploadAttempted <- struct{}{}:
		default:
		}
	}))
	defer server.Close()

	mailDir := t.TempDir()
	stateDir := t.TempDir()
	dirsPath := filepath.Join(stateDir, "dirs.json")

	require.NoError(t, os.WriteFile(filepath.Join(mailDir, "notes.txt"), []byte("just some text"), 0o644))

	cfg := fastWatcherConfig()
	cfg.Upload.IngressURL = server.URL

	w, err := New(&cfg, stateDir, dirsPath)
	require.NoError(t, err)
	_, err = w.AddDir([]string{mailDir})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down within the timeout")
	}

	store, err := ReadProcessedStore(filepath.Join(stateDir, cfg.Store.ProcessedFileName))
	require.NoError(t, err)
	assert.Empty(t, store.Entries)

	select {
	case <-uploadAttempted:
		t.Fatal("upload should not happen for a non-mail file")
	default:
	}
}

func TestWatcherReprocessAllClearsProcessedStore(t *testing.T) {
	stateDir := t.TempDir()
	dirsPath := filepath.Join(stateDir, "dirs.json")
	cfg := fastWatcherConfig()

	w, err := New(&cfg, stateDir, dirsPath)
	require.NoError(t, err)

	w.mu.Lock()
	w.processed.Entries["/a/Persistent.Mail.1"] = FileSig{Size: 1, Modified: 2}
	w.files["/a/Persistent.Mail.1"] = &trackedFile{state: stateProcessed, sig: FileSig{Size: 1, Modified: 2}}
	w.mu.Unlock()

	require.NoError(t, w.ReprocessAll())

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Empty(t, w.processed.Entries)
	assert.Equal(t, stateObserved, w.files["/a/Persistent.Mail.1"].state)
}

func TestWatcherAddAndRemoveDir(t *testing.T) {
	stateDir := t.TempDir()
	dirsPath := filepath.Join(stateDir, "dirs.json")
	cfg := fastWatcherConfig()

	w, err := New(&cfg, stateDir, dirsPath)
	require.NoError(t, err)

	dirs, err := w.AddDir([]string{"/a", "/b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, dirs)

	dirs, err = w.RemoveDir("/a")
	require.NoError(t, err)
	assert.Equal(t, []string{"/b"}, dirs)

	dirs, err = w.ListDirs()
	require.NoError(t, err)
	assert.Equal(t, []string{"/b"}, dirs)
}
