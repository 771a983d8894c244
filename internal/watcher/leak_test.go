//go:build leaktests
// +build leaktests

package watcher

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rokbattles/mailcore/internal/config"
)

// TestWatcherRunLeavesNoGoroutines verifies the scanner goroutine and any
// in-flight upload goroutines exit once Run returns.
func TestWatcherRunLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := httptest.NewServer(nil)
	defer server.Close()

	mailDir := t.TempDir()
	stateDir := t.TempDir()
	dirsPath := filepath.Join(stateDir, "dirs.json")
	require.NoError(t, os.WriteFile(filepath.Join(mailDir, "notes.txt"), []byte("not mail"), 0o644))

	cfg := *config.Default()
	cfg.Watcher.IdleSleep = 10 * time.Millisecond
	cfg.Watcher.DirRefreshIdle = 20 * time.Millisecond
	cfg.Watcher.DirRefreshBusy = 20 * time.Millisecond
	cfg.Watcher.FullDirRefresh = 30 * time.Millisecond
	cfg.Watcher.HotRescanInterval = 20 * time.Millisecond
	cfg.Watcher.ConfigRefreshInterval = 20 * time.Millisecond
	cfg.Watcher.ShutdownTimeout = 500 * time.Millisecond
	cfg.Upload.IngressURL = server.URL

	w, err := New(&cfg, stateDir, dirsPath)
	require.NoError(t, err)
	_, err = w.AddDir([]string{mailDir})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down within the timeout")
	}
}
