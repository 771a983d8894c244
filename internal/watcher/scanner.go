package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/rokbattles/mailcore/internal/config"
	"github.com/rokbattles/mailcore/internal/debug"
)

// ScanEventKind classifies a raw filesystem notification before it reaches
// the state machine.
type ScanEventKind int

const (
	ScanCreate ScanEventKind = iota
	ScanWrite
	ScanRemove
)

// ScanEvent is a single filtered filesystem notification for one candidate
// file path.
type ScanEvent struct {
	Path string
	Kind ScanEventKind
}

// Scanner watches a set of flat directories for mail dump files and emits
// filtered ScanEvents on a bounded channel. Unlike a source-tree indexer it
// never recurses: each watched directory is added to fsnotify directly, and
// subdirectories are ignored.
type Scanner struct {
	cfg     config.WatcherConfig
	fsw     *fsnotify.Watcher
	events  chan ScanEvent
	mu      sync.Mutex
	watched map[string]bool
}

// NewScanner constructs a Scanner bounded by cfg.FSEventQueueCapacity.
func NewScanner(cfg config.WatcherConfig) (*Scanner, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	capacity := cfg.FSEventQueueCapacity
	if capacity <= 0 {
		capacity = 1
	}
	return &Scanner{
		cfg:     cfg,
		fsw:     fsw,
		events:  make(chan ScanEvent, capacity),
		watched: make(map[string]bool),
	}, nil
}

// Events returns the channel ScanEvents are delivered on. Consumers must
// drain it, bounded per tick by cfg.FSEventBudgetPerTick, to keep the
// watcher responsive under bursty filesystem activity.
func (s *Scanner) Events() <-chan ScanEvent {
	return s.events
}

// SetDirectories reconciles the set of directories under watch with dirs,
// adding new ones and dropping ones no longer configured.
func (s *Scanner) SetDirectories(dirs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		wanted[d] = true
		if s.watched[d] {
			continue
		}
		if err := s.fsw.Add(d); err != nil {
			log.Printf("watcher: failed to watch directory %s: %v", d, err)
			continue
		}
		s.watched[d] = true
		debug.LogWatch("watcher: added directory %s", d)
	}
	for d := range s.watched {
		if !wanted[d] {
			_ = s.fsw.Remove(d)
			delete(s.watched, d)
			debug.LogWatch("watcher: removed directory %s", d)
		}
	}
}

// Run consumes fsnotify events until ctx is done, translating and filtering
// them onto Events(). It returns once the underlying watcher is closed.
func (s *Scanner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.fsw.Events:
			if !ok {
				return
			}
			s.handle(ev)
		case err, ok := <-s.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: fs event error: %v", err)
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (s *Scanner) Close() error {
	return s.fsw.Close()
}

func (s *Scanner) handle(ev fsnotify.Event) {
	if !s.matches(ev.Name) {
		return
	}

	var kind ScanEventKind
	switch {
	case ev.Op&fsnotify.Remove != 0:
		kind = ScanRemove
	case ev.Op&fsnotify.Rename != 0:
		kind = ScanRemove
	case ev.Op&fsnotify.Create != 0:
		kind = ScanCreate
	case ev.Op&fsnotify.Write != 0:
		kind = ScanWrite
	default:
		return
	}

	select {
	case s.events <- ScanEvent{Path: ev.Name, Kind: kind}:
	default:
		log.Printf("watcher: event queue full, dropping event for %s", ev.Name)
	}
}

func (s *Scanner) matches(path string) bool {
	base := filepath.Base(path)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return false
	}
	for _, pattern := range s.cfg.ExcludeGlobs {
		if matched, _ := doublestar.Match(pattern, base); matched {
			return false
		}
	}
	if len(s.cfg.IncludeGlobs) == 0 {
		return true
	}
	for _, pattern := range s.cfg.IncludeGlobs {
		if matched, _ := doublestar.Match(pattern, base); matched {
			return true
		}
	}
	return false
}

// ListDir enumerates path's regular files, for the initial/full directory
// scans the state machine runs alongside fsnotify.
func ListDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("list directory %s: %w", path, err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, filepath.Join(path, e.Name()))
	}
	return out, nil
}
