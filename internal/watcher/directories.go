package watcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
)

// DirectorySet persists the set of directories the watcher is configured
// to scan. It is the app-facing configuration surface: ListDirs, AddDir,
// RemoveDir, and ReprocessAll all operate on an instance of this type.
type DirectorySet struct {
	path string
	mu   sync.Mutex
}

// NewDirectorySet returns a DirectorySet backed by the JSON file at path.
func NewDirectorySet(path string) *DirectorySet {
	return &DirectorySet{path: path}
}

// List returns the configured directories, normalized (trimmed, deduped,
// sorted) as they were when last written.
func (d *DirectorySet) List() ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.read()
}

// Add normalizes and merges paths into the configured set, persisting and
// returning the updated list.
func (d *DirectorySet) Add(paths []string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, err := d.read()
	if err != nil {
		return nil, err
	}
	set := toSet(current)
	for _, p := range paths {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	next := fromSet(set)
	if err := d.write(next); err != nil {
		return nil, err
	}
	return next, nil
}

// Remove drops path from the configured set, persisting and returning the
// updated list.
func (d *DirectorySet) Remove(path string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, err := d.read()
	if err != nil {
		return nil, err
	}
	next := make([]string, 0, len(current))
	for _, p := range current {
		if p != path {
			next = append(next, p)
		}
	}
	if err := d.write(next); err != nil {
		return nil, err
	}
	return next, nil
}

func (d *DirectorySet) read() ([]string, error) {
	data, err := os.ReadFile(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read directory list: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var dirs []string
	if err := json.Unmarshal(data, &dirs); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", d.path, err)
	}
	return dirs, nil
}

func (d *DirectorySet) write(dirs []string) error {
	buf, err := json.MarshalIndent(dirs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal directory list: %w", err)
	}
	return os.WriteFile(d.path, buf, 0o644)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

func fromSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
