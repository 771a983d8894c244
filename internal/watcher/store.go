package watcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// FileSig is a cheap change-detection signature for a file: its size and
// modification time in milliseconds since the Unix epoch.
type FileSig struct {
	Size     uint64 `json:"size"`
	Modified uint64 `json:"modified"`
}

// ProcessedStore maps a watched file's path to the signature it had when
// last successfully uploaded.
type ProcessedStore struct {
	Entries map[string]FileSig `json:"entries"`
}

// NewProcessedStore returns an empty processed store.
func NewProcessedStore() *ProcessedStore {
	return &ProcessedStore{Entries: make(map[string]FileSig)}
}

// QueuedUpload is one pending or in-flight upload attempt.
type QueuedUpload struct {
	Path        string  `json:"path"`
	Sig         FileSig `json:"sig"`
	Attempts    uint32  `json:"attempts"`
	NotBeforeMs *uint64 `json:"not_before_ms"`
}

// UploadQueueStore is the versioned list of queued uploads persisted to
// disk between watcher runs.
type UploadQueueStore struct {
	Version uint32         `json:"version"`
	Items   []QueuedUpload `json:"items"`
}

// NewUploadQueueStore returns an empty, version-1 upload queue store.
func NewUploadQueueStore() *UploadQueueStore {
	return &UploadQueueStore{Version: 1, Items: nil}
}

// FileSigFor computes a FileSig from an os.FileInfo.
func FileSigFor(info fs.FileInfo) FileSig {
	return FileSig{
		Size:     uint64(info.Size()),
		Modified: uint64(info.ModTime().UnixMilli()),
	}
}

// ReadProcessedStore loads the processed store from path. A missing or
// empty file yields an empty store. A payload that is a bare JSON array of
// strings is the legacy watch-directory list format; that case yields an
// empty processed store, since the directory list belongs to a separate
// config (see DirectorySet), not the processed-file map.
func ReadProcessedStore(path string) (*ProcessedStore, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewProcessedStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read processed store: %w", err)
	}
	if len(data) == 0 {
		return NewProcessedStore(), nil
	}

	var probe json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	if len(probe) > 0 && probe[0] == '[' {
		return NewProcessedStore(), nil
	}

	store := NewProcessedStore()
	if err := json.Unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	if store.Entries == nil {
		store.Entries = make(map[string]FileSig)
	}
	return store, nil
}

// WriteProcessedStore atomically writes store to path.
func WriteProcessedStore(path string, store *ProcessedStore) error {
	buf, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("marshal processed store: %w", err)
	}
	return atomicWrite(path, buf)
}

// ReadUploadQueueStore loads the upload queue store from path. A missing or
// empty file yields an empty, version-1 store.
func ReadUploadQueueStore(path string) (*UploadQueueStore, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewUploadQueueStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read upload queue: %w", err)
	}
	if len(data) == 0 {
		return NewUploadQueueStore(), nil
	}

	store := NewUploadQueueStore()
	if err := json.Unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return store, nil
}

// WriteUploadQueueStore atomically writes store to path.
func WriteUploadQueueStore(path string, store *UploadQueueStore) error {
	buf, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("marshal upload queue: %w", err)
	}
	return atomicWrite(path, buf)
}

// atomicWrite writes data to a temp file next to path and renames it into
// place, so readers never observe a torn document. On platforms where
// rename cannot replace an existing file (historically Windows), the
// destination is unlinked and the rename retried.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			_ = os.Remove(path)
			if err := os.Rename(tmpPath, path); err != nil {
				return fmt.Errorf("replace %s: %w", path, err)
			}
			return nil
		}
		return fmt.Errorf("rename %s -> %s: %w", tmpPath, path, err)
	}
	return nil
}

// DeleteProcessedStore removes the processed store file, if present. Used
// by the "reprocess all" command: deleting the store makes every tracked
// file look new on the watcher's next scan.
func DeleteProcessedStore(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// DeleteUploadQueueStore removes the upload queue store file, if present.
func DeleteUploadQueueStore(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
