// Package config holds the in-memory configuration trees consumed by the
// codec, extraction, dispatch, batch, and watcher packages. Loading
// configuration from files or environment variables is the responsibility
// of the embedding host; this package only supplies struct definitions and
// a Default() constructor matching the glossary defaults.
package config

import "time"

// Config is the top-level configuration tree a host populates and passes
// to the dispatcher, batch driver, and watcher.
type Config struct {
	Store   StoreConfig
	Watcher WatcherConfig
	Batch   BatchConfig
	Upload  UploadConfig
}

// StoreConfig controls the names and flush cadence of the watcher's
// persistent processed-file and upload-queue stores.
type StoreConfig struct {
	ProcessedFileName  string
	UploadQueueName    string
	FlushEveryUpdates  int
	FlushInterval      time.Duration
	QueueFlushEvery    int
	QueueFlushInterval time.Duration
}

// WatcherConfig controls the directory scan cadence, stability window, and
// event-channel sizing for the desktop file watcher.
type WatcherConfig struct {
	FileStableAge        time.Duration
	FileRetryDelay       time.Duration
	FileChangedDelay     time.Duration
	DirRefreshIdle       time.Duration
	DirRefreshBusy       time.Duration
	FullDirRefresh       time.Duration
	ScanBudgetPerTick    int
	IdleSleep            time.Duration
	FSEventBudgetPerTick int
	FSEventQueueCapacity int
	ShutdownTimeout      time.Duration
	IncludeGlobs         []string
	ExcludeGlobs         []string

	// HotTrackedLimit caps how many recently-changed paths are tracked for
	// the accelerated hot-rescan pass below.
	HotTrackedLimit int
	// HotRescanInterval is how often tracked hot paths are rechecked
	// outside the normal idle/busy refresh cadence.
	HotRescanInterval time.Duration
	// HotRescanBudget caps how many hot paths are rechecked per tick.
	HotRescanBudget int
	// FullRefreshValidateRecent caps how many recently-seen ids a full
	// rescan revalidates against the filesystem.
	FullRefreshValidateRecent int
	// FullRefreshValidateMaxPaths caps the per-tick work a full rescan's
	// revalidation pass may perform.
	FullRefreshValidateMaxPaths int
	// UploadPrefetchTarget is how many Enqueued entries the upload loop
	// tries to keep ready ahead of the worker pool draining them.
	UploadPrefetchTarget int
	// ConfigRefreshInterval bounds how stale the watcher's view of the
	// configured directory set may be before it re-reads it.
	ConfigRefreshInterval time.Duration
}

// BatchConfig controls the bounded worker pool used by the directory
// decoding driver.
type BatchConfig struct {
	Concurrency int
}

// UploadConfig controls the ingress endpoint and retry policy used by the
// watcher's upload queue.
type UploadConfig struct {
	IngressURL    string
	MaxRetryDelay time.Duration
	MinRetryDelay time.Duration
	MaxAttempts   int
}

// Default returns a Config populated with the glossary defaults. It does
// not read any file or environment variable; the host is expected to
// override fields as needed before passing the Config to the watcher or
// batch driver.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			ProcessedFileName:  "processed-v3.json",
			UploadQueueName:    "upload-queue.json",
			FlushEveryUpdates:  20000,
			FlushInterval:      300 * time.Second,
			QueueFlushEvery:    64,
			QueueFlushInterval: 2 * time.Second,
		},
		Watcher: WatcherConfig{
			FileStableAge:        1500 * time.Millisecond,
			FileRetryDelay:       750 * time.Millisecond,
			FileChangedDelay:     1000 * time.Millisecond,
			DirRefreshIdle:       5 * time.Second,
			DirRefreshBusy:       60 * time.Second,
			FullDirRefresh:       180 * time.Second,
			ScanBudgetPerTick:    256,
			IdleSleep:            750 * time.Millisecond,
			FSEventBudgetPerTick: 512,
			FSEventQueueCapacity: 4096,
			ShutdownTimeout:      3 * time.Second,
			IncludeGlobs:         []string{"**/*"},
			ExcludeGlobs:         nil,

			HotTrackedLimit:             4096,
			HotRescanInterval:           750 * time.Millisecond,
			HotRescanBudget:             64,
			FullRefreshValidateRecent:   5000,
			FullRefreshValidateMaxPaths: 512,
			UploadPrefetchTarget:        4,
			ConfigRefreshInterval:       2 * time.Second,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
		Upload: UploadConfig{
			IngressURL:    "https://ingress.rokbattles.com/v2/upload",
			MinRetryDelay: 2 * time.Second,
			MaxRetryDelay: 300 * time.Second,
			// The source has no explicit maximum; 50 is a conservative cap
			// beyond which an entry is dead-lettered instead of retried forever.
			MaxAttempts: 50,
		},
	}
}
