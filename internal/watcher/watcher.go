package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/rokbattles/mailcore/internal/config"
	"github.com/rokbattles/mailcore/internal/debug"
)

// fileState is a watched path's position in the per-file state machine:
// Unknown -> Observed -> Candidate -> Enqueued -> Processed, with Ignored
// and DeadLetter as terminal side exits. Unknown itself has no record; a
// path only gets a trackedFile once the scanner has seen it.
type fileState int

const (
	stateObserved fileState = iota
	stateCandidate
	stateEnqueued
	stateProcessed
	stateIgnored
	stateDeadLetter
)

type trackedFile struct {
	state       fileState
	mtimeMs     int64
	sig         FileSig
	attempts    uint32
	notBeforeMs int64
}

// Watcher drives the per-file state machine over a set of configured
// directories, uploading stable candidate files to an ingress endpoint and
// persisting the processed/upload-queue stores as it goes.
type Watcher struct {
	cfg      config.WatcherConfig
	storeCfg config.StoreConfig

	dirs     *DirectorySet
	scanner  *Scanner
	uploader *Uploader

	processedPath string
	queuePath     string

	mu      sync.Mutex
	files   map[string]*trackedFile
	hot     []string
	updates int

	processed *ProcessedStore
	queue     *UploadQueueStore
	lastFlush time.Time

	sem     *semaphore.Weighted
	uploads errgroup.Group
}

// New constructs a Watcher rooted at stateDir for its persistent stores,
// tracking directories configured in dirsPath, uploading to cfg.Upload's
// ingress endpoint.
func New(cfg *config.Config, stateDir, dirsPath string) (*Watcher, error) {
	scanner, err := NewScanner(cfg.Watcher)
	if err != nil {
		return nil, err
	}

	processedPath := filepath.Join(stateDir, cfg.Store.ProcessedFileName)
	queuePath := filepath.Join(stateDir, cfg.Store.UploadQueueName)

	processed, err := ReadProcessedStore(processedPath)
	if err != nil {
		return nil, err
	}
	queue, err := ReadUploadQueueStore(queuePath)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cfg:           cfg.Watcher,
		storeCfg:      cfg.Store,
		dirs:          NewDirectorySet(dirsPath),
		scanner:       scanner,
		uploader:      NewUploader(cfg.Upload.IngressURL, 30*time.Second),
		processedPath: processedPath,
		queuePath:     queuePath,
		files:         make(map[string]*trackedFile),
		processed:     processed,
		queue:         queue,
		lastFlush:     time.Now(),
		sem:           semaphore.NewWeighted(int64(maxInt(1, cfg.Watcher.UploadPrefetchTarget))),
	}

	for path, sig := range processed.Entries {
		w.files[path] = &trackedFile{state: stateProcessed, sig: sig}
	}
	for _, item := range queue.Items {
		notBefore := int64(0)
		if item.NotBeforeMs != nil {
			notBefore = int64(*item.NotBeforeMs)
		}
		w.files[item.Path] = &trackedFile{
			state:       stateEnqueued,
			sig:         item.Sig,
			attempts:    item.Attempts,
			notBeforeMs: notBefore,
		}
	}

	return w, nil
}

// Run drives the watcher loop until ctx is cancelled, then flushes
// persistent state and returns within cfg.ShutdownTimeout.
//
// Four independent cadences cohabit: configRefresh re-reads the configured
// directory set (bounding staleness of add_dir/remove_dir changes);
// contentRefresh lists each watched directory for new files, speeding up
// from DirRefreshIdle to DirRefreshBusy while it keeps finding work;
// fullRescan does the same listing plus a bounded revalidation pass over
// already-processed paths, to catch changes content-refresh's plain listing
// would miss (e.g. a file replaced at the same name+mtime second). hotRescan
// rechecks the most recently touched paths on a tighter interval so rapid
// follow-up writes settle faster than the general cadence would catch.
func (w *Watcher) Run(ctx context.Context) error {
	scanCtx, cancelScan := context.WithCancel(ctx)
	defer cancelScan()
	go w.scanner.Run(scanCtx)
	defer w.scanner.Close()

	idle := time.NewTicker(w.cfg.IdleSleep)
	defer idle.Stop()
	configRefresh := time.NewTicker(w.cfg.ConfigRefreshInterval)
	defer configRefresh.Stop()
	fullRescan := time.NewTicker(w.cfg.FullDirRefresh)
	defer fullRescan.Stop()
	hotRescan := time.NewTicker(w.cfg.HotRescanInterval)
	defer hotRescan.Stop()
	contentRefresh := time.NewTimer(w.cfg.DirRefreshIdle)
	defer contentRefresh.Stop()

	if err := w.refreshDirectories(); err != nil {
		debug.LogWatch("watcher: initial directory refresh failed: %v", err)
	}
	w.scanAll()

	for {
		select {
		case <-ctx.Done():
			return w.shutdown()

		case ev := <-w.scanner.Events():
			w.handleScanEvent(ev)
			w.drainEvents()

		case <-configRefresh.C:
			if err := w.refreshDirectories(); err != nil {
				debug.LogWatch("watcher: directory refresh failed: %v", err)
			}

		case <-contentRefresh.C:
			if w.scanDirectories() {
				contentRefresh.Reset(w.cfg.DirRefreshBusy)
			} else {
				contentRefresh.Reset(w.cfg.DirRefreshIdle)
			}

		case <-fullRescan.C:
			w.scanAll()

		case <-hotRescan.C:
			w.rescanHot()

		case <-idle.C:
			w.tick()
		}
	}
}

func (w *Watcher) drainEvents() {
	budget := w.cfg.FSEventBudgetPerTick
	for i := 0; i < budget; i++ {
		select {
		case ev := <-w.scanner.Events():
			w.handleScanEvent(ev)
		default:
			return
		}
	}
}

// shutdown waits for in-flight uploads to finish, bounded by
// cfg.ShutdownTimeout, then flushes persistent state.
func (w *Watcher) shutdown() error {
	done := make(chan struct{})
	go func() {
		_ = w.uploads.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(w.cfg.ShutdownTimeout):
		debug.LogWatch("watcher: shutdown timeout elapsed with uploads still in flight")
	}
	return w.flush(true)
}

// refreshDirectories reconciles the scanner's watch set with the configured
// directory list.
func (w *Watcher) refreshDirectories() error {
	dirs, err := w.dirs.List()
	if err != nil {
		return err
	}
	w.scanner.SetDirectories(dirs)
	return nil
}

// scanDirectories lists every configured directory and observes any path
// not yet tracked, catching files fsnotify missed. It reports whether any
// path changed state, the signal contentRefresh uses to speed up to the
// busy cadence.
func (w *Watcher) scanDirectories() bool {
	dirs, err := w.dirs.List()
	if err != nil {
		debug.LogWatch("watcher: content rescan failed to list directories: %v", err)
		return false
	}
	busy := false
	for _, dir := range dirs {
		paths, err := ListDir(dir)
		if err != nil {
			debug.LogWatch("watcher: content rescan failed to list %s: %v", dir, err)
			continue
		}
		for _, path := range paths {
			if w.observe(path) {
				busy = true
			}
		}
	}
	w.tick()
	return busy
}

// scanAll runs a content rescan plus a bounded revalidation pass over
// already-processed paths, catching changes a plain listing would miss.
func (w *Watcher) scanAll() {
	w.scanDirectories()
	w.validateProcessed()
}

// validateProcessed re-observes up to min(FullRefreshValidateRecent,
// FullRefreshValidateMaxPaths) already-processed paths so a full rescan
// notices files that changed without a corresponding directory listing.
func (w *Watcher) validateProcessed() {
	limit := w.cfg.FullRefreshValidateRecent
	if w.cfg.FullRefreshValidateMaxPaths < limit {
		limit = w.cfg.FullRefreshValidateMaxPaths
	}

	w.mu.Lock()
	paths := make([]string, 0, limit)
	for path := range w.processed.Entries {
		if len(paths) >= limit {
			break
		}
		paths = append(paths, path)
	}
	w.mu.Unlock()

	for _, path := range paths {
		w.observe(path)
	}
	w.tick()
}

// rescanHot rechecks a budgeted slice of the most recently touched paths,
// rotating them to the back of the hot list so every tracked hot path gets
// rechecked in turn.
func (w *Watcher) rescanHot() {
	w.mu.Lock()
	budget := w.cfg.HotRescanBudget
	if budget > len(w.hot) {
		budget = len(w.hot)
	}
	batch := append([]string(nil), w.hot[:budget]...)
	w.hot = append(w.hot[budget:], batch...)
	w.mu.Unlock()

	for _, path := range batch {
		w.observe(path)
	}
	w.tick()
}

// trackHot records path as recently touched, capping the tracked set at
// HotTrackedLimit by evicting the oldest entry.
func (w *Watcher) trackHot(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, p := range w.hot {
		if p == path {
			w.hot = append(w.hot[:i], w.hot[i+1:]...)
			break
		}
	}
	w.hot = append(w.hot, path)
	if over := len(w.hot) - w.cfg.HotTrackedLimit; over > 0 {
		w.hot = w.hot[over:]
	}
}

func (w *Watcher) handleScanEvent(ev ScanEvent) {
	switch ev.Kind {
	case ScanRemove:
		w.mu.Lock()
		delete(w.files, ev.Path)
		w.mu.Unlock()
	default:
		w.observe(ev.Path)
		w.trackHot(ev.Path)
	}
	w.tick()
}

// observe registers a newly-seen path, or re-enters a Processed path into
// Observed if its signature has changed on disk. It reports whether the
// path's state changed. The stability clock is seeded from the file's own
// mtime, not the moment the watcher happened to notice it, so a file that
// was already stable before the watcher started is immediately eligible.
func (w *Watcher) observe(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	sig := FileSigFor(info)
	mtimeMs := info.ModTime().UnixMilli()

	w.mu.Lock()
	defer w.mu.Unlock()

	tf, ok := w.files[path]
	if !ok {
		w.files[path] = &trackedFile{state: stateObserved, mtimeMs: mtimeMs}
		return true
	}
	if tf.state == stateProcessed && tf.sig != sig {
		tf.state = stateObserved
		tf.mtimeMs = mtimeMs
		return true
	}
	return false
}

// tick advances every tracked file through as much of the state machine as
// is currently possible, bounded by ScanBudgetPerTick.
func (w *Watcher) tick() {
	w.mu.Lock()
	candidates := make([]string, 0, len(w.files))
	for path, tf := range w.files {
		if tf.state == stateObserved || tf.state == stateCandidate || tf.state == stateEnqueued {
			candidates = append(candidates, path)
		}
	}
	w.mu.Unlock()

	budget := w.cfg.ScanBudgetPerTick
	for i, path := range candidates {
		if i >= budget {
			break
		}
		w.advance(path)
	}

	w.maybeFlush()
}

func (w *Watcher) advance(path string) {
	now := nowMs()

	w.mu.Lock()
	tf, ok := w.files[path]
	if !ok {
		w.mu.Unlock()
		return
	}
	state := tf.state
	mtime := tf.mtimeMs
	notBefore := tf.notBeforeMs
	w.mu.Unlock()

	switch state {
	case stateObserved:
		if now-mtime >= w.cfg.FileStableAge.Milliseconds() {
			w.mu.Lock()
			if tf, ok := w.files[path]; ok {
				tf.state = stateCandidate
			}
			w.mu.Unlock()
		}

	case stateCandidate:
		w.tryEnqueue(path)

	case stateEnqueued:
		if now < notBefore {
			return
		}
		w.tryUpload(path)
	}
}

// tryEnqueue reads path, runs the header pre-filter, and transitions to
// Enqueued or Ignored.
func (w *Watcher) tryEnqueue(path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.retryLater(path, w.cfg.FileRetryDelay)
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		w.retryLater(path, w.cfg.FileRetryDelay)
		return
	}

	sig := FileSigFor(info)
	if recheck, err := os.Stat(path); err == nil && FileSigFor(recheck) != sig {
		w.retryLater(path, w.cfg.FileChangedDelay)
		return
	}

	if !HasMailHeader(data) {
		w.mu.Lock()
		if tf, ok := w.files[path]; ok {
			tf.state = stateIgnored
		}
		w.mu.Unlock()
		debug.LogWatch("watcher: ignoring %s, header check failed", path)
		return
	}

	w.mu.Lock()
	if tf, ok := w.files[path]; ok {
		tf.state = stateEnqueued
		tf.sig = sig
	}
	w.mu.Unlock()
}

func (w *Watcher) retryLater(path string, delay time.Duration) {
	w.mu.Lock()
	if tf, ok := w.files[path]; ok {
		tf.notBeforeMs = nowMs() + delay.Milliseconds()
	}
	w.mu.Unlock()
}

// tryUpload attempts the upload for an Enqueued path if the upload
// concurrency semaphore admits it, advancing to Processed, DeadLetter, or
// back to Enqueued with a backoff.
func (w *Watcher) tryUpload(path string) {
	if !w.sem.TryAcquire(1) {
		return
	}
	w.uploads.Go(func() error {
		defer w.sem.Release(1)
		w.upload(path)
		return nil
	})
}

func (w *Watcher) upload(path string) {
	w.mu.Lock()
	tf, ok := w.files[path]
	if !ok {
		w.mu.Unlock()
		return
	}
	sig := tf.sig
	attempts := tf.attempts
	w.mu.Unlock()

	fileName, ok := FileNameForUpload(path)
	if !ok {
		w.deadLetter(path, "empty filename")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		w.scheduleRetry(path, sig, attempts, 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, err := w.uploader.PostFile(ctx, fileName, data)
	if err == nil {
		debug.LogWatch("watcher: %s", status.LogMessage(fileName))
		w.markProcessed(path, sig)
		return
	}

	uploadErr, _ := err.(*UploadError)
	statusCode := 0
	retryAfter := time.Duration(0)
	if uploadErr != nil {
		statusCode = uploadErr.StatusCode
		retryAfter = uploadErr.RetryAfter
	}
	if !IsRetryableStatus(statusCode) {
		w.deadLetter(path, err.Error())
		return
	}
	w.scheduleRetry(path, sig, attempts, retryAfter)
}

func (w *Watcher) scheduleRetry(path string, sig FileSig, attempts uint32, retryAfter time.Duration) {
	backoff := Backoff(attempts)
	if retryAfter > 0 {
		backoff = retryAfter
	}

	w.mu.Lock()
	if tf, ok := w.files[path]; ok {
		tf.sig = sig
		tf.attempts = attempts + 1
		tf.notBeforeMs = nowMs() + backoff.Milliseconds()
		tf.state = stateEnqueued
	}
	w.updates++
	w.mu.Unlock()
}

func (w *Watcher) deadLetter(path, reason string) {
	debug.LogWatch("watcher: dead-lettering %s: %s", path, reason)
	w.mu.Lock()
	if tf, ok := w.files[path]; ok {
		tf.state = stateDeadLetter
	}
	w.updates++
	w.mu.Unlock()
}

func (w *Watcher) markProcessed(path string, sig FileSig) {
	w.mu.Lock()
	if tf, ok := w.files[path]; ok {
		tf.state = stateProcessed
		tf.sig = sig
		tf.attempts = 0
		tf.notBeforeMs = 0
	}
	w.processed.Entries[path] = sig
	w.updates++
	w.mu.Unlock()
	w.trackHot(path)
}

// maybeFlush persists the processed store and upload queue once the
// configured update count or interval threshold is reached.
func (w *Watcher) maybeFlush() {
	w.mu.Lock()
	due := w.updates >= w.storeCfg.FlushEveryUpdates || time.Since(w.lastFlush) >= w.storeCfg.FlushInterval
	w.mu.Unlock()
	if due {
		_ = w.flush(false)
	}
}

func (w *Watcher) flush(final bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	queue := &UploadQueueStore{Version: w.queue.Version}
	for path, tf := range w.files {
		if tf.state != stateEnqueued {
			continue
		}
		notBefore := tf.notBeforeMs
		queue.Items = append(queue.Items, QueuedUpload{
			Path:        path,
			Sig:         tf.sig,
			Attempts:    tf.attempts,
			NotBeforeMs: uint64Ptr(notBefore),
		})
	}
	w.queue = queue

	if err := WriteProcessedStore(w.processedPath, w.processed); err != nil {
		return err
	}
	if err := WriteUploadQueueStore(w.queuePath, w.queue); err != nil {
		return err
	}
	w.updates = 0
	w.lastFlush = time.Now()
	if final {
		debug.LogWatch("watcher: final flush complete")
	}
	return nil
}

// ListDirs returns the currently configured watch directories.
func (w *Watcher) ListDirs() ([]string, error) {
	return w.dirs.List()
}

// AddDir adds directories to the configured watch set.
func (w *Watcher) AddDir(paths []string) ([]string, error) {
	dirs, err := w.dirs.Add(paths)
	if err != nil {
		return nil, err
	}
	w.scanner.SetDirectories(dirs)
	return dirs, nil
}

// RemoveDir removes a directory from the configured watch set.
func (w *Watcher) RemoveDir(path string) ([]string, error) {
	dirs, err := w.dirs.Remove(path)
	if err != nil {
		return nil, err
	}
	w.scanner.SetDirectories(dirs)
	return dirs, nil
}

// ReprocessAll deletes the processed store so the next scan treats every
// tracked file as new. The upload queue is left intact.
func (w *Watcher) ReprocessAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := DeleteProcessedStore(w.processedPath); err != nil {
		return err
	}
	w.processed = NewProcessedStore()
	for path, tf := range w.files {
		if tf.state == stateProcessed {
			tf.state = stateObserved
			if info, err := os.Stat(path); err == nil {
				tf.mtimeMs = info.ModTime().UnixMilli()
			}
		}
	}
	return nil
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

func uint64Ptr(v int64) *uint64 {
	if v <= 0 {
		return nil
	}
	u := uint64(v)
	return &u
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
