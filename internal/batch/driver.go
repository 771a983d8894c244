// Package batch implements the directory decoding driver: a bounded
// worker pool that runs the dispatcher against every eligible file in an
// input directory and aggregates the results.
package batch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/rokbattles/mailcore/internal/dispatch"
)

// Job describes one directory-processing request.
type Job struct {
	InputDir    string
	OutputDir   string
	RawOnly     bool
	Concurrency int
}

// Summary aggregates the outcome of a directory run.
type Summary struct {
	Processed int
	Skipped   int
	Failed    int
}

type item struct {
	path   string
	format dispatch.Format
}

// Run processes every eligible file under job.InputDir, fanning work out to
// a pool of job.Concurrency workers (falling back to 1 if non-positive).
// A failing item never stops the others. The returned error is non-nil when
// the directory itself couldn't be read or created, or, as one aggregate
// error carrying the failure count, when any item failed.
func Run(ctx context.Context, job Job) (Summary, error) {
	items, skipped, err := collectItems(job.InputDir)
	if err != nil {
		return Summary{}, fmt.Errorf("read input directory: %w", err)
	}

	summary := Summary{Skipped: skipped}
	if len(items) == 0 {
		return summary, nil
	}

	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create output directory: %w", err)
	}

	concurrency := job.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(concurrency))

	results := make(chan bool, len(items))

	for _, it := range items {
		it := it
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			ok := processItem(it, job.OutputDir, job.RawOnly)
			results <- ok
			return nil
		})
	}

	// Wait does not surface per-item failures; those are reported via the
	// results channel so a single bad mail never aborts the whole batch.
	waitErr := g.Wait()
	close(results)

	for ok := range results {
		if ok {
			summary.Processed++
		} else {
			summary.Failed++
		}
	}

	if waitErr != nil && summary.Failed == 0 {
		return summary, waitErr
	}
	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d mail(s) failed to process", summary.Failed)
	}
	return summary, nil
}

func processItem(it item, outputDir string, rawOnly bool) bool {
	data, err := os.ReadFile(it.path)
	if err != nil {
		log.Printf("batch: failed to read %s: %v", it.path, err)
		return false
	}
	if _, err := dispatch.Process(it.path, data, outputDir, rawOnly, it.format); err != nil {
		log.Printf("batch: failed to process %s: %v", it.path, err)
		return false
	}
	return true
}

func collectItems(inputDir string) ([]item, int, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, 0, err
	}

	var items []item
	skipped := 0
	for _, entry := range entries {
		if entry.IsDir() {
			skipped++
			continue
		}
		path := filepath.Join(inputDir, entry.Name())
		format, ok := classify(entry.Name())
		if !ok {
			skipped++
			continue
		}
		items = append(items, item{path: path, format: format})
	}
	return items, skipped, nil
}

// classify reports the input format implied by name, or false if name
// should be skipped outright (a prior dispatcher output file).
func classify(name string) (dispatch.Format, bool) {
	if dispatch.IsProcessedFilename(name) {
		return 0, false
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".json" {
		return dispatch.JSON, true
	}
	return dispatch.Binary, true
}
