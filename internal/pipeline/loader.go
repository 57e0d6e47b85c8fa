// Package pipeline orchestrates session file loading and record deduplication.
package pipeline

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/theirongolddev/ccpulse/internal/model"
	"github.com/theirongolddev/ccpulse/internal/source"
)

// DefaultFileCutoff is how far back a file's mtime may be for it to be
// parsed. Older files cannot contribute records to any block still shown
// on the dashboard.
const DefaultFileCutoff = 24 * time.Hour

// LoadResult holds the output of the full record loading pipeline.
// Records are deduplicated across files and sorted ascending by timestamp.
type LoadResult struct {
	Records      []model.UsageRecord
	TotalFiles   int
	ParsedFiles  int
	ParseErrors  int
	FileErrors   int
	ScanErrors   []error
	ProjectCount int
	Duplicates   int
}

// ProgressFunc is called during loading to report progress.
type ProgressFunc func(current, total int)

// Load discovers and parses session files from the given roots using a
// bounded worker pool, then deduplicates by the messageId:requestId pair.
// When the same identity appears more than once, the later-parsed entry
// wins (files report the final billed usage last).
func Load(roots []string, cutoff time.Time, progressFn ProgressFunc) *LoadResult {
	files, scanErrs := source.ScanRoots(roots, cutoff)

	result := &LoadResult{
		TotalFiles:   len(files),
		ScanErrors:   scanErrs,
		ProjectCount: source.CountProjects(files),
	}
	if len(files) == 0 {
		return result
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()

	// Collect with cross-file dedup. Identity can repeat across files when a
	// session is resumed or compacted into a new file.
	seen := make(map[string]int) // identity key -> index in result.Records
	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors

		for _, rec := range pr.Records {
			key, ok := rec.IdentityKey()
			if !ok {
				result.Records = append(result.Records, rec)
				continue
			}
			if i, dup := seen[key]; dup {
				result.Records[i] = rec
				result.Duplicates++
				continue
			}
			seen[key] = len(result.Records)
			result.Records = append(result.Records, rec)
		}
	}

	// Stable so equal timestamps keep load order and repeated runs over the
	// same input produce identical output.
	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].Timestamp.Before(result.Records[j].Timestamp)
	})

	return result
}
