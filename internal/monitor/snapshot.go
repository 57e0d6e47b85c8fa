// Package monitor runs one refresh cycle of the dashboard: load records,
// window them, derive burn rate and projection for the active block, resolve
// the working directory's context session, and advance the high-water mark.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/theirongolddev/ccpulse/internal/blocks"
	"github.com/theirongolddev/ccpulse/internal/config"
	"github.com/theirongolddev/ccpulse/internal/gitinfo"
	"github.com/theirongolddev/ccpulse/internal/model"
	"github.com/theirongolddev/ccpulse/internal/pipeline"
	"github.com/theirongolddev/ccpulse/internal/resolver"
	"github.com/theirongolddev/ccpulse/internal/store"
)

// Options configures the collection cycle. All fields are read-only during
// a cycle.
type Options struct {
	Roots         []string
	Prefs         config.Preferences
	HighWaterPath string
	WorkDir       string
	Git           gitinfo.Probe
	Logger        *log.Logger
}

// State is the only mutable data carried between cycles: the high-water
// mark, loaded once at startup and written back by the single loop owner.
type State struct {
	HighWater int64
	Loaded    bool
}

// Snapshot is the complete, immutable result of one refresh cycle. Absent
// computations (no active block, no burn rate, no matching context session)
// are nil, and the presentation layer renders a neutral placeholder.
type Snapshot struct {
	At     time.Time
	Blocks []model.SessionBlock

	Active     *model.SessionBlock
	Burn       *model.BurnRate
	Projection *model.ProjectedUsage
	Context    *model.ContextSession

	Branch string

	RecordCount int
	ParsedFiles int
	ParseErrors int
	FileErrors  int

	HighWater      int64
	EffectiveLimit int64
}

// Collect performs one full cycle. Sub-step failures are logged and leave
// their snapshot field neutral; a cycle never fails as a whole. The record
// load and git probe are independent reads and run concurrently.
func Collect(ctx context.Context, opts Options, st State) (Snapshot, State) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	now := time.Now()
	window := opts.Prefs.Window()

	if !st.Loaded {
		hwm, err := store.LoadHighWater(opts.HighWaterPath)
		if err != nil {
			logger.Warn("high-water mark unreadable, starting at 0", "err", err)
		}
		st.HighWater = hwm
		st.Loaded = true
	}

	var (
		wg     sync.WaitGroup
		loaded *pipeline.LoadResult
		branch string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		cutoff := now.Add(-pipeline.DefaultFileCutoff)
		loaded = pipeline.Load(opts.Roots, cutoff, nil)
	}()
	go func() {
		defer wg.Done()
		branch = opts.Git.Branch(ctx, opts.WorkDir)
	}()
	wg.Wait()

	for _, err := range loaded.ScanErrors {
		logger.Warn("scanning usage logs", "err", err)
	}
	if loaded.FileErrors > 0 {
		logger.Warn("unreadable session files skipped", "count", loaded.FileErrors)
	}
	if loaded.ParseErrors > 0 {
		logger.Debug("malformed log lines skipped", "count", loaded.ParseErrors)
	}

	snap := Snapshot{
		At:          now,
		Branch:      branch,
		RecordCount: len(loaded.Records),
		ParsedFiles: loaded.ParsedFiles,
		ParseErrors: loaded.ParseErrors,
		FileErrors:  loaded.FileErrors,
	}

	snap.Blocks = blocks.IdentifySessionBlocks(loaded.Records, window, now)
	snap.Active = blocks.ActiveBlock(snap.Blocks)
	if snap.Active != nil {
		snap.Burn = blocks.CalculateBurnRate(*snap.Active)
		snap.Projection = blocks.ProjectUsage(*snap.Active, now)
	}

	sessions := resolver.BuildContextSessions(loaded.Records)
	snap.Context = resolver.FindContextSession(sessions, opts.WorkDir)

	hwm, err := store.Advance(opts.HighWaterPath, st.HighWater, blocks.MaxBlockTokens(snap.Blocks))
	if err != nil {
		// Best-effort cache; the raised value still applies this run.
		logger.Warn("saving high-water mark", "err", err)
	}
	st.HighWater = hwm

	snap.HighWater = hwm
	snap.EffectiveLimit = opts.Prefs.TokenLimit
	if hwm > snap.EffectiveLimit {
		snap.EffectiveLimit = hwm
	}

	return snap, st
}
