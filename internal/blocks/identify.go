// Package blocks implements the session windowing engine: partitioning
// timestamped usage records into fixed-duration billing windows, detecting
// gaps, and deriving burn rates and projections for the active window.
package blocks

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/theirongolddev/ccpulse/internal/model"
)

// DefaultWindow is the nominal billing window duration.
const DefaultWindow = 5 * time.Hour

// IdentifySessionBlocks partitions records into non-overlapping session
// blocks, inserting synthetic gap blocks where the silence between two
// consecutive records strictly exceeds the window duration.
//
// A block is closed when the next record is more than window past the
// block's floored start OR more than window past the block's last record.
// Boundary-equal distances do not split (strict inequality). Block starts
// are floored to the start of their UTC hour; this matches the upstream
// billing convention. now is only used to flag the active block, so two
// runs with the same input and now yield identical output.
func IdentifySessionBlocks(records []model.UsageRecord, window time.Duration, now time.Time) []model.SessionBlock {
	if len(records) == 0 {
		return nil
	}
	if window <= 0 {
		window = DefaultWindow
	}

	sorted := make([]model.UsageRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var out []model.SessionBlock
	curStart := floorToHour(sorted[0].Timestamp)
	open := 0 // index of the open block's first record

	for i := 1; i < len(sorted); i++ {
		rec := sorted[i]
		last := sorted[i-1]
		sinceStart := rec.Timestamp.Sub(curStart)
		sinceLast := rec.Timestamp.Sub(last.Timestamp)

		if sinceStart > window || sinceLast > window {
			out = append(out, finalizeBlock(curStart, window, sorted[open:i], now))
			if sinceLast > window {
				if gap, ok := gapBlock(last.Timestamp, rec.Timestamp, window); ok {
					out = append(out, gap)
				}
			}
			curStart = floorToHour(rec.Timestamp)
			open = i
		}
	}

	out = append(out, finalizeBlock(curStart, window, sorted[open:], now))
	return out
}

// floorToHour truncates t to the start of its UTC hour.
func floorToHour(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), 0, 0, 0, time.UTC)
}

// finalizeBlock aggregates an entry run into an immutable SessionBlock.
func finalizeBlock(start time.Time, window time.Duration, entries []model.UsageRecord, now time.Time) model.SessionBlock {
	b := model.SessionBlock{
		ID:        start.UTC().Format(time.RFC3339),
		StartTime: start,
		EndTime:   start.Add(window),
		Entries:   append([]model.UsageRecord(nil), entries...),
	}

	var labels []string
	for _, rec := range b.Entries {
		b.TokenCounts.Add(rec)
		b.CostUSD += rec.CostUSD
		if rec.Model != "" {
			labels = append(labels, rec.Model)
		}
	}
	b.Models = lo.Uniq(labels)

	b.ActualEndTime = start
	if n := len(b.Entries); n > 0 {
		b.ActualEndTime = b.Entries[n-1].Timestamp
	}

	b.IsActive = now.Sub(b.ActualEndTime) < window && now.Before(b.EndTime)
	return b
}

// gapBlock builds a synthetic silence marker spanning from one window past
// the previous record to the next record. Returns false when the span would
// be empty or inverted, which can only happen at the exact boundary.
func gapBlock(lastSeen, next time.Time, window time.Duration) (model.SessionBlock, bool) {
	start := lastSeen.Add(window)
	if !next.After(start) {
		return model.SessionBlock{}, false
	}
	return model.SessionBlock{
		ID:            "gap-" + start.UTC().Format(time.RFC3339),
		StartTime:     start,
		EndTime:       next,
		ActualEndTime: start,
		IsGap:         true,
	}, true
}

// ActiveBlock returns the currently active non-gap block, or nil. At most
// one block can be active per windowing pass.
func ActiveBlock(all []model.SessionBlock) *model.SessionBlock {
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].IsActive && !all[i].IsGap {
			return &all[i]
		}
	}
	return nil
}

// MaxBlockTokens returns the largest token total across all non-gap blocks.
// Feeds the high-water mark used to raise the effective display limit.
func MaxBlockTokens(all []model.SessionBlock) int64 {
	var best int64
	for _, b := range all {
		if b.IsGap {
			continue
		}
		if t := b.TokenCounts.Total(); t > best {
			best = t
		}
	}
	return best
}
