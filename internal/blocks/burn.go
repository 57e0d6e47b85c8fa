package blocks

import (
	"math"
	"time"

	"github.com/theirongolddev/ccpulse/internal/model"
)

// CalculateBurnRate derives per-minute consumption velocity from a block.
// Elapsed time is measured strictly between the block's first and last
// record, not its nominal span, so this is an all-history average rather
// than a sliding rate. Returns nil for gap blocks, empty blocks, and
// single-record blocks (zero elapsed duration).
func CalculateBurnRate(b model.SessionBlock) *model.BurnRate {
	if b.IsGap || len(b.Entries) == 0 {
		return nil
	}

	first := b.Entries[0].Timestamp
	last := b.Entries[len(b.Entries)-1].Timestamp
	elapsed := last.Sub(first).Minutes()
	if elapsed <= 0 {
		return nil
	}

	return &model.BurnRate{
		TokensPerMinute:             float64(b.TokenCounts.Total()) / elapsed,
		TokensPerMinuteForIndicator: float64(b.TokenCounts.NonCache()) / elapsed,
		CostPerHour:                 b.CostUSD / elapsed * 60,
	}
}

// ProjectUsage extrapolates an active block's totals linearly to its nominal
// end. Returns nil for inactive or gap blocks and for blocks without a
// computable burn rate. Remaining minutes are clamped at zero: the active
// check should prevent a past end time, but the clamp holds regardless.
func ProjectUsage(b model.SessionBlock, now time.Time) *model.ProjectedUsage {
	if !b.IsActive || b.IsGap {
		return nil
	}
	rate := CalculateBurnRate(b)
	if rate == nil {
		return nil
	}

	remaining := b.EndTime.Sub(now).Minutes()
	if remaining < 0 {
		remaining = 0
	}

	return &model.ProjectedUsage{
		TotalTokens:      b.TokenCounts.Total() + int64(math.Round(rate.TokensPerMinute*remaining)),
		TotalCost:        b.CostUSD + rate.CostPerHour/60*remaining,
		RemainingMinutes: remaining,
	}
}
