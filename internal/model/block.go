package model

import "time"

// SessionBlock is one billing window (nominally 5 hours) of usage records,
// or a synthetic gap marker between two windows. Blocks are recomputed from
// scratch on every refresh cycle and never mutated afterwards.
type SessionBlock struct {
	ID            string
	StartTime     time.Time // floored to the start of its UTC hour
	EndTime       time.Time // StartTime + window duration
	ActualEndTime time.Time // timestamp of the last record; StartTime for gaps
	IsActive      bool
	IsGap         bool
	Entries       []UsageRecord
	TokenCounts   TokenCounts
	CostUSD       float64
	Models        []string // distinct model labels, insertion order
}

// DurationElapsed returns how much of the nominal window has passed at now,
// clamped to [0, window].
func (b SessionBlock) DurationElapsed(now time.Time) time.Duration {
	if now.Before(b.StartTime) {
		return 0
	}
	d := now.Sub(b.StartTime)
	if span := b.EndTime.Sub(b.StartTime); d > span {
		return span
	}
	return d
}

// BurnRate is the consumption velocity observed across a block's records.
type BurnRate struct {
	TokensPerMinute             float64
	TokensPerMinuteForIndicator float64 // input+output only, for UI thresholds
	CostPerHour                 float64
}

// ProjectedUsage extrapolates an active block's totals linearly to its
// nominal end time.
type ProjectedUsage struct {
	TotalTokens      int64
	TotalCost        float64
	RemainingMinutes float64
}
