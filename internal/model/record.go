// Package model defines domain types for ccpulse usage records and session windows.
package model

import "time"

// UsageRecord is one deduplicated API usage event parsed from a JSONL log line.
// Records are immutable once loaded; the windowing engine only reads them.
type UsageRecord struct {
	Timestamp           time.Time
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
	CostUSD             float64
	Model               string

	// SessionID is the raw project directory name the record's file lives
	// under. The context resolver matches working-directory names against it.
	SessionID string

	MessageID string
	RequestID string
}

// IdentityKey returns the messageId:requestId dedup key. A record missing
// either part has no identity and is never a duplicate of anything.
func (r UsageRecord) IdentityKey() (string, bool) {
	if r.MessageID == "" || r.RequestID == "" {
		return "", false
	}
	return r.MessageID + ":" + r.RequestID, true
}

// TotalTokens sums all four token kinds.
func (r UsageRecord) TotalTokens() int64 {
	return r.InputTokens + r.OutputTokens + r.CacheCreationTokens + r.CacheReadTokens
}

// TokenCounts holds aggregated token counts by kind.
type TokenCounts struct {
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
}

// Add accumulates a record's counts.
func (tc *TokenCounts) Add(r UsageRecord) {
	tc.InputTokens += r.InputTokens
	tc.OutputTokens += r.OutputTokens
	tc.CacheCreationTokens += r.CacheCreationTokens
	tc.CacheReadTokens += r.CacheReadTokens
}

// Total returns the sum of all four token kinds.
func (tc TokenCounts) Total() int64 {
	return tc.InputTokens + tc.OutputTokens + tc.CacheCreationTokens + tc.CacheReadTokens
}

// NonCache returns input+output tokens only. Used for the burn-rate
// indicator thresholds, which ignore cache traffic.
func (tc TokenCounts) NonCache() int64 {
	return tc.InputTokens + tc.OutputTokens
}
