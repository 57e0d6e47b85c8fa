package model

// ContextSession groups records by originating project directory and carries
// the signals used to estimate the current conversation's context size.
// CacheReadTokens is the most recent non-zero cache_read value seen across
// the group (last write wins by timestamp), not a sum. InputTokens is a plain
// sum, used only as a fallback when no cache reads were observed.
type ContextSession struct {
	SessionID       string
	CacheReadTokens int64
	InputTokens     int64
}

// ContextTokens returns the best context-size estimate: the latest cache-read
// figure, or the summed input tokens when none was seen.
func (c ContextSession) ContextTokens() int64 {
	if c.CacheReadTokens > 0 {
		return c.CacheReadTokens
	}
	return c.InputTokens
}
