package source

// RawEntry is a single line in a Claude Code JSONL session file, reduced to
// the fields the monitor consumes.
type RawEntry struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
	CostUSD   *float64    `json:"costUSD,omitempty"`
	Message   *RawMessage `json:"message,omitempty"`
}

// RawMessage is the assistant's message envelope.
type RawMessage struct {
	ID    string    `json:"id"`
	Model string    `json:"model"`
	Usage *RawUsage `json:"usage,omitempty"`
}

// RawUsage holds token counts from the API response. The cache fields are
// optional and default to zero.
type RawUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
}

// DiscoveredFile is a JSONL file found during directory scanning.
type DiscoveredFile struct {
	Path       string
	Project    string // decoded display name (e.g. "gitlore")
	ProjectDir string // raw directory name, as encoded by Claude Code
	SessionID  string // extracted from filename
}
