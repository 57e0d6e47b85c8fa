package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/theirongolddev/ccpulse/internal/model"
)

// ParseResult holds the output of parsing a single JSONL file.
type ParseResult struct {
	Records     []model.UsageRecord
	ParseErrors int
	Err         error
}

// ParseFile reads a JSONL session file and extracts usage records from
// assistant entries. Lines that are not JSON, have an unparseable timestamp,
// or carry no usage payload are counted or skipped, never fatal.
//
// Only lines whose top-level "type" is "assistant" carry usage, so every
// other line is rejected with a cheap byte scan before JSON decoding.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{Err: err}
	}
	defer func() { _ = f.Close() }()

	var (
		records     []model.UsageRecord
		parseErrors int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 2*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()

		if extractTopLevelType(line) != "assistant" {
			continue
		}

		var entry RawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			parseErrors++
			continue
		}
		if entry.Message == nil || entry.Message.Usage == nil {
			continue
		}

		ts, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
		if err != nil {
			parseErrors++
			continue
		}

		u := entry.Message.Usage
		rec := model.UsageRecord{
			Timestamp:           ts,
			InputTokens:         u.InputTokens,
			OutputTokens:        u.OutputTokens,
			CacheCreationTokens: u.CacheCreationInputTokens,
			CacheReadTokens:     u.CacheReadInputTokens,
			Model:               entry.Message.Model,
			SessionID:           df.ProjectDir,
			MessageID:           entry.Message.ID,
			RequestID:           entry.RequestID,
		}
		if entry.CostUSD != nil && *entry.CostUSD > 0 {
			rec.CostUSD = *entry.CostUSD
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return ParseResult{Err: err}
	}

	return ParseResult{Records: records, ParseErrors: parseErrors}
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line.
// Tracks brace depth and string boundaries so nested "type" keys are
// ignored. Early-exits once found, making cost O(1) vs line length.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				val, isKey := classifyType(line, i+len(typeKey))
				if isKey {
					return val
				}
				// "type" appeared as a value, not a key. Keep scanning.
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value; the caller should continue.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true // key with non-string value (null, number, etc.)
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "", true
	}
	return string(line[i : i+end]), true
}

// skipJSONString advances past a JSON string starting at the opening quote.
func skipJSONString(line []byte, i int) int {
	i++ // skip opening quote
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
