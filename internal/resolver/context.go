// Package resolver matches the invoking working directory to the usage
// record group whose project the user is currently inside, for context-size
// display. Distinct from billing session blocks.
package resolver

import (
	"path/filepath"
	"strings"

	"github.com/theirongolddev/ccpulse/internal/model"
)

// BuildContextSessions groups records by their session id (the raw project
// directory name) and reduces each group to a ContextSession.
//
// The cache-read figure is a last-write-wins scan by timestamp: whenever a
// record carries a non-zero cache_read count and its timestamp is >= the
// best seen so far, it overwrites the value. Ties go to the later record.
// Input tokens are a plain sum kept as a fallback. Groups retain first-seen
// order so output is stable across runs.
func BuildContextSessions(records []model.UsageRecord) []model.ContextSession {
	type acc struct {
		session model.ContextSession
		bestAt  int64 // unix nanos of the record that set CacheReadTokens
	}

	byID := make(map[string]*acc)
	var order []string

	for _, rec := range records {
		if rec.SessionID == "" {
			continue
		}
		a, ok := byID[rec.SessionID]
		if !ok {
			a = &acc{session: model.ContextSession{SessionID: rec.SessionID}, bestAt: -1}
			byID[rec.SessionID] = a
			order = append(order, rec.SessionID)
		}

		a.session.InputTokens += rec.InputTokens

		if rec.CacheReadTokens > 0 && rec.Timestamp.UnixNano() >= a.bestAt {
			a.session.CacheReadTokens = rec.CacheReadTokens
			a.bestAt = rec.Timestamp.UnixNano()
		}
	}

	out := make([]model.ContextSession, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id].session)
	}
	return out
}

// FindContextSession walks currentPath's ancestry from deepest to root,
// returning the first session whose id contains a normalized path component.
// Project identifiers substitute hyphens for dots (the upstream naming
// convention), and the invocation directory may be a subdirectory of the
// tracked project root, hence the upward walk. Returns nil when no level
// matches.
func FindContextSession(sessions []model.ContextSession, currentPath string) *model.ContextSession {
	if currentPath == "" || len(sessions) == 0 {
		return nil
	}

	segs := splitPath(currentPath)
	for i := len(segs); i >= 1; i-- {
		candidate := strings.ReplaceAll(segs[i-1], ".", "-")
		if candidate == "" {
			continue
		}
		for j := range sessions {
			if strings.Contains(sessions[j].SessionID, candidate) {
				return &sessions[j]
			}
		}
	}
	return nil
}

// splitPath breaks a path into its non-empty components.
func splitPath(path string) []string {
	raw := strings.Split(filepath.ToSlash(path), "/")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}
