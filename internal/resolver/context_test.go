package resolver

import (
	"testing"
	"time"

	"github.com/theirongolddev/ccpulse/internal/model"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return parsed
}

func TestBuildContextSessions_LastWriteWins(t *testing.T) {
	records := []model.UsageRecord{
		{SessionID: "-home-dev-gitlore", Timestamp: at(t, "2025-06-01T10:00:00Z"), CacheReadTokens: 40_000, InputTokens: 100},
		{SessionID: "-home-dev-gitlore", Timestamp: at(t, "2025-06-01T11:00:00Z"), CacheReadTokens: 55_000, InputTokens: 200},
		{SessionID: "-home-dev-gitlore", Timestamp: at(t, "2025-06-01T10:30:00Z"), CacheReadTokens: 48_000, InputTokens: 300},
	}

	sessions := BuildContextSessions(records)
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}

	s := sessions[0]
	if s.CacheReadTokens != 55_000 {
		t.Errorf("CacheReadTokens = %d, want 55000 (latest timestamp wins)", s.CacheReadTokens)
	}
	if s.InputTokens != 600 {
		t.Errorf("InputTokens = %d, want 600 (summed)", s.InputTokens)
	}
	if s.ContextTokens() != 55_000 {
		t.Errorf("ContextTokens = %d, want cache-read figure", s.ContextTokens())
	}
}

func TestBuildContextSessions_TimestampTieLaterRecordWins(t *testing.T) {
	stamp := at(t, "2025-06-01T10:00:00Z")
	records := []model.UsageRecord{
		{SessionID: "-home-dev-app", Timestamp: stamp, CacheReadTokens: 10_000},
		{SessionID: "-home-dev-app", Timestamp: stamp, CacheReadTokens: 12_000},
	}

	sessions := BuildContextSessions(records)
	if sessions[0].CacheReadTokens != 12_000 {
		t.Errorf("CacheReadTokens = %d, want 12000 (tie goes to later record)", sessions[0].CacheReadTokens)
	}
}

func TestBuildContextSessions_ZeroCacheReadNeverOverwrites(t *testing.T) {
	records := []model.UsageRecord{
		{SessionID: "-home-dev-app", Timestamp: at(t, "2025-06-01T10:00:00Z"), CacheReadTokens: 30_000},
		{SessionID: "-home-dev-app", Timestamp: at(t, "2025-06-01T11:00:00Z"), CacheReadTokens: 0},
	}

	sessions := BuildContextSessions(records)
	if sessions[0].CacheReadTokens != 30_000 {
		t.Errorf("CacheReadTokens = %d, want 30000 (zero reads don't reset)", sessions[0].CacheReadTokens)
	}
}

func TestBuildContextSessions_InputFallback(t *testing.T) {
	records := []model.UsageRecord{
		{SessionID: "-home-dev-app", Timestamp: at(t, "2025-06-01T10:00:00Z"), InputTokens: 1_000},
		{SessionID: "-home-dev-app", Timestamp: at(t, "2025-06-01T10:05:00Z"), InputTokens: 2_500},
	}

	sessions := BuildContextSessions(records)
	if got := sessions[0].ContextTokens(); got != 3_500 {
		t.Errorf("ContextTokens = %d, want 3500 (summed input fallback)", got)
	}
}

func TestBuildContextSessions_StableOrder(t *testing.T) {
	records := []model.UsageRecord{
		{SessionID: "-b", Timestamp: at(t, "2025-06-01T10:00:00Z")},
		{SessionID: "-a", Timestamp: at(t, "2025-06-01T10:01:00Z")},
		{SessionID: "-b", Timestamp: at(t, "2025-06-01T10:02:00Z")},
	}

	sessions := BuildContextSessions(records)
	if len(sessions) != 2 || sessions[0].SessionID != "-b" || sessions[1].SessionID != "-a" {
		t.Errorf("sessions = %v, want first-seen order [-b -a]", sessions)
	}
}

func TestFindContextSession_DirectMatch(t *testing.T) {
	sessions := []model.ContextSession{
		{SessionID: "-home-dev-gitlore", CacheReadTokens: 1},
		{SessionID: "-home-dev-my-project-abc", CacheReadTokens: 2},
	}

	got := FindContextSession(sessions, "/home/dev/gitlore")
	if got == nil || got.SessionID != "-home-dev-gitlore" {
		t.Fatalf("got %v, want gitlore session", got)
	}
}

func TestFindContextSession_DotsBecomeHyphens(t *testing.T) {
	sessions := []model.ContextSession{
		{SessionID: "-home-dev-my-project-abc"},
	}

	// The deepest candidate "src" matches nothing; walking up normalizes
	// "my.project" to "my-project", which the session id contains.
	got := FindContextSession(sessions, "/home/dev/my.project/src")
	if got == nil {
		t.Fatal("dotted parent directory should match its hyphenated session id")
	}
}

func TestFindContextSession_WalksUpFromSubdirectory(t *testing.T) {
	sessions := []model.ContextSession{
		{SessionID: "-home-dev-gitlore"},
	}

	got := FindContextSession(sessions, "/home/dev/gitlore/internal/deep/pkg")
	if got == nil {
		t.Fatal("subdirectory of a tracked project should still resolve")
	}
}

func TestFindContextSession_DeepestLevelWins(t *testing.T) {
	// Both the leaf and an ancestor match different sessions; the leaf is
	// the project actually being worked in.
	sessions := []model.ContextSession{
		{SessionID: "-home-dev"},
		{SessionID: "-home-dev-gitlore"},
	}

	got := FindContextSession(sessions, "/home/dev/gitlore")
	if got == nil || got.SessionID != "-home-dev-gitlore" {
		t.Fatalf("got %v, want the deeper gitlore match", got)
	}
}

func TestFindContextSession_NoMatch(t *testing.T) {
	sessions := []model.ContextSession{{SessionID: "-home-dev-gitlore"}}

	if got := FindContextSession(sessions, "/srv/unrelated"); got != nil {
		t.Errorf("got %v, want nil for unmatched path", got)
	}
	if got := FindContextSession(sessions, ""); got != nil {
		t.Errorf("got %v, want nil for empty path", got)
	}
	if got := FindContextSession(nil, "/home/dev/gitlore"); got != nil {
		t.Errorf("got %v, want nil for no sessions", got)
	}
}
