package blocks

import (
	"testing"
	"time"

	"github.com/theirongolddev/ccpulse/internal/model"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return parsed
}

func rec(t *testing.T, stamp string, tokens int64) model.UsageRecord {
	t.Helper()
	return model.UsageRecord{
		Timestamp:    ts(t, stamp),
		InputTokens:  tokens,
		OutputTokens: tokens,
		Model:        "claude-sonnet-4-5",
	}
}

func TestIdentifySessionBlocks_Empty(t *testing.T) {
	if got := IdentifySessionBlocks(nil, DefaultWindow, time.Now()); got != nil {
		t.Errorf("blocks for no records = %v, want nil", got)
	}
}

func TestIdentifySessionBlocks_SingleRecord(t *testing.T) {
	now := ts(t, "2025-06-01T20:00:00Z")
	records := []model.UsageRecord{rec(t, "2025-06-01T10:23:45Z", 100)}

	out := IdentifySessionBlocks(records, DefaultWindow, now)
	if len(out) != 1 {
		t.Fatalf("got %d blocks, want 1", len(out))
	}

	b := out[0]
	if want := ts(t, "2025-06-01T10:00:00Z"); !b.StartTime.Equal(want) {
		t.Errorf("StartTime = %v, want %v (floored to hour)", b.StartTime, want)
	}
	if want := ts(t, "2025-06-01T15:00:00Z"); !b.EndTime.Equal(want) {
		t.Errorf("EndTime = %v, want %v", b.EndTime, want)
	}
	if !b.ActualEndTime.Equal(records[0].Timestamp) {
		t.Errorf("ActualEndTime = %v, want record timestamp", b.ActualEndTime)
	}
	if b.IsActive {
		t.Error("block past its end time should not be active")
	}
}

func TestIdentifySessionBlocks_BoundaryDistancesDoNotSplit(t *testing.T) {
	// Second record exactly window past both the floored start and the
	// first record. Neither strict inequality fires.
	now := ts(t, "2025-06-02T00:00:00Z")
	records := []model.UsageRecord{
		rec(t, "2025-06-01T00:00:00Z", 1),
		rec(t, "2025-06-01T05:00:00Z", 1),
	}

	out := IdentifySessionBlocks(records, DefaultWindow, now)
	if len(out) != 1 {
		t.Fatalf("got %d blocks, want 1 (boundary-equal must not split)", len(out))
	}
	if len(out[0].Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(out[0].Entries))
	}
}

func TestIdentifySessionBlocks_SplitWithBoundaryEqualSilence(t *testing.T) {
	// The third record is past window from the floored start, so the block
	// splits, but its silence since the second record is exactly one
	// window. Boundary-equal silence must not emit a gap.
	now := ts(t, "2025-06-02T00:00:00Z")
	records := []model.UsageRecord{
		rec(t, "2025-06-01T00:00:00Z", 1),
		rec(t, "2025-06-01T04:00:00Z", 1),
		rec(t, "2025-06-01T09:00:00Z", 1),
	}

	out := IdentifySessionBlocks(records, DefaultWindow, now)
	if len(out) != 2 {
		t.Fatalf("got %d blocks, want 2 (split, no gap)", len(out))
	}
	if out[0].IsGap || out[1].IsGap {
		t.Error("5h silence is boundary-equal and must not produce a gap block")
	}
	if len(out[0].Entries) != 2 {
		t.Errorf("first block entries = %d, want 2", len(out[0].Entries))
	}
	if len(out[1].Entries) != 1 {
		t.Errorf("second block entries = %d, want 1", len(out[1].Entries))
	}
	if want := ts(t, "2025-06-01T09:00:00Z"); !out[1].StartTime.Equal(want) {
		t.Errorf("second block StartTime = %v, want %v", out[1].StartTime, want)
	}
}

func TestIdentifySessionBlocks_SplitPastWindowFromStart(t *testing.T) {
	// Records 4h apart never exceed the inter-record window, but the third
	// lands past window from the floored start and forces a new block.
	now := ts(t, "2025-06-02T00:00:00Z")
	records := []model.UsageRecord{
		rec(t, "2025-06-01T00:30:00Z", 1),
		rec(t, "2025-06-01T04:30:00Z", 1),
		rec(t, "2025-06-01T08:30:00Z", 1),
	}

	out := IdentifySessionBlocks(records, DefaultWindow, now)
	if len(out) != 2 {
		t.Fatalf("got %d blocks, want 2", len(out))
	}
	if out[0].IsGap || out[1].IsGap {
		t.Error("no gap expected: inter-record silence never exceeded the window")
	}
	if want := ts(t, "2025-06-01T08:00:00Z"); !out[1].StartTime.Equal(want) {
		t.Errorf("second block StartTime = %v, want %v", out[1].StartTime, want)
	}
}

func TestIdentifySessionBlocks_GapInsertion(t *testing.T) {
	now := ts(t, "2025-06-02T00:00:00Z")
	records := []model.UsageRecord{
		rec(t, "2025-06-01T01:00:00Z", 10),
		rec(t, "2025-06-01T09:00:00Z", 20), // 8h silence > 5h window
	}

	out := IdentifySessionBlocks(records, DefaultWindow, now)
	if len(out) != 3 {
		t.Fatalf("got %d blocks, want 3 (block, gap, block)", len(out))
	}

	gap := out[1]
	if !gap.IsGap {
		t.Fatal("middle block should be a gap")
	}
	if want := ts(t, "2025-06-01T06:00:00Z"); !gap.StartTime.Equal(want) {
		t.Errorf("gap StartTime = %v, want last record + window = %v", gap.StartTime, want)
	}
	if want := ts(t, "2025-06-01T09:00:00Z"); !gap.EndTime.Equal(want) {
		t.Errorf("gap EndTime = %v, want next record = %v", gap.EndTime, want)
	}
	if gap.TokenCounts.Total() != 0 {
		t.Errorf("gap carries %d tokens, want 0", gap.TokenCounts.Total())
	}
	if len(gap.Models) != 0 {
		t.Errorf("gap carries models %v, want none", gap.Models)
	}
}

func TestIdentifySessionBlocks_UnsortedInput(t *testing.T) {
	now := ts(t, "2025-06-02T00:00:00Z")
	records := []model.UsageRecord{
		rec(t, "2025-06-01T09:00:00Z", 20),
		rec(t, "2025-06-01T01:00:00Z", 10),
	}

	out := IdentifySessionBlocks(records, DefaultWindow, now)
	if len(out) != 3 {
		t.Fatalf("got %d blocks, want 3: input order must not matter", len(out))
	}
	if !out[0].StartTime.Before(out[2].StartTime) {
		t.Error("blocks not in chronological order")
	}
}

func TestIdentifySessionBlocks_Idempotent(t *testing.T) {
	now := ts(t, "2025-06-01T12:00:00Z")
	records := []model.UsageRecord{
		rec(t, "2025-06-01T01:10:00Z", 5),
		rec(t, "2025-06-01T01:10:00Z", 7), // same timestamp, distinct record
		rec(t, "2025-06-01T03:00:00Z", 9),
		rec(t, "2025-06-01T10:00:00Z", 11),
	}

	a := IdentifySessionBlocks(records, DefaultWindow, now)
	b := IdentifySessionBlocks(records, DefaultWindow, now)

	if len(a) != len(b) {
		t.Fatalf("runs disagree on block count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("block %d id differs between runs: %q vs %q", i, a[i].ID, b[i].ID)
		}
		if a[i].TokenCounts != b[i].TokenCounts {
			t.Errorf("block %d token counts differ between runs", i)
		}
		for j := range a[i].Entries {
			if a[i].Entries[j] != b[i].Entries[j] {
				t.Errorf("block %d entry %d order differs between runs", i, j)
			}
		}
	}
}

func TestIdentifySessionBlocks_Aggregation(t *testing.T) {
	now := ts(t, "2025-06-01T12:00:00Z")
	records := []model.UsageRecord{
		{Timestamp: ts(t, "2025-06-01T10:00:00Z"), InputTokens: 100, OutputTokens: 50, CacheCreationTokens: 10, CacheReadTokens: 5, CostUSD: 0.25, Model: "claude-sonnet-4-5"},
		{Timestamp: ts(t, "2025-06-01T10:30:00Z"), InputTokens: 200, OutputTokens: 80, CostUSD: 0.75, Model: "claude-opus-4-1"},
		{Timestamp: ts(t, "2025-06-01T11:00:00Z"), InputTokens: 1, OutputTokens: 1, Model: "claude-sonnet-4-5"},
	}

	out := IdentifySessionBlocks(records, DefaultWindow, now)
	if len(out) != 1 {
		t.Fatalf("got %d blocks, want 1", len(out))
	}

	b := out[0]
	if b.TokenCounts.InputTokens != 301 || b.TokenCounts.OutputTokens != 131 {
		t.Errorf("input/output = %d/%d, want 301/131", b.TokenCounts.InputTokens, b.TokenCounts.OutputTokens)
	}
	if b.TokenCounts.Total() != 447 {
		t.Errorf("total = %d, want 447", b.TokenCounts.Total())
	}
	if b.CostUSD != 1.0 {
		t.Errorf("cost = %v, want 1.0", b.CostUSD)
	}
	if len(b.Models) != 2 || b.Models[0] != "claude-sonnet-4-5" || b.Models[1] != "claude-opus-4-1" {
		t.Errorf("models = %v, want [claude-sonnet-4-5 claude-opus-4-1] in first-seen order", b.Models)
	}
}

func TestIdentifySessionBlocks_ActiveFlag(t *testing.T) {
	records := []model.UsageRecord{rec(t, "2025-06-01T10:15:00Z", 100)}

	cases := []struct {
		name   string
		now    string
		active bool
	}{
		{"recent activity inside window", "2025-06-01T12:00:00Z", true},
		{"silence past window", "2025-06-01T15:20:00Z", false},
		{"just before nominal end", "2025-06-01T14:59:00Z", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := IdentifySessionBlocks(records, DefaultWindow, ts(t, tc.now))
			if got := out[0].IsActive; got != tc.active {
				t.Errorf("IsActive = %v, want %v", got, tc.active)
			}
		})
	}
}

func TestActiveBlock(t *testing.T) {
	now := ts(t, "2025-06-01T12:00:00Z")
	records := []model.UsageRecord{
		rec(t, "2025-06-01T01:00:00Z", 1),
		rec(t, "2025-06-01T11:00:00Z", 2),
	}

	out := IdentifySessionBlocks(records, DefaultWindow, now)
	active := ActiveBlock(out)
	if active == nil {
		t.Fatal("expected an active block")
	}
	if !active.ActualEndTime.Equal(ts(t, "2025-06-01T11:00:00Z")) {
		t.Errorf("wrong block flagged active: %v", active.ID)
	}

	if got := ActiveBlock(nil); got != nil {
		t.Errorf("ActiveBlock(nil) = %v, want nil", got)
	}
}

func TestMaxBlockTokens_IgnoresGaps(t *testing.T) {
	now := ts(t, "2025-06-02T00:00:00Z")
	records := []model.UsageRecord{
		rec(t, "2025-06-01T01:00:00Z", 100),
		rec(t, "2025-06-01T10:00:00Z", 30),
	}

	out := IdentifySessionBlocks(records, DefaultWindow, now)
	if got := MaxBlockTokens(out); got != 200 {
		t.Errorf("MaxBlockTokens = %d, want 200", got)
	}
}
