package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"candlescan/internal/analysis"
	"candlescan/internal/scanner"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult(started time.Time) *scanner.ScanResult {
	return &scanner.ScanResult{
		Started: started,
		Matches: []scanner.PatternMatch{
			{
				Symbol:    "Apple Inc",
				Timeframe: "5min",
				Pattern:   "Rising Window",
				Direction: analysis.PatternBullish,
				Timestamp: started.Add(10 * time.Minute),
				EndIndex:  2,
			},
			{
				Symbol:    "Tesla",
				Timeframe: "15min",
				Pattern:   "Doji",
				Direction: analysis.PatternNeutral,
				Timestamp: started.Add(30 * time.Minute),
				EndIndex:  5,
			},
		},
		Errors: []scanner.ScanError{
			{Symbol: "Broken", Timeframe: "1min", Reason: "timestamps not strictly increasing"},
		},
		Duration: 42 * time.Millisecond,
	}
}

func TestSaveScanRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC)

	scanID, err := s.SaveScan(ctx, 10, sampleResult(started))
	if err != nil {
		t.Fatalf("SaveScan error: %v", err)
	}
	if scanID == 0 {
		t.Error("expected a non-zero scan ID")
	}

	scans, err := s.GetRecentScans(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecentScans error: %v", err)
	}
	if len(scans) != 1 {
		t.Fatalf("got %d scans, want 1", len(scans))
	}
	rec := scans[0]
	if rec.ID != scanID {
		t.Errorf("scan ID = %d, want %d", rec.ID, scanID)
	}
	if rec.Series != 10 || rec.Matches != 2 || rec.Errors != 1 {
		t.Errorf("scan record = %+v", rec)
	}

	matches, err := s.GetMatches(ctx, MatchFilter{})
	if err != nil {
		t.Fatalf("GetMatches error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	// Newest first.
	if matches[0].Pattern != "Doji" || matches[1].Pattern != "Rising Window" {
		t.Errorf("match order = %q, %q", matches[0].Pattern, matches[1].Pattern)
	}
	if matches[0].ScanID != scanID {
		t.Errorf("match scan ID = %d, want %d", matches[0].ScanID, scanID)
	}
}

func TestGetMatchesFiltering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if _, err := s.SaveScan(ctx, 10, sampleResult(time.Now().UTC())); err != nil {
		t.Fatalf("SaveScan error: %v", err)
	}

	bySymbol, err := s.GetMatches(ctx, MatchFilter{Symbol: "apple"})
	if err != nil {
		t.Fatalf("GetMatches error: %v", err)
	}
	if len(bySymbol) != 1 || bySymbol[0].Symbol != "Apple Inc" {
		t.Errorf("symbol filter = %+v", bySymbol)
	}

	byPattern, err := s.GetMatches(ctx, MatchFilter{Pattern: "Doji"})
	if err != nil {
		t.Fatalf("GetMatches error: %v", err)
	}
	if len(byPattern) != 1 || byPattern[0].Pattern != "Doji" {
		t.Errorf("pattern filter = %+v", byPattern)
	}

	byTimeframe, err := s.GetMatches(ctx, MatchFilter{Timeframe: "5min"})
	if err != nil {
		t.Fatalf("GetMatches error: %v", err)
	}
	if len(byTimeframe) != 1 || byTimeframe[0].Timeframe != "5min" {
		t.Errorf("timeframe filter = %+v", byTimeframe)
	}

	none, err := s.GetMatches(ctx, MatchFilter{Symbol: "nothing"})
	if err != nil {
		t.Fatalf("GetMatches error: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no matches, got %+v", none)
	}
}

func TestGetRecentScansLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		started := time.Now().UTC().Add(time.Duration(i) * time.Minute)
		if _, err := s.SaveScan(ctx, 1, &scanner.ScanResult{Started: started}); err != nil {
			t.Fatalf("SaveScan error: %v", err)
		}
	}

	scans, err := s.GetRecentScans(ctx, 3)
	if err != nil {
		t.Fatalf("GetRecentScans error: %v", err)
	}
	if len(scans) != 3 {
		t.Fatalf("got %d scans, want 3", len(scans))
	}
	for i := 1; i < len(scans); i++ {
		if scans[i].StartedAt.After(scans[i-1].StartedAt) {
			t.Error("scans not ordered newest first")
		}
	}
}
