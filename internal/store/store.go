// Package store provides scan-history persistence interfaces and
// implementations. The store is strictly write-behind presentation plumbing:
// the scanner never reads from it, and store failures never abort a scan.
package store

import (
	"context"
	"time"

	"candlescan/internal/scanner"
)

// ScanRecord summarizes one persisted scan run.
type ScanRecord struct {
	ID        int64
	StartedAt time.Time
	Series    int
	Matches   int
	Errors    int
}

// MatchRecord is one persisted pattern match.
type MatchRecord struct {
	ID        int64
	ScanID    int64
	Symbol    string
	Timeframe string
	Pattern   string
	Direction string
	Timestamp time.Time
}

// MatchFilter filters match history queries. Zero values mean no filtering.
type MatchFilter struct {
	Symbol    string
	Pattern   string
	Timeframe string
	Limit     int
}

// ScanStore defines the interface for scan-history persistence.
type ScanStore interface {
	SaveScan(ctx context.Context, seriesCount int, result *scanner.ScanResult) (int64, error)
	GetRecentScans(ctx context.Context, limit int) ([]ScanRecord, error)
	GetMatches(ctx context.Context, filter MatchFilter) ([]MatchRecord, error)
	Close() error
}
