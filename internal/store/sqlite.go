package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"candlescan/internal/scanner"
)

// SQLiteStore implements ScanStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed scan-history store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		series_count INTEGER NOT NULL,
		match_count INTEGER NOT NULL,
		error_count INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS pattern_matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		pattern TEXT NOT NULL,
		direction TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (scan_id) REFERENCES scans(id)
	);
	CREATE INDEX IF NOT EXISTS idx_matches_scan ON pattern_matches(scan_id);
	CREATE INDEX IF NOT EXISTS idx_matches_symbol ON pattern_matches(symbol);
	CREATE INDEX IF NOT EXISTS idx_matches_pattern ON pattern_matches(pattern);

	CREATE TABLE IF NOT EXISTS scan_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		timeframe TEXT NOT NULL,
		reason TEXT NOT NULL,
		FOREIGN KEY (scan_id) REFERENCES scans(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveScan persists a scan run with all its matches and errors, returning
// the scan row ID.
func (s *SQLiteStore) SaveScan(ctx context.Context, seriesCount int, result *scanner.ScanResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO scans (started_at, series_count, match_count, error_count) VALUES (?, ?, ?, ?)`,
		result.Started, seriesCount, len(result.Matches), len(result.Errors))
	if err != nil {
		return 0, err
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	matchStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pattern_matches (scan_id, symbol, timeframe, pattern, direction, timestamp) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer matchStmt.Close()
	for _, m := range result.Matches {
		if _, err := matchStmt.ExecContext(ctx, scanID, m.Symbol, m.Timeframe, m.Pattern, string(m.Direction), m.Timestamp); err != nil {
			return 0, err
		}
	}

	for _, e := range result.Errors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scan_errors (scan_id, symbol, timeframe, reason) VALUES (?, ?, ?, ?)`,
			scanID, e.Symbol, e.Timeframe, e.Reason); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return scanID, nil
}

// GetRecentScans returns the most recent scan runs, newest first.
func (s *SQLiteStore) GetRecentScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, series_count, match_count, error_count
		 FROM scans ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var r ScanRecord
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Series, &r.Matches, &r.Errors); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetMatches returns persisted matches, newest first, applying the filter.
func (s *SQLiteStore) GetMatches(ctx context.Context, filter MatchFilter) ([]MatchRecord, error) {
	query := `SELECT id, scan_id, symbol, timeframe, pattern, direction, timestamp FROM pattern_matches`
	var conds []string
	var args []interface{}

	if filter.Symbol != "" {
		conds = append(conds, "symbol LIKE ?")
		args = append(args, "%"+filter.Symbol+"%")
	}
	if filter.Pattern != "" {
		conds = append(conds, "pattern LIKE ?")
		args = append(args, "%"+filter.Pattern+"%")
	}
	if filter.Timeframe != "" {
		conds = append(conds, "timeframe = ?")
		args = append(args, filter.Timeframe)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []MatchRecord
	for rows.Next() {
		var r MatchRecord
		if err := rows.Scan(&r.ID, &r.ScanID, &r.Symbol, &r.Timeframe, &r.Pattern, &r.Direction, &r.Timestamp); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
