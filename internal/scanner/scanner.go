// Package scanner applies pattern detection across many symbol series and
// aggregates the matches into a flat, deterministically ordered result.
package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"candlescan/internal/analysis"
	"candlescan/internal/analysis/patterns"
	"candlescan/internal/errors"
	"candlescan/internal/models"
)

// PatternMatch records one pattern occurrence in one series. Timestamp is the
// timestamp of the last bar of the matched window. Immutable once created.
type PatternMatch struct {
	Symbol     string
	Timeframe  string
	Pattern    string
	Direction  analysis.PatternDirection
	Timestamp  time.Time
	StartIndex int
	EndIndex   int
}

// ScanError records a per-symbol failure or warning that did not abort the scan.
type ScanError struct {
	Symbol    string
	Timeframe string
	Reason    string
}

// ScanResult is the aggregate outcome of a scan: all matches in deterministic
// order plus the per-symbol errors and malformed-candle warnings collected
// along the way.
type ScanResult struct {
	Matches  []PatternMatch
	Errors   []ScanError
	Warnings []ScanError
	Started  time.Time
	Duration time.Duration
}

// DefaultWorkers is the default number of concurrent per-series scans.
const DefaultWorkers = 4

// Scanner runs a fixed set of detectors over a collection of series.
type Scanner struct {
	detectors []analysis.PatternDetector
	workers   int
	logger    zerolog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers sets the number of concurrent per-series scans. Values <= 1
// make the scan fully sequential.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		s.workers = n
	}
}

// WithLogger sets the scanner's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithDetectors replaces the default detector set.
func WithDetectors(detectors ...analysis.PatternDetector) Option {
	return func(s *Scanner) {
		s.detectors = detectors
	}
}

// New creates a Scanner with the default candlestick detector.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		detectors: []analysis.PatternDetector{patterns.NewCandlestickDetector()},
		workers:   DefaultWorkers,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// seriesOutcome holds the partial result for one series. Results are written
// to indexed slots so concurrent scans preserve input order.
type seriesOutcome struct {
	matches  []PatternMatch
	err      *ScanError
	warnings []ScanError
}

// Scan evaluates every detector over every series. Series are processed
// independently: a malformed series yields one ScanError and the remaining
// series are still scanned. Output order is series input order, then patterns
// in declared order, then bars chronologically within a pattern. Scanning the
// same input twice yields an identical result.
func (s *Scanner) Scan(ctx context.Context, series []models.Series) (*ScanResult, error) {
	if len(series) == 0 {
		return nil, errors.ErrNoData
	}

	started := time.Now()
	outcomes := make([]seriesOutcome, len(series))

	workers := s.workers
	if workers > len(series) {
		workers = len(series)
	}

	if workers <= 1 {
		for i := range series {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			outcomes[i] = s.scanSeries(series[i])
		}
	} else {
		workChan := make(chan int, len(series))
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range workChan {
					select {
					case <-ctx.Done():
						return
					default:
						outcomes[i] = s.scanSeries(series[i])
					}
				}
			}()
		}
		for i := range series {
			workChan <- i
		}
		close(workChan)
		wg.Wait()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	// Concatenate partial results in input order.
	result := &ScanResult{Started: started}
	for _, o := range outcomes {
		result.Matches = append(result.Matches, o.matches...)
		result.Warnings = append(result.Warnings, o.warnings...)
		if o.err != nil {
			result.Errors = append(result.Errors, *o.err)
		}
	}
	result.Duration = time.Since(started)

	if len(result.Matches) == 0 && len(result.Errors) == len(series) {
		// Every series failed; still a partial result, not a fatal error,
		// unless nothing at all was scannable.
		s.logger.Warn().Int("series", len(series)).Msg("all series failed validation")
	}

	return result, nil
}

// patternOrder maps the built-in pattern names to their declared position.
var patternOrder = func() map[string]int {
	order := make(map[string]int)
	for i, info := range patterns.Catalog() {
		order[info.Name] = i
	}
	return order
}()

func patternRank(name string) int {
	if r, ok := patternOrder[name]; ok {
		return r
	}
	return len(patternOrder)
}

// scanSeries validates and scans a single series. Matches are ordered by
// pattern in declared order, then chronologically within a pattern.
func (s *Scanner) scanSeries(ser models.Series) seriesOutcome {
	var o seriesOutcome

	// An empty series is shorter than every pattern window: nothing can
	// match and nothing is wrong. Skip it without an error.
	if len(ser.Candles) == 0 {
		return o
	}

	if err := ser.Validate(); err != nil {
		s.logger.Warn().Str("symbol", ser.Symbol).Str("timeframe", ser.Timeframe.Code).
			Err(err).Msg("series rejected")
		o.err = &ScanError{
			Symbol:    ser.Symbol,
			Timeframe: ser.Timeframe.Code,
			Reason:    err.Error(),
		}
		return o
	}

	for i, c := range ser.Candles {
		if !c.IsValid() {
			o.warnings = append(o.warnings, ScanError{
				Symbol:    ser.Symbol,
				Timeframe: ser.Timeframe.Code,
				Reason:    fmt.Sprintf("malformed candle at index %d (%s)", i, c.Timestamp.Format("2006-01-02 15:04:05")),
			})
		}
	}

	for i := range ser.Candles {
		for _, det := range s.detectors {
			found := detectAt(det, ser.Candles, i)
			for _, p := range found {
				o.matches = append(o.matches, PatternMatch{
					Symbol:     ser.Symbol,
					Timeframe:  ser.Timeframe.Code,
					Pattern:    p.Name,
					Direction:  p.Direction,
					Timestamp:  ser.Candles[p.EndIndex].Timestamp,
					StartIndex: p.StartIndex,
					EndIndex:   p.EndIndex,
				})
			}
		}
	}

	// Collection above is bar-major; reorder to pattern-major. The stable
	// sort keeps matches of one pattern chronological.
	sort.SliceStable(o.matches, func(a, b int) bool {
		return patternRank(o.matches[a].Pattern) < patternRank(o.matches[b].Pattern)
	})

	return o
}

// windowDetector is implemented by detectors that can evaluate a single
// window-ending index, preserving bar-then-pattern ordering.
type windowDetector interface {
	DetectAt(candles []models.Candle, i int) []analysis.Pattern
}

func detectAt(det analysis.PatternDetector, candles []models.Candle, i int) []analysis.Pattern {
	if wd, ok := det.(windowDetector); ok {
		return wd.DetectAt(candles, i)
	}
	// Fallback for detectors without per-bar evaluation: run the full
	// detection and keep the patterns ending at i.
	all, err := det.Detect(candles)
	if err != nil {
		return nil
	}
	var out []analysis.Pattern
	for _, p := range all {
		if p.EndIndex == i {
			out = append(out, p)
		}
	}
	return out
}
