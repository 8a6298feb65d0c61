// Package analysis provides candlestick pattern detection primitives.
package analysis

import (
	"candlescan/internal/models"
)

// PatternDetector defines the interface for pattern detection.
type PatternDetector interface {
	Name() string
	// Detect evaluates every window of the candle sequence and returns all
	// pattern occurrences in chronological order. Windows with insufficient
	// history never match; they are skipped, not errors.
	Detect(candles []models.Candle) ([]Pattern, error)
}

// Pattern represents a detected candlestick pattern occurrence. The window
// spans candles[StartIndex..EndIndex] inclusive; EndIndex is the bar the
// pattern completes on.
type Pattern struct {
	Name       string
	Direction  PatternDirection
	StartIndex int
	EndIndex   int
}

// PatternDirection represents the expected direction of a pattern.
type PatternDirection string

const (
	PatternBullish PatternDirection = "bullish"
	PatternBearish PatternDirection = "bearish"
	PatternNeutral PatternDirection = "neutral"
)
