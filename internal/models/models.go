// Package models provides domain models for the pattern scanner.
package models

import (
	"math"
	"time"
)

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Body returns the absolute size of the candle body.
func (c Candle) Body() float64 {
	return math.Abs(c.Close - c.Open)
}

// Range returns the full high-low range of the candle.
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// UpperWick returns the distance from the body top to the high.
func (c Candle) UpperWick() float64 {
	return c.High - math.Max(c.Open, c.Close)
}

// LowerWick returns the distance from the body bottom to the low.
func (c Candle) LowerWick() float64 {
	return math.Min(c.Open, c.Close) - c.Low
}

// IsBullish reports whether the candle closed above its open.
func (c Candle) IsBullish() bool {
	return c.Close > c.Open
}

// IsBearish reports whether the candle closed below its open.
func (c Candle) IsBearish() bool {
	return c.Close < c.Open
}

// IsValid reports whether the candle is well-formed: finite, non-negative
// prices with High >= max(Open, Close) and Low <= min(Open, Close).
func (c Candle) IsValid() bool {
	for _, v := range []float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	if c.High < c.Low {
		return false
	}
	if c.High < math.Max(c.Open, c.Close) {
		return false
	}
	if c.Low > math.Min(c.Open, c.Close) {
		return false
	}
	return true
}
