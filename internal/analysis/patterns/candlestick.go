// Package patterns provides candlestick pattern detection.
package patterns

import (
	"candlescan/internal/analysis"
	"candlescan/internal/models"
)

// Detection thresholds. These are fixed configuration, not computed
// adaptively; tests probe the boundary values directly.
const (
	// DojiBodyRatioMax is the maximum body size as a fraction of the
	// high-low range for a bar to count as a Doji.
	DojiBodyRatioMax = 0.10

	// HammerWickRatio is the minimum lower-wick length as a multiple of the
	// body for a Hammer.
	HammerWickRatio = 2.0

	// HammerUpperWickMax is the maximum upper-wick length as a multiple of
	// the body for a Hammer; the wick must stay strictly under this.
	HammerUpperWickMax = 1.0

	// StarBodyRatioMax is the maximum Evening Star middle body as a fraction
	// of the first candle's body.
	StarBodyRatioMax = 0.5

	// TrendLookback is the number of preceding closes that must be strictly
	// decreasing for the Hammer's downtrend context.
	TrendLookback = 3
)

// Thresholds holds the tunable detection constants.
type Thresholds struct {
	DojiBodyRatioMax   float64
	HammerWickRatio    float64
	HammerUpperWickMax float64
	StarBodyRatioMax   float64
	TrendLookback      int
}

// DefaultThresholds returns the documented default detection constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DojiBodyRatioMax:   DojiBodyRatioMax,
		HammerWickRatio:    HammerWickRatio,
		HammerUpperWickMax: HammerUpperWickMax,
		StarBodyRatioMax:   StarBodyRatioMax,
		TrendLookback:      TrendLookback,
	}
}

// CandlestickDetector detects candlestick patterns in price data.
//
// Every predicate is a pure function of its window: deterministic, total,
// and false on insufficient history or malformed candles.
type CandlestickDetector struct {
	cfg Thresholds
}

// NewCandlestickDetector creates a detector with the default thresholds.
func NewCandlestickDetector() *CandlestickDetector {
	return NewCandlestickDetectorWithThresholds(DefaultThresholds())
}

// NewCandlestickDetectorWithThresholds creates a detector with custom thresholds.
func NewCandlestickDetectorWithThresholds(cfg Thresholds) *CandlestickDetector {
	if cfg.TrendLookback <= 0 {
		cfg.TrendLookback = TrendLookback
	}
	if cfg.HammerUpperWickMax <= 0 {
		cfg.HammerUpperWickMax = HammerUpperWickMax
	}
	return &CandlestickDetector{cfg: cfg}
}

func (d *CandlestickDetector) Name() string {
	return "CandlestickDetector"
}

// Detect evaluates all patterns at every bar, chronologically. Within a bar,
// patterns are checked in the declared order (see Catalog), which fixes the
// output ordering for reproducible scans.
func (d *CandlestickDetector) Detect(candles []models.Candle) ([]analysis.Pattern, error) {
	var out []analysis.Pattern
	for i := range candles {
		out = append(out, d.DetectAt(candles, i)...)
	}
	return out, nil
}

// DetectAt evaluates all patterns whose window ends at index i.
func (d *CandlestickDetector) DetectAt(candles []models.Candle, i int) []analysis.Pattern {
	var out []analysis.Pattern
	if d.isHammer(candles, i) {
		out = append(out, analysis.Pattern{Name: PatternHammer, Direction: analysis.PatternBullish, StartIndex: i, EndIndex: i})
	}
	if d.isDoji(candles, i) {
		out = append(out, analysis.Pattern{Name: PatternDoji, Direction: analysis.PatternNeutral, StartIndex: i, EndIndex: i})
	}
	if d.isRisingWindow(candles, i) {
		out = append(out, analysis.Pattern{Name: PatternRisingWindow, Direction: analysis.PatternBullish, StartIndex: i - 1, EndIndex: i})
	}
	if d.isEveningStar(candles, i) {
		out = append(out, analysis.Pattern{Name: PatternEveningStar, Direction: analysis.PatternBearish, StartIndex: i - 2, EndIndex: i})
	}
	if d.isThreeWhiteSoldiers(candles, i) {
		out = append(out, analysis.Pattern{Name: PatternThreeWhiteSoldiers, Direction: analysis.PatternBullish, StartIndex: i - 2, EndIndex: i})
	}
	return out
}

// windowValid reports whether candles[from..to] are all well-formed.
func windowValid(candles []models.Candle, from, to int) bool {
	for i := from; i <= to; i++ {
		if !candles[i].IsValid() {
			return false
		}
	}
	return true
}

// isDoji: body no more than DojiBodyRatioMax of the bar's range. A flat bar
// (range zero) never matches; there is no indecision without a range.
func (d *CandlestickDetector) isDoji(candles []models.Candle, i int) bool {
	if !windowValid(candles, i, i) {
		return false
	}
	c := candles[i]
	rng := c.Range()
	if rng == 0 {
		return false
	}
	return c.Body()/rng <= d.cfg.DojiBodyRatioMax
}

// isHammer: small body near the top of the range with a lower wick at least
// HammerWickRatio times the body, after a local downtrend.
func (d *CandlestickDetector) isHammer(candles []models.Candle, i int) bool {
	if !windowValid(candles, i, i) {
		return false
	}
	c := candles[i]
	body := c.Body()
	if body == 0 {
		return false
	}
	if c.LowerWick() < body*d.cfg.HammerWickRatio {
		return false
	}
	if c.UpperWick() >= body*d.cfg.HammerUpperWickMax {
		return false
	}
	return d.isInDowntrend(candles, i)
}

// isInDowntrend checks that the TrendLookback closes before index i are
// strictly decreasing.
func (d *CandlestickDetector) isInDowntrend(candles []models.Candle, i int) bool {
	if i < d.cfg.TrendLookback {
		return false
	}
	if !windowValid(candles, i-d.cfg.TrendLookback, i-1) {
		return false
	}
	for j := i - d.cfg.TrendLookback + 1; j < i; j++ {
		if candles[j].Close >= candles[j-1].Close {
			return false
		}
	}
	return true
}

// isRisingWindow: a true price gap up. The current bar's low must be strictly
// above the previous bar's high (touching highs do not gap), and both bars
// must be bullish.
func (d *CandlestickDetector) isRisingWindow(candles []models.Candle, i int) bool {
	if i < 1 || !windowValid(candles, i-1, i) {
		return false
	}
	prev, curr := candles[i-1], candles[i]
	return curr.Low > prev.High && prev.IsBullish() && curr.IsBullish()
}

// isEveningStar: a bullish candle, a small star gapping up from it, then a
// bearish candle closing below the first candle's open.
func (d *CandlestickDetector) isEveningStar(candles []models.Candle, i int) bool {
	if i < 2 || !windowValid(candles, i-2, i) {
		return false
	}
	first, star, curr := candles[i-2], candles[i-1], candles[i]
	if !first.IsBullish() {
		return false
	}
	if star.Body() >= first.Body()*d.cfg.StarBodyRatioMax {
		return false
	}
	if curr.Open <= star.Close {
		return false
	}
	return curr.IsBearish() && curr.Close < first.Open
}

// isThreeWhiteSoldiers: three consecutive bullish candles forming a staircase
// of higher opens and higher closes.
func (d *CandlestickDetector) isThreeWhiteSoldiers(candles []models.Candle, i int) bool {
	if i < 2 || !windowValid(candles, i-2, i) {
		return false
	}
	b1, b2, b3 := candles[i-2], candles[i-1], candles[i]
	if !b1.IsBullish() || !b2.IsBullish() || !b3.IsBullish() {
		return false
	}
	return b2.Open > b1.Open && b2.Close > b1.Close &&
		b3.Open > b2.Open && b3.Close > b2.Close
}
