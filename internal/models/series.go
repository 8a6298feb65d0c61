package models

import "fmt"

// Series holds an ordered sequence of candles for one symbol and timeframe.
type Series struct {
	Symbol    string
	Timeframe Timeframe
	Candles   []Candle
}

// Validate checks the structural invariants of the series: at least one
// candle and strictly increasing timestamps. Individual malformed candles
// are not a validation failure; the detector skips them per window.
func (s Series) Validate() error {
	if len(s.Candles) == 0 {
		return fmt.Errorf("series %s/%s has no candles", s.Symbol, s.Timeframe.Code)
	}
	for i := 1; i < len(s.Candles); i++ {
		if !s.Candles[i].Timestamp.After(s.Candles[i-1].Timestamp) {
			return fmt.Errorf("series %s/%s: timestamps not strictly increasing at index %d (%s -> %s)",
				s.Symbol, s.Timeframe.Code, i,
				s.Candles[i-1].Timestamp.Format("2006-01-02 15:04:05"),
				s.Candles[i].Timestamp.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}
