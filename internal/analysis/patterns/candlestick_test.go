package patterns

import (
	"math"
	"testing"

	"candlescan/internal/analysis"
	"candlescan/internal/models"
)

// bar builds a candle with the given OHLC, leaving timestamps zero. The
// detector predicates never look at timestamps.
func bar(o, h, l, c float64) models.Candle {
	return models.Candle{Open: o, High: h, Low: l, Close: c, Volume: 1000}
}

// downtrend returns lookback bars with strictly decreasing closes, ending
// just above the given level, to satisfy the Hammer's trend context.
func downtrend(level float64) []models.Candle {
	return []models.Candle{
		bar(level+3, level+3.5, level+2.4, level+2.5),
		bar(level+2.5, level+2.6, level+1.4, level+1.5),
		bar(level+1.5, level+1.6, level+0.4, level+0.5),
	}
}

func names(found []analysis.Pattern) []string {
	out := make([]string, 0, len(found))
	for _, p := range found {
		out = append(out, p.Name)
	}
	return out
}

func contains(found []analysis.Pattern, name string) bool {
	for _, p := range found {
		if p.Name == name {
			return true
		}
	}
	return false
}

func TestDoji(t *testing.T) {
	d := NewCandlestickDetector()

	tests := []struct {
		name   string
		candle models.Candle
		want   bool
	}{
		{"open equals close with range", bar(10, 10.5, 9.5, 10), true},
		{"body at threshold", bar(10, 10.5, 9.5, 10.1), true},
		{"body just over threshold", bar(10, 10.5, 9.5, 10.11), false},
		{"full body bar", bar(9.5, 10.5, 9.5, 10.5), false},
		{"flat bar no range", bar(10, 10, 10, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.isDoji([]models.Candle{tt.candle}, 0)
			if got != tt.want {
				t.Errorf("isDoji(%+v) = %v, want %v", tt.candle, got, tt.want)
			}
		})
	}
}

func TestHammer(t *testing.T) {
	d := NewCandlestickDetector()

	// Body 0.2, lower wick 1.0 (5x body), upper wick 0.1.
	hammer := bar(10.0, 10.3, 9.0, 10.2)

	t.Run("after downtrend", func(t *testing.T) {
		candles := append(downtrend(10), hammer)
		if !d.isHammer(candles, 3) {
			t.Error("expected hammer after downtrend")
		}
	})

	t.Run("without downtrend context", func(t *testing.T) {
		if d.isHammer([]models.Candle{hammer}, 0) {
			t.Error("hammer must not match without preceding downtrend")
		}
	})

	t.Run("flat preceding closes", func(t *testing.T) {
		flat := []models.Candle{
			bar(10.5, 10.6, 10.4, 10.5),
			bar(10.5, 10.6, 10.4, 10.5),
			bar(10.5, 10.6, 10.4, 10.5),
			hammer,
		}
		if d.isHammer(flat, 3) {
			t.Error("flat closes are not a downtrend")
		}
	})

	t.Run("short lower wick", func(t *testing.T) {
		// Lower wick 0.3 is under 2x the 0.2 body.
		weak := bar(10.0, 10.3, 9.7, 10.2)
		candles := append(downtrend(10), weak)
		if d.isHammer(candles, 3) {
			t.Error("lower wick under 2x body must not match")
		}
	})

	t.Run("long upper wick", func(t *testing.T) {
		// Upper wick 0.5 exceeds the 0.2 body.
		topHeavy := bar(10.0, 10.7, 9.0, 10.2)
		candles := append(downtrend(10), topHeavy)
		if d.isHammer(candles, 3) {
			t.Error("upper wick at or above body must not match")
		}
	})

	t.Run("upper wick limit is configurable", func(t *testing.T) {
		// Upper wick 0.5 against a 0.2 body: rejected by the default limit,
		// accepted once the limit allows wicks up to 3x the body.
		topHeavy := bar(10.0, 10.7, 9.0, 10.2)
		candles := append(downtrend(10), topHeavy)

		relaxed := NewCandlestickDetectorWithThresholds(Thresholds{
			DojiBodyRatioMax:   DojiBodyRatioMax,
			HammerWickRatio:    HammerWickRatio,
			HammerUpperWickMax: 3.0,
			StarBodyRatioMax:   StarBodyRatioMax,
			TrendLookback:      TrendLookback,
		})
		if !relaxed.isHammer(candles, 3) {
			t.Error("relaxed upper wick limit should accept the bar")
		}
		if d.isHammer(candles, 3) {
			t.Error("default upper wick limit should reject the bar")
		}
	})

	t.Run("zero body", func(t *testing.T) {
		doji := bar(10.0, 10.1, 9.0, 10.0)
		candles := append(downtrend(10), doji)
		if d.isHammer(candles, 3) {
			t.Error("zero-body bar must not be a hammer")
		}
	})
}

func TestRisingWindow(t *testing.T) {
	d := NewCandlestickDetector()

	tests := []struct {
		name       string
		prev, curr models.Candle
		want       bool
	}{
		{
			"strict gap matches",
			bar(9.5, 10, 9.4, 9.9),
			bar(10.01, 10.8, 10.01, 10.5),
			true,
		},
		{
			"touching highs is not a gap",
			bar(9.5, 10, 9.4, 9.9),
			bar(10.2, 10.8, 10, 10.5),
			false,
		},
		{
			"overlapping ranges",
			bar(9.5, 10, 9.4, 9.9),
			bar(9.8, 10.8, 9.7, 10.5),
			false,
		},
		{
			"gap but previous bar bearish",
			bar(9.9, 10, 9.4, 9.5),
			bar(10.01, 10.8, 10.01, 10.5),
			false,
		},
		{
			"gap but current bar bearish",
			bar(9.5, 10, 9.4, 9.9),
			bar(10.5, 10.8, 10.01, 10.1),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.isRisingWindow([]models.Candle{tt.prev, tt.curr}, 1)
			if got != tt.want {
				t.Errorf("isRisingWindow = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("first bar cannot match", func(t *testing.T) {
		if d.isRisingWindow([]models.Candle{bar(10, 11, 9, 10.5)}, 0) {
			t.Error("a 2-bar pattern cannot match at index 0")
		}
	})
}

func TestEveningStar(t *testing.T) {
	d := NewCandlestickDetector()

	first := bar(10, 11.1, 9.9, 11)       // long bullish, body 1.0
	star := bar(11.2, 11.5, 11.1, 11.3)   // small body 0.1, above first close
	confirm := bar(11.4, 11.5, 9.8, 9.9)  // bearish, closes below first open

	t.Run("textbook setup", func(t *testing.T) {
		if !d.isEveningStar([]models.Candle{first, star, confirm}, 2) {
			t.Error("expected evening star match")
		}
	})

	t.Run("first bar bearish", func(t *testing.T) {
		bearFirst := bar(11, 11.1, 9.9, 10)
		if d.isEveningStar([]models.Candle{bearFirst, star, confirm}, 2) {
			t.Error("evening star requires a bullish first bar")
		}
	})

	t.Run("star body too large", func(t *testing.T) {
		bigStar := bar(11.2, 11.9, 11.1, 11.8) // body 0.6 >= 0.5 * 1.0
		if d.isEveningStar([]models.Candle{first, bigStar, confirm}, 2) {
			t.Error("star body at or above half the first body must not match")
		}
	})

	t.Run("no gap above star close", func(t *testing.T) {
		noGap := bar(11.3, 11.5, 9.8, 9.9) // opens at star close, not above
		if d.isEveningStar([]models.Candle{first, star, noGap}, 2) {
			t.Error("third bar must open above the star's close")
		}
	})

	t.Run("weak confirmation close", func(t *testing.T) {
		shallow := bar(11.4, 11.5, 10.2, 10.5) // bearish but closes above first open
		if d.isEveningStar([]models.Candle{first, star, shallow}, 2) {
			t.Error("third bar must close below the first bar's open")
		}
	})
}

func TestThreeWhiteSoldiers(t *testing.T) {
	d := NewCandlestickDetector()

	staircase := []models.Candle{
		bar(10, 10.6, 9.9, 10.5),
		bar(10.2, 11.1, 10.1, 11.0),
		bar(10.7, 11.6, 10.6, 11.5),
	}

	t.Run("staircase matches", func(t *testing.T) {
		if !d.isThreeWhiteSoldiers(staircase, 2) {
			t.Error("expected three white soldiers match")
		}
	})

	t.Run("middle bar bearish", func(t *testing.T) {
		broken := []models.Candle{staircase[0], bar(11.0, 11.1, 10.1, 10.2), staircase[2]}
		if d.isThreeWhiteSoldiers(broken, 2) {
			t.Error("all three bars must be bullish")
		}
	})

	t.Run("equal closes break the staircase", func(t *testing.T) {
		level := []models.Candle{
			bar(10, 10.6, 9.9, 10.5),
			bar(10.2, 11.1, 10.1, 10.5),
			bar(10.7, 11.6, 10.6, 11.5),
		}
		if d.isThreeWhiteSoldiers(level, 2) {
			t.Error("closes must be strictly increasing")
		}
	})
}

func TestDetectInsufficientHistory(t *testing.T) {
	d := NewCandlestickDetector()

	// A 2-bar series can never yield any 3-bar pattern.
	two := []models.Candle{
		bar(10, 10.6, 9.9, 10.5),
		bar(10.2, 11.1, 10.1, 11.0),
	}
	found, err := d.Detect(two)
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	for _, p := range found {
		if p.Name == PatternEveningStar || p.Name == PatternThreeWhiteSoldiers {
			t.Errorf("3-bar pattern %q matched on a 2-bar series", p.Name)
		}
	}

	// Empty and single-bar input must be silent, not an error.
	if found, err := d.Detect(nil); err != nil || len(found) != 0 {
		t.Errorf("Detect(nil) = %v, %v, want empty", names(found), err)
	}
}

func TestDetectSkipsMalformedWindows(t *testing.T) {
	d := NewCandlestickDetector()

	candles := []models.Candle{
		bar(9.5, 10, 9.4, 9.9),
		{Open: 10.01, High: math.NaN(), Low: 10.01, Close: 10.5}, // malformed
		bar(10.01, 10.8, 10.01, 10.5),
	}
	found, err := d.Detect(candles)
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	for _, p := range found {
		for i := p.StartIndex; i <= p.EndIndex; i++ {
			if !candles[i].IsValid() {
				t.Errorf("pattern %q matched over malformed candle at %d", p.Name, i)
			}
		}
	}
}

// The worked strict-gap example: bar 2's low must be strictly above bar 1's
// high for a Rising Window.
func TestRisingWindowGapBoundaryExample(t *testing.T) {
	d := NewCandlestickDetector()

	first := bar(10, 10.5, 9.5, 10.05)

	overlapping := bar(10.1, 12, 10.05, 11.9) // low 10.05 <= high 10.5
	found, err := d.Detect([]models.Candle{first, overlapping})
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if contains(found, PatternRisingWindow) {
		t.Error("overlapping second bar must not produce a Rising Window")
	}

	gapped := bar(10.7, 12, 10.6, 11.9) // low 10.6 > high 10.5
	found, err = d.Detect([]models.Candle{first, gapped})
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}
	if !contains(found, PatternRisingWindow) {
		t.Errorf("gapped second bar should produce a Rising Window, got %v", names(found))
	}
}

func TestDetectOrderingWithinBar(t *testing.T) {
	d := NewCandlestickDetector()

	// A bar that is simultaneously a Doji (tiny body) ending a gapped pair
	// would report patterns in declared order. Here we force Doji plus Rising
	// Window on the same bar: tiny bullish body, gapping above the previous
	// bullish bar.
	candles := []models.Candle{
		bar(9.5, 10, 9.4, 9.9),
		bar(10.6, 11.6, 10.5, 10.65), // body 0.05, range 1.1, low > prev high
	}
	found := d.DetectAt(candles, 1)
	got := names(found)
	want := []string{PatternDoji, PatternRisingWindow}
	if len(got) != len(want) {
		t.Fatalf("DetectAt = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pattern %d = %q, want %q (declared order)", i, got[i], want[i])
		}
	}
}

func TestCatalogMatchesDetectorOrder(t *testing.T) {
	catalog := Catalog()
	want := []string{PatternHammer, PatternDoji, PatternRisingWindow, PatternEveningStar, PatternThreeWhiteSoldiers}
	if len(catalog) != len(want) {
		t.Fatalf("catalog has %d entries, want %d", len(catalog), len(want))
	}
	for i, info := range catalog {
		if info.Name != want[i] {
			t.Errorf("catalog[%d] = %q, want %q", i, info.Name, want[i])
		}
		if _, ok := Lookup(info.Name); !ok {
			t.Errorf("Lookup(%q) failed", info.Name)
		}
	}
	if _, ok := Lookup("Abandoned Baby"); ok {
		t.Error("Lookup must reject unknown pattern names")
	}
}
