package patterns

import "candlescan/internal/analysis"

// Pattern names as they appear in scan output.
const (
	PatternHammer             = "Hammer"
	PatternDoji               = "Doji"
	PatternRisingWindow       = "Rising Window"
	PatternEveningStar        = "Evening Star"
	PatternThreeWhiteSoldiers = "Three White Soldiers"
)

// Info describes a supported pattern for listing and filtering.
type Info struct {
	Name        string
	WindowSize  int
	Direction   analysis.PatternDirection
	Description string
}

// Catalog returns the supported patterns in their declared detection order.
// This order governs match ordering within a single bar.
func Catalog() []Info {
	return []Info{
		{
			Name:        PatternHammer,
			WindowSize:  1,
			Direction:   analysis.PatternBullish,
			Description: "Small body at the top of the range with a long lower wick, after a local downtrend.",
		},
		{
			Name:        PatternDoji,
			WindowSize:  1,
			Direction:   analysis.PatternNeutral,
			Description: "Open and close nearly equal relative to the bar's range; indecision.",
		},
		{
			Name:        PatternRisingWindow,
			WindowSize:  2,
			Direction:   analysis.PatternBullish,
			Description: "Two bullish bars with a true price gap: current low above previous high.",
		},
		{
			Name:        PatternEveningStar,
			WindowSize:  3,
			Direction:   analysis.PatternBearish,
			Description: "Bullish bar, small star gapping up, then a bearish bar closing below the first open.",
		},
		{
			Name:        PatternThreeWhiteSoldiers,
			WindowSize:  3,
			Direction:   analysis.PatternBullish,
			Description: "Three bullish bars with successively higher opens and closes.",
		},
	}
}

// Lookup returns the catalog entry for a pattern name, matching
// case-sensitively on the canonical name.
func Lookup(name string) (Info, bool) {
	for _, info := range Catalog() {
		if info.Name == name {
			return info, true
		}
	}
	return Info{}, false
}
