package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"candlescan/internal/analysis"
	"candlescan/internal/analysis/patterns"
	"candlescan/internal/data"
	"candlescan/internal/errors"
	"candlescan/internal/logging"
	"candlescan/internal/models"
	"candlescan/internal/scanner"
	"candlescan/pkg/utils"
)

func newScanCmd(app *App) *cobra.Command {
	var (
		dirFlag       string
		timeframeFlag string
		symbolFlag    string
		patternFlag   string
		fromFlag      string
		toFlag        string
		workersFlag   int
		saveFlag      bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan every data file for candlestick patterns",
		Long: `Scan loads every CSV file in the data directory, resamples each one to the
configured timeframes, and reports every pattern occurrence. A file that
fails to load or validate is reported as an error without stopping the scan.`,
		Example: `  candlescan scan
  candlescan scan --timeframe 15min --pattern "Rising Window"
  candlescan scan --symbol "Apple" --from 2024-01-01 --to 2024-03-31
  candlescan scan --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			logger := logging.WithOperation(app.Logger, "scan")

			from, err := parseTimeFlag(fromFlag)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			to, err := parseTimeFlag(toFlag)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}

			timeframes, err := resolveTimeframes(app, timeframeFlag)
			if err != nil {
				return err
			}
			if patternFlag != "" {
				if _, ok := patterns.Lookup(patternFlag); !ok {
					return fmt.Errorf("unknown pattern %q, see 'candlescan patterns'", patternFlag)
				}
			}

			dir := app.Config.Data.Dir
			if dirFlag != "" {
				dir = dirFlag
			}
			source := data.NewSource(dir, logger)

			files, err := source.ListFiles()
			if err != nil {
				return err
			}
			if symbolFlag != "" {
				files = filterFiles(files, symbolFlag)
				if len(files) == 0 {
					return errors.Wrapf(errors.ErrSymbolNotFound, "no data file matches %q", symbolFlag)
				}
			}
			if len(files) == 0 {
				return errors.Wrapf(errors.ErrNoData, "no CSV files in %s", dir)
			}

			series, loadErrors := loadAllSeries(source, files, timeframes, from, to)

			workers := app.Config.Scanner.Workers
			if cmd.Flags().Changed("workers") {
				workers = workersFlag
			}
			sc := scanner.New(
				scanner.WithWorkers(workers),
				scanner.WithLogger(logger),
				scanner.WithDetectors(patterns.NewCandlestickDetectorWithThresholds(patterns.Thresholds{
					DojiBodyRatioMax:   app.Config.Detector.DojiBodyRatioMax,
					HammerWickRatio:    app.Config.Detector.HammerWickRatio,
					HammerUpperWickMax: app.Config.Detector.HammerUpperWickMax,
					StarBodyRatioMax:   app.Config.Detector.StarBodyRatioMax,
					TrendLookback:      app.Config.Detector.TrendLookback,
				})),
			)

			result, err := sc.Scan(cmd.Context(), series)
			if err != nil {
				if errors.Is(err, errors.ErrNoData) && len(loadErrors) > 0 {
					result = &scanner.ScanResult{Started: time.Now()}
				} else {
					return err
				}
			}
			result.Errors = append(loadErrors, result.Errors...)

			matches := result.Matches
			if patternFlag != "" {
				matches = filterMatches(matches, patternFlag)
			}

			logging.LogScanSummary(logger, len(series), len(matches), len(result.Errors), result.Duration)

			if app.Store != nil && saveFlag {
				saved := *result
				saved.Matches = matches
				if id, err := app.Store.SaveScan(cmd.Context(), len(series), &saved); err != nil {
					logger.Warn().Err(err).Msg("Failed to save scan history")
				} else {
					logger.Debug().Int64("scan_id", id).Msg("Scan history saved")
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"series_scanned": len(series),
					"matches":        matches,
					"errors":         result.Errors,
					"warnings":       result.Warnings,
					"duration_ms":    result.Duration.Milliseconds(),
				})
			}

			printMatches(output, matches)
			printScanErrors(output, result.Errors, result.Warnings)
			output.Printf("\n")
			output.Info("Scanned %s series, %s matches, %d errors in %s",
				utils.FormatCount(len(series)), utils.FormatCount(len(matches)),
				len(result.Errors), result.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", "", "data directory (default: from config)")
	cmd.Flags().StringVarP(&timeframeFlag, "timeframe", "t", "", "scan a single timeframe (1min, 5min, 15min, 30min, 1hour)")
	cmd.Flags().StringVarP(&symbolFlag, "symbol", "s", "", "only scan files whose symbol matches")
	cmd.Flags().StringVarP(&patternFlag, "pattern", "p", "", "only report a single pattern")
	cmd.Flags().StringVar(&fromFlag, "from", "", "start of the scan range (YYYY-MM-DD or 'YYYY-MM-DD HH:MM:SS')")
	cmd.Flags().StringVar(&toFlag, "to", "", "end of the scan range, inclusive")
	cmd.Flags().IntVarP(&workersFlag, "workers", "w", scanner.DefaultWorkers, "number of concurrent series scans")
	cmd.Flags().BoolVar(&saveFlag, "save", false, "save the scan results to history")

	return cmd
}

// resolveTimeframes returns the configured timeframes, or only the requested
// one when --timeframe is set.
func resolveTimeframes(app *App, code string) ([]models.Timeframe, error) {
	if code != "" {
		tf, err := models.ParseTimeframe(code)
		if err != nil {
			return nil, err
		}
		return []models.Timeframe{tf}, nil
	}
	tfs := app.Config.Timeframes()
	if len(tfs) == 0 {
		tfs = models.AvailableTimeframes()
	}
	return tfs, nil
}

func filterFiles(files []data.FileInfo, symbol string) []data.FileInfo {
	needle := strings.ToLower(symbol)
	var out []data.FileInfo
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.Symbol), needle) {
			out = append(out, f)
		}
	}
	return out
}

// loadAllSeries loads each file at each timeframe. A file that fails to load
// contributes one ScanError per timeframe and is skipped.
func loadAllSeries(source *data.Source, files []data.FileInfo, timeframes []models.Timeframe, from, to time.Time) ([]models.Series, []scanner.ScanError) {
	var series []models.Series
	var loadErrors []scanner.ScanError
	for _, f := range files {
		for _, tf := range timeframes {
			s, err := source.LoadSeries(f.Name, tf, from, to)
			if err != nil {
				loadErrors = append(loadErrors, scanner.ScanError{
					Symbol:    f.Symbol,
					Timeframe: tf.Code,
					Reason:    err.Error(),
				})
				continue
			}
			series = append(series, s)
		}
	}
	return series, loadErrors
}

func filterMatches(matches []scanner.PatternMatch, pattern string) []scanner.PatternMatch {
	var out []scanner.PatternMatch
	for _, m := range matches {
		if m.Pattern == pattern {
			out = append(out, m)
		}
	}
	return out
}

func printMatches(output *Output, matches []scanner.PatternMatch) {
	if len(matches) == 0 {
		output.Dim("No patterns found.")
		return
	}
	output.Bold("%-24s %-10s %-22s %-8s %s", "SYMBOL", "TIMEFRAME", "PATTERN", "SIGNAL", "TIMESTAMP")
	for _, m := range matches {
		line := fmt.Sprintf("%-24s %-10s %-22s %-8s %s",
			m.Symbol, m.Timeframe, m.Pattern, directionLabel(m.Direction),
			m.Timestamp.Format("2006-01-02 15:04:05"))
		switch m.Direction {
		case analysis.PatternBullish:
			output.Bullish("%s", line)
		case analysis.PatternBearish:
			output.Bearish("%s", line)
		default:
			output.Println(line)
		}
	}
}

func printScanErrors(output *Output, errs, warnings []scanner.ScanError) {
	if len(errs) > 0 {
		output.Printf("\n")
		output.Warning("%d series could not be scanned:", len(errs))
		for _, e := range errs {
			output.Error("  %s [%s]: %s", e.Symbol, e.Timeframe, e.Reason)
		}
	}
	for _, w := range warnings {
		output.Dim("  warning: %s [%s]: %s", w.Symbol, w.Timeframe, w.Reason)
	}
}

func directionLabel(d analysis.PatternDirection) string {
	switch d {
	case analysis.PatternBullish:
		return "BULL"
	case analysis.PatternBearish:
		return "BEAR"
	default:
		return "NEUTRAL"
	}
}

// parseTimeFlag parses a --from/--to value as a datetime or a bare date.
func parseTimeFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", value)
}
