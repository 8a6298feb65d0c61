package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"candlescan/internal/analysis"
	"candlescan/internal/analysis/patterns"
	"candlescan/internal/data"
	"candlescan/internal/logging"
	"candlescan/internal/models"
	"candlescan/pkg/utils"
)

func newDetectCmd(app *App) *cobra.Command {
	var (
		timeframeFlag string
		fromFlag      string
		toFlag        string
	)

	cmd := &cobra.Command{
		Use:   "detect <file.csv>",
		Short: "Detect patterns in a single CSV file",
		Long: `Detect loads one CSV file, resamples it to the requested timeframe, and
prints every pattern occurrence with its window. The file path is taken
relative to the data directory unless it is absolute.`,
		Example: `  candlescan detect apple-inc.csv
  candlescan detect apple-inc.csv --timeframe 30min
  candlescan detect /tmp/bars.csv --from 2024-06-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			logger := logging.WithOperation(app.Logger, "detect")

			tf := models.BaseTimeframe
			if timeframeFlag != "" {
				parsed, err := models.ParseTimeframe(timeframeFlag)
				if err != nil {
					return err
				}
				tf = parsed
			}

			from, err := parseTimeFlag(fromFlag)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			to, err := parseTimeFlag(toFlag)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}

			file := args[0]
			dir := app.Config.Data.Dir
			if filepath.IsAbs(file) {
				dir = filepath.Dir(file)
				file = filepath.Base(file)
			}
			source := data.NewSource(dir, logger)

			series, err := source.LoadSeries(file, tf, from, to)
			if err != nil {
				return err
			}
			if err := series.Validate(); err != nil {
				return err
			}

			detector := patterns.NewCandlestickDetectorWithThresholds(patterns.Thresholds{
				DojiBodyRatioMax:   app.Config.Detector.DojiBodyRatioMax,
				HammerWickRatio:    app.Config.Detector.HammerWickRatio,
				HammerUpperWickMax: app.Config.Detector.HammerUpperWickMax,
				StarBodyRatioMax:   app.Config.Detector.StarBodyRatioMax,
				TrendLookback:      app.Config.Detector.TrendLookback,
			})
			found, err := detector.Detect(series.Candles)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":    series.Symbol,
					"timeframe": tf.Code,
					"bars":      len(series.Candles),
					"patterns":  found,
				})
			}

			output.Bold("%s  [%s]  %s bars, %s to %s",
				series.Symbol, tf.Code, utils.FormatCount(len(series.Candles)),
				series.Candles[0].Timestamp.Format("2006-01-02 15:04"),
				series.Candles[len(series.Candles)-1].Timestamp.Format("2006-01-02 15:04"))
			output.Printf("\n")

			if len(found) == 0 {
				output.Dim("No patterns found.")
				return nil
			}
			for _, p := range found {
				bar := series.Candles[p.EndIndex]
				line := fmt.Sprintf("%-22s %-8s %s  (bars %d..%d, close %.2f, vol %s)",
					p.Name, directionLabel(p.Direction),
					bar.Timestamp.Format("2006-01-02 15:04:05"),
					p.StartIndex, p.EndIndex, bar.Close, utils.FormatVolume(bar.Volume))
				switch p.Direction {
				case analysis.PatternBullish:
					output.Bullish("%s", line)
				case analysis.PatternBearish:
					output.Bearish("%s", line)
				default:
					output.Println(line)
				}
			}
			output.Printf("\n")
			output.Info("%s patterns in %s bars", utils.FormatCount(len(found)), utils.FormatCount(len(series.Candles)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&timeframeFlag, "timeframe", "t", "", "timeframe to resample to (default: 1min)")
	cmd.Flags().StringVar(&fromFlag, "from", "", "start of the detection range (YYYY-MM-DD or 'YYYY-MM-DD HH:MM:SS')")
	cmd.Flags().StringVar(&toFlag, "to", "", "end of the detection range, inclusive")

	return cmd
}
