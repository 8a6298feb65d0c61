package cli

import (
	"github.com/spf13/cobra"

	"candlescan/internal/errors"
	"candlescan/internal/store"
	"candlescan/pkg/utils"
)

func newHistoryCmd(app *App) *cobra.Command {
	var (
		limitFlag     int
		symbolFlag    string
		patternFlag   string
		timeframeFlag string
		matchesFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show saved scan history",
		Long: `History lists past scan runs saved with 'scan --save'. With --matches it
lists the individual persisted pattern matches instead, newest first.`,
		Example: `  candlescan history
  candlescan history --matches --pattern Hammer --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Store == nil {
				return errors.Wrap(errors.ErrDatabaseError, "scan history store is disabled")
			}

			if matchesFlag {
				records, err := app.Store.GetMatches(cmd.Context(), store.MatchFilter{
					Symbol:    symbolFlag,
					Pattern:   patternFlag,
					Timeframe: timeframeFlag,
					Limit:     limitFlag,
				})
				if err != nil {
					return errors.Wrap(err, "query match history")
				}
				if output.IsJSON() {
					return output.JSON(records)
				}
				if len(records) == 0 {
					output.Dim("No saved matches.")
					return nil
				}
				output.Bold("%-6s %-24s %-10s %-22s %-8s %s", "SCAN", "SYMBOL", "TIMEFRAME", "PATTERN", "SIGNAL", "TIMESTAMP")
				for _, r := range records {
					output.Printf("%-6d %-24s %-10s %-22s %-8s %s\n",
						r.ScanID, r.Symbol, r.Timeframe, r.Pattern, r.Direction,
						r.Timestamp.Format("2006-01-02 15:04:05"))
				}
				return nil
			}

			records, err := app.Store.GetRecentScans(cmd.Context(), limitFlag)
			if err != nil {
				return errors.Wrap(err, "query scan history")
			}
			if output.IsJSON() {
				return output.JSON(records)
			}
			if len(records) == 0 {
				output.Dim("No saved scans. Run 'candlescan scan --save' first.")
				return nil
			}
			output.Bold("%-6s %-20s %-10s %-10s %s", "ID", "STARTED", "SERIES", "MATCHES", "ERRORS")
			for _, r := range records {
				output.Printf("%-6d %-20s %-10s %-10s %d\n",
					r.ID, r.StartedAt.Format("2006-01-02 15:04:05"),
					utils.FormatCount(r.Series), utils.FormatCount(r.Matches), r.Errors)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "maximum rows to show")
	cmd.Flags().BoolVar(&matchesFlag, "matches", false, "list individual matches instead of scan runs")
	cmd.Flags().StringVarP(&symbolFlag, "symbol", "s", "", "filter matches by symbol substring")
	cmd.Flags().StringVarP(&patternFlag, "pattern", "p", "", "filter matches by pattern substring")
	cmd.Flags().StringVarP(&timeframeFlag, "timeframe", "t", "", "filter matches by exact timeframe")

	return cmd
}
