package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"candlescan/internal/data"
	"candlescan/internal/errors"
	"candlescan/internal/logging"
	"candlescan/pkg/utils"
)

func newDataCmd(app *App) *cobra.Command {
	var dirFlag string

	cmd := &cobra.Command{
		Use:   "data",
		Short: "List the CSV data files and their coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			logger := logging.WithOperation(app.Logger, "data")

			dir := app.Config.Data.Dir
			if dirFlag != "" {
				dir = dirFlag
			}
			source := data.NewSource(dir, logger)

			files, err := source.ListFiles()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return errors.Wrapf(errors.ErrNoData, "no CSV files in %s", dir)
			}

			type fileSummary struct {
				File    string `json:"file"`
				Symbol  string `json:"symbol"`
				Bars    int    `json:"bars"`
				Dropped int    `json:"dropped"`
				First   string `json:"first,omitempty"`
				Last    string `json:"last,omitempty"`
				Error   string `json:"error,omitempty"`
			}
			summaries := make([]fileSummary, 0, len(files))
			for _, f := range files {
				sum := fileSummary{File: f.Name, Symbol: f.Symbol}
				candles, dropped, err := data.LoadCSV(filepath.Join(source.Dir(), f.Name))
				if err != nil {
					sum.Error = err.Error()
				} else {
					sum.Bars = len(candles)
					sum.Dropped = dropped
					sum.First = candles[0].Timestamp.Format("2006-01-02 15:04")
					sum.Last = candles[len(candles)-1].Timestamp.Format("2006-01-02 15:04")
				}
				summaries = append(summaries, sum)
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"dir":   source.Dir(),
					"files": summaries,
				})
			}

			output.Info("Data directory: %s", source.Dir())
			output.Printf("\n")
			output.Bold("%-28s %-24s %-10s %-18s %s", "FILE", "SYMBOL", "BARS", "FIRST", "LAST")
			for _, sum := range summaries {
				if sum.Error != "" {
					output.Error("%-28s %-24s %s", sum.File, sum.Symbol, sum.Error)
					continue
				}
				output.Printf("%-28s %-24s %-10s %-18s %s\n",
					sum.File, sum.Symbol, utils.FormatCount(sum.Bars), sum.First, sum.Last)
				if sum.Dropped > 0 {
					output.Dim("  %d unparseable rows dropped", sum.Dropped)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dirFlag, "dir", "", "data directory (default: from config)")
	return cmd
}
