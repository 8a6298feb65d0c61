package cli

import (
	"github.com/spf13/cobra"

	"candlescan/internal/analysis/patterns"
)

func newPatternsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the supported candlestick patterns",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			catalog := patterns.Catalog()

			if output.IsJSON() {
				output.JSON(catalog)
				return
			}

			output.Bold("%-22s %-6s %-8s %s", "PATTERN", "BARS", "SIGNAL", "DESCRIPTION")
			for _, info := range catalog {
				output.Printf("%-22s %-6d %-8s %s\n",
					info.Name, info.WindowSize, directionLabel(info.Direction), info.Description)
			}
		},
	}
}
