package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"candlescan/internal/config"
	"candlescan/internal/logging"
	"candlescan/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.ScanStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Database.Enabled {
		s, err := store.NewSQLiteStore(cfg.Database.Path)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize scan history store, history disabled")
		} else {
			app.Store = s
			logger.Debug().Str("path", cfg.Database.Path).Msg("SQLite store initialized")
		}
	}

	rootCmd := &cobra.Command{
		Use:   "candlescan",
		Short: "Candlestick pattern scanner for OHLCV CSV data",
		Long: `candlescan detects named candlestick patterns (Hammer, Doji, Rising Window,
Evening Star, Three White Soldiers) in OHLCV time-series data loaded from CSV
files, across multiple symbols and timeframes.

Use 'candlescan patterns' to list the supported patterns and
'candlescan scan' to scan every data file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/candlescan)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newDetectCmd(app))
	rootCmd.AddCommand(newPatternsCmd(app))
	rootCmd.AddCommand(newDataCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("candlescan v%s\n", Version)
			}
		},
	}
}
