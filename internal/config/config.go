// Package config provides configuration management for the pattern scanner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"candlescan/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Detector DetectorConfig `mapstructure:"detector"`
	Scanner  ScannerConfig  `mapstructure:"scanner"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig holds data source configuration.
type DataConfig struct {
	Dir        string   `mapstructure:"dir"`
	Timeframes []string `mapstructure:"timeframes"`
}

// DetectorConfig holds the detection threshold constants. They map directly
// onto patterns.Thresholds so boundary values can be probed from config.
type DetectorConfig struct {
	DojiBodyRatioMax   float64 `mapstructure:"doji_body_ratio_max"`
	HammerWickRatio    float64 `mapstructure:"hammer_wick_ratio"`
	HammerUpperWickMax float64 `mapstructure:"hammer_upper_wick_max"`
	StarBodyRatioMax   float64 `mapstructure:"star_body_ratio_max"`
	TrendLookback      int     `mapstructure:"trend_lookback"`
}

// ScannerConfig holds scan orchestration configuration.
type ScannerConfig struct {
	Workers int `mapstructure:"workers"`
}

// DatabaseConfig holds the scan-history store configuration.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Console  bool   `mapstructure:"console"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/candlescan"
	}
	return filepath.Join(home, ".config", "candlescan")
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used. A missing config file yields
// defaults and writes a template for the user to edit.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := writeTemplate(configDir); err != nil {
			return nil, fmt.Errorf("writing config template: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("data.dir", filepath.Join(configDir, "data"))
	v.SetDefault("data.timeframes", []string{"1min", "5min", "15min", "30min", "1hour"})

	v.SetDefault("detector.doji_body_ratio_max", 0.10)
	v.SetDefault("detector.hammer_wick_ratio", 2.0)
	v.SetDefault("detector.hammer_upper_wick_max", 1.0)
	v.SetDefault("detector.star_body_ratio_max", 0.5)
	v.SetDefault("detector.trend_lookback", 3)

	v.SetDefault("scanner.workers", 4)

	v.SetDefault("database.enabled", true)
	v.SetDefault("database.path", filepath.Join(configDir, "candlescan.db"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", false)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "candlescan.log"))
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CANDLESCAN_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("CANDLESCAN_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CANDLESCAN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CANDLESCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scanner.Workers = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Detector.DojiBodyRatioMax <= 0 || c.Detector.DojiBodyRatioMax > 1 {
		return fmt.Errorf("detector.doji_body_ratio_max must be in (0, 1]")
	}
	if c.Detector.HammerWickRatio <= 0 {
		return fmt.Errorf("detector.hammer_wick_ratio must be positive")
	}
	if c.Detector.HammerUpperWickMax <= 0 {
		return fmt.Errorf("detector.hammer_upper_wick_max must be positive")
	}
	if c.Detector.StarBodyRatioMax <= 0 || c.Detector.StarBodyRatioMax > 1 {
		return fmt.Errorf("detector.star_body_ratio_max must be in (0, 1]")
	}
	if c.Detector.TrendLookback < 1 {
		return fmt.Errorf("detector.trend_lookback must be at least 1")
	}
	if c.Scanner.Workers < 0 {
		return fmt.Errorf("scanner.workers must be non-negative")
	}
	for _, code := range c.Data.Timeframes {
		if _, err := models.ParseTimeframe(code); err != nil {
			return fmt.Errorf("data.timeframes: %w", err)
		}
	}
	return nil
}

// Timeframes resolves the configured timeframe codes. Validate must have
// accepted the config first.
func (c *Config) Timeframes() []models.Timeframe {
	out := make([]models.Timeframe, 0, len(c.Data.Timeframes))
	for _, code := range c.Data.Timeframes {
		tf, err := models.ParseTimeframe(code)
		if err != nil {
			continue
		}
		out = append(out, tf)
	}
	return out
}

func writeTemplate(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	template := `# candlescan configuration

[data]
# Directory containing OHLCV CSV files (one file per symbol).
# dir = "/path/to/data"
timeframes = ["1min", "5min", "15min", "30min", "1hour"]

[detector]
doji_body_ratio_max = 0.10
hammer_wick_ratio = 2.0
hammer_upper_wick_max = 1.0
star_body_ratio_max = 0.5
trend_lookback = 3

[scanner]
workers = 4

[database]
enabled = true
# path = "/path/to/candlescan.db"

[logging]
level = "info"
console = true
file = false
`
	return os.WriteFile(path, []byte(template), 0644)
}
