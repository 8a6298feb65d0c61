package data

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"candlescan/internal/errors"
	"candlescan/internal/models"
)

// FileInfo describes one discovered CSV data file.
type FileInfo struct {
	Name   string // file name within the data directory
	Symbol string // display symbol derived from the file name
}

// Source loads OHLCV series from CSV files in a data directory.
type Source struct {
	dir    string
	logger zerolog.Logger
}

// NewSource creates a Source for the given data directory.
func NewSource(dir string, logger zerolog.Logger) *Source {
	return &Source{dir: dir, logger: logger}
}

// Dir returns the data directory.
func (s *Source) Dir() string {
	return s.dir
}

// ListFiles returns all CSV files in the data directory, sorted by name.
func (s *Source) ListFiles() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read data directory %s", s.dir)
	}
	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		files = append(files, FileInfo{
			Name:   e.Name(),
			Symbol: SymbolName(e.Name()),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// SymbolName derives a display symbol from a CSV file name: the extension is
// stripped, hyphens become spaces, and words are title-cased.
func SymbolName(file string) string {
	name := strings.TrimSuffix(file, filepath.Ext(file))
	name = strings.ReplaceAll(name, "-", " ")
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// LoadSeries loads one file, slices it to [from, to], and resamples it to
// the requested timeframe.
func (s *Source) LoadSeries(file string, tf models.Timeframe, from, to time.Time) (models.Series, error) {
	path := filepath.Join(s.dir, file)
	candles, dropped, err := LoadCSV(path)
	if err != nil {
		return models.Series{}, err
	}
	if dropped > 0 {
		s.logger.Warn().Str("file", file).Int("dropped", dropped).Msg("dropped unparseable rows")
	}

	candles = SliceRange(candles, from, to)
	candles = Resample(candles, tf)

	return models.Series{
		Symbol:    SymbolName(file),
		Timeframe: tf,
		Candles:   candles,
	}, nil
}
