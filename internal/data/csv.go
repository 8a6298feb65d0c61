// Package data provides CSV ingestion and timeframe aggregation for OHLCV
// series. Column names are accepted case-insensitively and normalized into
// canonical candles before any detection runs.
package data

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"candlescan/internal/errors"
	"candlescan/internal/models"
)

// csvRow mirrors one raw CSV row. All fields are read as strings so a single
// bad cell drops that row instead of failing the whole file.
type csvRow struct {
	Date     string `csv:"date"`
	Time     string `csv:"time"`
	Datetime string `csv:"datetime"`
	Open     string `csv:"open"`
	High     string `csv:"high"`
	Low      string `csv:"low"`
	Close    string `csv:"close"`
	Volume   string `csv:"volume"`
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02-01-2006 15:04:05",
	"02-01-2006",
}

// LoadCSV reads one CSV file into base-timeframe candles. Headers are matched
// case-insensitively; the timestamp comes from a datetime column, or date and
// time columns combined, or a bare date column. Rows with unparseable numeric
// or timestamp values are dropped. Candles are returned sorted by timestamp.
func LoadCSV(path string) ([]models.Candle, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errors.NewDataError(path, "read file", err)
	}

	normalized, err := normalizeHeader(string(raw))
	if err != nil {
		return nil, 0, errors.NewDataError(path, "invalid header", err)
	}

	var rows []*csvRow
	if err := gocsv.UnmarshalString(normalized, &rows); err != nil {
		return nil, 0, errors.NewDataError(path, "parse csv", err)
	}
	if len(rows) == 0 {
		return nil, 0, errors.NewDataError(path, "file has no data rows", nil)
	}

	candles := make([]models.Candle, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		c, ok := parseRow(row)
		if !ok {
			dropped++
			continue
		}
		candles = append(candles, c)
	}
	if len(candles) == 0 {
		return nil, dropped, errors.NewDataError(path, "no parseable rows", nil)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, dropped, nil
}

// normalizeHeader lowercases and trims the header line so gocsv tag matching
// accepts any column casing, and verifies the required columns are present.
func normalizeHeader(content string) (string, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	idx := strings.IndexAny(content, "\r\n")
	if idx < 0 {
		return "", errors.ErrDataNotFound
	}
	header := strings.ToLower(content[:idx])
	cols := make(map[string]bool)
	for _, col := range strings.Split(header, ",") {
		cols[strings.TrimSpace(strings.Trim(strings.TrimSpace(col), `"`))] = true
	}
	for _, required := range []string{"open", "high", "low", "close"} {
		if !cols[required] {
			return "", errors.Wrapf(errors.ErrInvalidSeries, "missing required column %q", required)
		}
	}
	if !cols["date"] && !cols["datetime"] {
		return "", errors.Wrap(errors.ErrInvalidSeries, "missing date or datetime column")
	}
	return header + content[idx:], nil
}

func parseRow(row *csvRow) (models.Candle, bool) {
	ts, ok := parseTimestamp(row)
	if !ok {
		return models.Candle{}, false
	}

	o, err1 := strconv.ParseFloat(strings.TrimSpace(row.Open), 64)
	h, err2 := strconv.ParseFloat(strings.TrimSpace(row.High), 64)
	l, err3 := strconv.ParseFloat(strings.TrimSpace(row.Low), 64)
	c, err4 := strconv.ParseFloat(strings.TrimSpace(row.Close), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return models.Candle{}, false
	}

	// Volume is optional; missing or bad volume reads as zero.
	v, err := strconv.ParseFloat(strings.TrimSpace(row.Volume), 64)
	if err != nil {
		v = 0
	}

	return models.Candle{
		Timestamp: ts,
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    v,
	}, true
}

func parseTimestamp(row *csvRow) (time.Time, bool) {
	value := strings.TrimSpace(row.Datetime)
	if value == "" {
		value = strings.TrimSpace(row.Date)
		if t := strings.TrimSpace(row.Time); t != "" {
			value = value + " " + t
		}
	}
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// SliceRange returns the candles within [from, to] inclusive. Zero bounds
// are open-ended. The end bound covers the whole end day when it has no
// time-of-day component.
func SliceRange(candles []models.Candle, from, to time.Time) []models.Candle {
	if !to.IsZero() && to.Equal(to.Truncate(24*time.Hour)) {
		to = to.Add(24*time.Hour - time.Second)
	}
	out := make([]models.Candle, 0, len(candles))
	for _, c := range candles {
		if !from.IsZero() && c.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && c.Timestamp.After(to) {
			continue
		}
		out = append(out, c)
	}
	return out
}
