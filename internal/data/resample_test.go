package data

import (
	"testing"
	"time"

	"candlescan/internal/models"
)

func minuteBars(start time.Time, ohlcv ...[5]float64) []models.Candle {
	out := make([]models.Candle, len(ohlcv))
	for i, v := range ohlcv {
		out[i] = models.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Open:      v[0],
			High:      v[1],
			Low:       v[2],
			Close:     v[3],
			Volume:    v[4],
		}
	}
	return out
}

func TestResampleFiveMinute(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC)
	candles := minuteBars(start,
		[5]float64{10, 10.5, 9.8, 10.2, 100},
		[5]float64{10.2, 10.9, 10.1, 10.7, 200},
		[5]float64{10.7, 11.2, 10.5, 10.6, 150},
		[5]float64{10.6, 10.8, 9.5, 9.9, 300},
		[5]float64{9.9, 10.1, 9.7, 10.0, 250},
	)

	tf, _ := models.ParseTimeframe("5min")
	out := Resample(candles, tf)

	if len(out) != 1 {
		t.Fatalf("got %d buckets, want 1", len(out))
	}
	b := out[0]
	if !b.Timestamp.Equal(start) {
		t.Errorf("bucket start = %v, want %v", b.Timestamp, start)
	}
	if b.Open != 10 {
		t.Errorf("open = %v, want first bar's open 10", b.Open)
	}
	if b.High != 11.2 {
		t.Errorf("high = %v, want max 11.2", b.High)
	}
	if b.Low != 9.5 {
		t.Errorf("low = %v, want min 9.5", b.Low)
	}
	if b.Close != 10.0 {
		t.Errorf("close = %v, want last bar's close 10.0", b.Close)
	}
	if b.Volume != 1000 {
		t.Errorf("volume = %v, want sum 1000", b.Volume)
	}
}

func TestResampleDropsEmptyBuckets(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	candles := []models.Candle{
		{Timestamp: start, Open: 10, High: 10.5, Low: 9.5, Close: 10.2, Volume: 100},
		// A 20-minute hole; the 09:05 and 09:10 buckets have no bars.
		{Timestamp: start.Add(20 * time.Minute), Open: 10.2, High: 10.8, Low: 10.1, Close: 10.5, Volume: 200},
	}

	tf, _ := models.ParseTimeframe("5min")
	out := Resample(candles, tf)

	if len(out) != 2 {
		t.Fatalf("got %d buckets, want 2 (empty buckets dropped)", len(out))
	}
	if !out[0].Timestamp.Equal(start) || !out[1].Timestamp.Equal(start.Add(20*time.Minute)) {
		t.Errorf("bucket starts = %v, %v", out[0].Timestamp, out[1].Timestamp)
	}
}

func TestResampleBaseTimeframeIsNoOp(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC)
	candles := minuteBars(start,
		[5]float64{10, 10.5, 9.8, 10.2, 100},
		[5]float64{10.2, 10.9, 10.1, 10.7, 200},
	)

	out := Resample(candles, models.BaseTimeframe)
	if len(out) != len(candles) {
		t.Fatalf("got %d candles, want %d unchanged", len(out), len(candles))
	}
	for i := range out {
		if out[i] != candles[i] {
			t.Errorf("candle %d changed: %+v -> %+v", i, candles[i], out[i])
		}
	}
}

func TestResampleHourly(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	var candles []models.Candle
	for i := 0; i < 120; i++ {
		candles = append(candles, models.Candle{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Open:      10, High: 10.5, Low: 9.5, Close: 10.2, Volume: 10,
		})
	}

	tf, _ := models.ParseTimeframe("1hour")
	out := Resample(candles, tf)

	if len(out) != 2 {
		t.Fatalf("got %d buckets, want 2", len(out))
	}
	if out[0].Volume != 600 || out[1].Volume != 600 {
		t.Errorf("hourly volumes = %v, %v, want 600 each", out[0].Volume, out[1].Volume)
	}
}
