package data

import (
	"sort"
	"time"

	"candlescan/internal/models"
)

// Resample aggregates base-timeframe candles into the target timeframe:
// open = first, high = max, low = min, close = last, volume = sum per bucket.
// Buckets with no source candles are dropped. Input must be sorted by
// timestamp; output is sorted by bucket start.
func Resample(candles []models.Candle, tf models.Timeframe) []models.Candle {
	if tf.Bucket <= models.BaseTimeframe.Bucket || len(candles) == 0 {
		return candles
	}

	type bucket struct {
		candle models.Candle
		filled bool
	}
	buckets := make(map[time.Time]*bucket)

	for _, c := range candles {
		start := c.Timestamp.Truncate(tf.Bucket)
		b, ok := buckets[start]
		if !ok {
			b = &bucket{}
			buckets[start] = b
		}
		if !b.filled {
			b.candle = models.Candle{
				Timestamp: start,
				Open:      c.Open,
				High:      c.High,
				Low:       c.Low,
				Close:     c.Close,
				Volume:    c.Volume,
			}
			b.filled = true
			continue
		}
		if c.High > b.candle.High {
			b.candle.High = c.High
		}
		if c.Low < b.candle.Low {
			b.candle.Low = c.Low
		}
		b.candle.Close = c.Close
		b.candle.Volume += c.Volume
	}

	out := make([]models.Candle, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b.candle)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
