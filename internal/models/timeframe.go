package models

import (
	"fmt"
	"time"
)

// Timeframe represents a bar aggregation interval.
type Timeframe struct {
	Code   string        // short identifier used in config and CLI flags
	Label  string        // human-readable display name
	Bucket time.Duration // aggregation bucket size
}

// BaseTimeframe is the resolution the raw CSV data is assumed to be in.
var BaseTimeframe = Timeframe{Code: "1min", Label: "1 Minute", Bucket: time.Minute}

// AvailableTimeframes returns the supported timeframes in ascending order.
func AvailableTimeframes() []Timeframe {
	return []Timeframe{
		BaseTimeframe,
		{Code: "5min", Label: "5 Minutes", Bucket: 5 * time.Minute},
		{Code: "15min", Label: "15 Minutes", Bucket: 15 * time.Minute},
		{Code: "30min", Label: "30 Minutes", Bucket: 30 * time.Minute},
		{Code: "1hour", Label: "1 Hour", Bucket: time.Hour},
	}
}

// ParseTimeframe resolves a timeframe code to its definition.
func ParseTimeframe(code string) (Timeframe, error) {
	for _, tf := range AvailableTimeframes() {
		if tf.Code == code {
			return tf, nil
		}
	}
	return Timeframe{}, fmt.Errorf("unknown timeframe: %s", code)
}

func (t Timeframe) String() string {
	return t.Code
}
