// Package entity defines the domain models for the candles feature.
package entity

import (
	"sort"
	"strings"
	"time"
)

// Candle represents OHLCV candlestick data for a trading pair at a specific timeframe.
type Candle struct {
	Symbol    string  // Trading pair (e.g., "BTC/USDT")
	Timeframe string  // Candle width (e.g., "1h", "4h", "1d")
	Timestamp int64   // Open time in milliseconds since the Unix epoch
	Open      float64 // Opening price
	High      float64 // Highest price during this period
	Low       float64 // Lowest price during this period
	Close     float64 // Closing price
	Volume    float64 // Base asset volume
}

// Time returns the candle open time in UTC.
func (c Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

// timeframes lists the candle widths accepted by every candle source.
var timeframes = map[string]time.Duration{
	"1m":  time.Minute,
	"3m":  3 * time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"2h":  2 * time.Hour,
	"4h":  4 * time.Hour,
	"6h":  6 * time.Hour,
	"8h":  8 * time.Hour,
	"12h": 12 * time.Hour,
	"1d":  24 * time.Hour,
	"3d":  72 * time.Hour,
	"1w":  7 * 24 * time.Hour,
}

// TimeframeDuration returns the width of a timeframe and whether it is supported.
func TimeframeDuration(tf string) (time.Duration, bool) {
	d, ok := timeframes[tf]
	return d, ok
}

// NormalizeSymbol upper-cases and trims a trading pair ("btc/usdt " -> "BTC/USDT").
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeCandles returns a copy of cs ordered by timestamp ascending with
// duplicate timestamps removed (the last occurrence wins). cs is not modified.
func NormalizeCandles(cs []Candle) []Candle {
	out := make([]Candle, len(cs))
	copy(out, cs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })

	w := 0
	for i := range out {
		if w > 0 && out[w-1].Timestamp == out[i].Timestamp {
			out[w-1] = out[i]
			continue
		}
		out[w] = out[i]
		w++
	}
	return out[:w]
}
