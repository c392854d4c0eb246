package model

import (
	"sort"
	"time"
)

// Candle represents one OHLCV candle (kline) for a fixed time bucket.
// Close time and the microstructure fields are only filled by providers that report them (Binance).
type Candle struct {
	Time          time.Time // open time
	Open          float64
	High          float64
	Low           float64
	Close         float64
	Volume        float64
	CloseTime     time.Time
	QuoteVolume   float64
	Trades        int64
	TakerBuyBase  float64
	TakerBuyQuote float64
}

// Dedup drops candles whose open time was already seen, keeping the first occurrence,
// then sorts ascending by open time. The input slice is not modified.
func Dedup(candles []Candle) []Candle {
	seen := make(map[int64]struct{}, len(candles))
	out := make([]Candle, 0, len(candles))
	for _, c := range candles {
		k := c.Time.UnixNano()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
