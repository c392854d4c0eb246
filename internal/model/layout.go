package model

import (
	"strconv"
	"time"
)

// Timestamp formats written to and accepted from dataset files.
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormat     = "2006-01-02"
)

// Layout is the ordered column set of a dataset file.
type Layout struct {
	Name    string
	Columns []string
}

var (
	// OHLCV is the unified layout used for Yahoo and Polygon data.
	OHLCV = Layout{
		Name:    "ohlcv",
		Columns: []string{"datetime", "open", "high", "low", "close", "volume"},
	}
	// Binance keeps the exchange's kline microstructure fields.
	Binance = Layout{
		Name: "binance",
		Columns: []string{
			"open_time", "open", "high", "low", "close", "volume",
			"close_time", "quote_asset_volume", "num_trades",
			"taker_buy_base_vol", "taker_buy_quote_vol",
		},
	}
)

// LayoutByName returns the layout registered under name.
func LayoutByName(name string) (Layout, bool) {
	switch name {
	case OHLCV.Name:
		return OHLCV, true
	case Binance.Name:
		return Binance, true
	}
	return Layout{}, false
}

// Record renders c as a CSV record in layout order. When dateOnly is set the open time
// is written as YYYY-MM-DD.
func (l Layout) Record(c Candle, dateOnly bool) []string {
	rec := make([]string, len(l.Columns))
	for i, col := range l.Columns {
		switch col {
		case "datetime", "open_time":
			if dateOnly {
				rec[i] = c.Time.Format(DateFormat)
			} else {
				rec[i] = c.Time.Format(DateTimeFormat)
			}
		case "open":
			rec[i] = floatStr(c.Open)
		case "high":
			rec[i] = floatStr(c.High)
		case "low":
			rec[i] = floatStr(c.Low)
		case "close":
			rec[i] = floatStr(c.Close)
		case "volume":
			rec[i] = floatStr(c.Volume)
		case "close_time":
			rec[i] = formatOptionalTime(c.CloseTime)
		case "quote_asset_volume":
			rec[i] = floatStr(c.QuoteVolume)
		case "num_trades":
			rec[i] = strconv.FormatInt(c.Trades, 10)
		case "taker_buy_base_vol":
			rec[i] = floatStr(c.TakerBuyBase)
		case "taker_buy_quote_vol":
			rec[i] = floatStr(c.TakerBuyQuote)
		}
	}
	return rec
}

func formatOptionalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeFormat)
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// ParseTime accepts both timestamp formats used in dataset files.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	return time.Parse(DateFormat, s)
}
