// Package dataset persists candles as per-(ticker, interval) CSV files and merges new
// downloads into existing ones without duplicating or reordering rows.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/budydeveloper/crypto-dataset/internal/model"
)

// ErrMalformed is returned when an existing file cannot be interpreted as candles.
var ErrMalformed = errors.New("malformed dataset file")

// Path returns <root>/<folder>/<ticker>_<interval>.csv.
func Path(root, folder, ticker, interval string) string {
	return filepath.Join(root, folder, fmt.Sprintf("%s_%s.csv", ticker, interval))
}

// Accepted spellings of each candle field in existing files (compared lower-cased).
var headerAliases = map[string]string{
	"date":                "time",
	"datetime":            "time",
	"open_time":           "time",
	"timestamp":           "time",
	"time":                "time",
	"open":                "open",
	"high":                "high",
	"low":                 "low",
	"close":               "close",
	"volume":              "volume",
	"close_time":          "close_time",
	"closetime":           "close_time",
	"quote_asset_volume":  "quote_volume",
	"quotevol":            "quote_volume",
	"num_trades":          "trades",
	"trades":              "trades",
	"taker_buy_base_vol":  "taker_buy_base",
	"takerbuybase":        "taker_buy_base",
	"taker_buy_quote_vol": "taker_buy_quote",
	"takerbuyquote":       "taker_buy_quote",
}

var timeLayouts = []string{
	model.DateTimeFormat,
	model.DateFormat,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339,
}

// parseLooseTime accepts the formats found in files written by older tooling.
// Zoned values are kept as wall-clock times, matching how they were displayed.
func parseLooseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Load reads every candle of an existing dataset file.
func Load(path string) ([]model.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty file: %w", path, ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %v: %w", path, err, ErrMalformed)
	}

	fields := make([]string, len(header))
	hasTime := false
	for i, h := range header {
		fields[i] = headerAliases[strings.ToLower(strings.TrimSpace(h))]
		if fields[i] == "time" {
			hasTime = true
		}
	}
	if !hasTime {
		return nil, fmt.Errorf("%s: no timestamp column in header %v: %w", path, header, ErrMalformed)
	}

	var candles []model.Candle
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %v: %w", path, line, err, ErrMalformed)
		}
		c, err := parseRecord(fields, rec)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %v: %w", path, line, err, ErrMalformed)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func parseRecord(fields, rec []string) (model.Candle, error) {
	var c model.Candle
	if len(rec) != len(fields) {
		return c, fmt.Errorf("expected %d columns, got %d", len(fields), len(rec))
	}
	for i, field := range fields {
		v := strings.TrimSpace(rec[i])
		if field == "" {
			continue
		}
		if v == "" && field != "time" {
			continue
		}
		var err error
		switch field {
		case "time":
			c.Time, err = parseLooseTime(v)
		case "close_time":
			c.CloseTime, err = parseLooseTime(v)
		case "trades":
			var f float64
			f, err = strconv.ParseFloat(v, 64)
			c.Trades = int64(f)
		default:
			var f float64
			f, err = strconv.ParseFloat(v, 64)
			setFloat(&c, field, f)
		}
		if err != nil {
			return c, fmt.Errorf("column %d: %w", i+1, err)
		}
	}
	return c, nil
}

func setFloat(c *model.Candle, field string, f float64) {
	switch field {
	case "open":
		c.Open = f
	case "high":
		c.High = f
	case "low":
		c.Low = f
	case "close":
		c.Close = f
	case "volume":
		c.Volume = f
	case "quote_volume":
		c.QuoteVolume = f
	case "taker_buy_base":
		c.TakerBuyBase = f
	case "taker_buy_quote":
		c.TakerBuyQuote = f
	}
}

// LastTime returns the latest open time among rows loaded from a dataset file, the anchor
// for resuming a download. ok is false when there are no rows.
func LastTime(candles []model.Candle) (last time.Time, ok bool) {
	for _, c := range candles {
		if !ok || c.Time.After(last) {
			last, ok = c.Time, true
		}
	}
	return last, ok
}

// Merge combines stored and freshly fetched candles. Duplicate timestamps keep the stored
// row unless preferFetched is set; the result is sorted ascending.
func Merge(existing, fetched []model.Candle, preferFetched bool) []model.Candle {
	all := make([]model.Candle, 0, len(existing)+len(fetched))
	if preferFetched {
		all = append(append(all, fetched...), existing...)
	} else {
		all = append(append(all, existing...), fetched...)
	}
	return model.Dedup(all)
}

// Write replaces path with a header row plus one row per candle. Data goes to a temp file
// in the same directory first so readers never observe a partial file.
func Write(path string, candles []model.Candle, layout model.Layout, dateOnly bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(layout.Columns); err != nil {
		tmp.Close()
		return err
	}
	for _, c := range candles {
		if err := w.Write(layout.Record(c, dateOnly)); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// Quarantine moves an unreadable file aside so it is not overwritten.
func Quarantine(path string, now time.Time) (string, error) {
	dst := fmt.Sprintf("%s.corrupt-%d", path, now.Unix())
	if err := os.Rename(path, dst); err != nil {
		return "", fmt.Errorf("quarantine %s: %w", path, err)
	}
	return dst, nil
}
