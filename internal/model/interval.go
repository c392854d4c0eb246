package model

import (
	"fmt"
	"time"
)

// Interval is a candle bucket size such as "1m" or "1d".
type Interval struct {
	Name     string
	Duration time.Duration // nominal; months and quarters are approximated
}

const day = 24 * time.Hour

var intervals = map[string]Interval{
	"1m":  {"1m", time.Minute},
	"2m":  {"2m", 2 * time.Minute},
	"5m":  {"5m", 5 * time.Minute},
	"15m": {"15m", 15 * time.Minute},
	"30m": {"30m", 30 * time.Minute},
	"60m": {"60m", time.Hour},
	"90m": {"90m", 90 * time.Minute},
	"1h":  {"1h", time.Hour},
	"1d":  {"1d", day},
	"5d":  {"5d", 5 * day},
	"1wk": {"1wk", 7 * day},
	"1mo": {"1mo", 30 * day},
	"3mo": {"3mo", 91 * day},
}

// ParseInterval looks up a known interval by name.
func ParseInterval(name string) (Interval, error) {
	iv, ok := intervals[name]
	if !ok {
		return Interval{}, fmt.Errorf("unknown interval %q", name)
	}
	return iv, nil
}

// Intraday reports whether the bucket is shorter than a day.
func (i Interval) Intraday() bool {
	return i.Duration < day
}

func (i Interval) String() string { return i.Name }
