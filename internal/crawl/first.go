package crawl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/budydeveloper/crypto-dataset/internal/model"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
)

// Epoch is where history searches begin.
var Epoch = time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)

// ErrNoData is returned when a symbol has no candles between Epoch and now.
var ErrNoData = errors.New("no data available")

const (
	probeDay     = 24 * time.Hour
	scanStepDays = 30
)

// FirstAvailable finds the open time of the earliest candle for q.Symbol and q.Interval.
// A coarse forward scan in 30-day steps finds the first non-empty day probe, then a binary
// search over the days since the last empty probe narrows it to the earliest non-empty day.
// Probe errors count as empty.
func FirstAvailable(ctx context.Context, dp provider.DataProvider, q provider.Query, now time.Time) (time.Time, error) {
	probe := func(day time.Time) (time.Time, bool) {
		pq := q
		pq.From, pq.To, pq.Period, pq.Limit = day, day.Add(probeDay), "", 1
		candles, err := dp.Fetch(ctx, pq)
		if err != nil {
			slog.Debug("probe failed, treating as empty", "ticker", q.Symbol, "day", day.Format(model.DateFormat), "error", err)
			return time.Time{}, false
		}
		if len(candles) == 0 {
			return time.Time{}, false
		}
		return candles[0].Time, true
	}

	var lastEmpty, hitDay, hitTime time.Time
	for d := Epoch; d.Before(now); d = d.AddDate(0, 0, scanStepDays) {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}
		if t, ok := probe(d); ok {
			hitDay, hitTime = d, t
			break
		}
		lastEmpty = d
	}
	if hitDay.IsZero() {
		return time.Time{}, ErrNoData
	}

	// Days before base are known empty, day base+hi is known non-empty.
	base := Epoch
	if !lastEmpty.IsZero() {
		base = lastEmpty.Add(probeDay)
	}
	lo, hi := 0, int(hitDay.Sub(base)/probeDay)
	for lo < hi {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}
		mid := (lo + hi) / 2
		if t, ok := probe(base.Add(time.Duration(mid) * probeDay)); ok {
			hi, hitTime = mid, t
		} else {
			lo = mid + 1
		}
	}
	slog.Info("first available candle", "ticker", q.Symbol, "interval", q.Interval.Name, "time", hitTime.Format(model.DateTimeFormat))
	return hitTime, nil
}
