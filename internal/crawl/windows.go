package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/budydeveloper/crypto-dataset/internal/model"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
)

// Window is one half-open query range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// SplitWindows partitions [start, end) into chunkDays-sized windows. The last window ends at end.
func SplitWindows(start, end time.Time, chunkDays int) []Window {
	if chunkDays <= 0 || !start.Before(end) {
		return nil
	}
	var out []Window
	for cur := start; cur.Before(end); {
		next := cur.AddDate(0, 0, chunkDays)
		if next.After(end) {
			next = end
		}
		out = append(out, Window{From: cur, To: next})
		cur = next
	}
	return out
}

// DownloadStats counts window outcomes of one chunked download.
type DownloadStats struct {
	Windows int
	Empty   int
	Failed  int
}

// DownloadRange queries each window of [start, end) in order and returns the concatenated
// candles, deduplicated and sorted. Empty or failing windows are logged and skipped.
func DownloadRange(ctx context.Context, dp provider.DataProvider, q provider.Query, start, end time.Time, chunkDays int) ([]model.Candle, DownloadStats) {
	windows := SplitWindows(start, end, chunkDays)
	stats := DownloadStats{Windows: len(windows)}

	var all []model.Candle
	for _, w := range windows {
		if ctx.Err() != nil {
			break
		}
		wq := q
		wq.From, wq.To, wq.Period = w.From, w.To, ""
		slog.Info("downloading window",
			"ticker", q.Symbol, "interval", q.Interval.Name,
			"from", w.From.Format(model.DateTimeFormat), "to", w.To.Format(model.DateTimeFormat))

		candles, err := dp.Fetch(ctx, wq)
		if err != nil {
			stats.Failed++
			slog.Error("window failed, skipping",
				"ticker", q.Symbol, "interval", q.Interval.Name,
				"from", w.From.Format(model.DateTimeFormat), "error", err)
			continue
		}
		if len(candles) == 0 {
			stats.Empty++
			slog.Warn("no data in window",
				"ticker", q.Symbol, "interval", q.Interval.Name,
				"from", w.From.Format(model.DateTimeFormat), "to", w.To.Format(model.DateTimeFormat))
			continue
		}
		all = append(all, candles...)
	}
	return model.Dedup(all), stats
}
