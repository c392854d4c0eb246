// Package crawl downloads candle history per ticker and interval, resuming from what is
// already stored and merging new rows into the dataset files.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/budydeveloper/crypto-dataset/internal/dataset"
	"github.com/budydeveloper/crypto-dataset/internal/model"
	"github.com/budydeveloper/crypto-dataset/internal/plan"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
	"github.com/budydeveloper/crypto-dataset/internal/tickers"
)

const heartbeatInterval = 30 * time.Second

// Runner downloads every interval of a profile for a list of tickers, one at a time.
type Runner struct {
	Provider provider.DataProvider
	Profile  *plan.Profile
	DataDir  string
	Now      func() time.Time
}

// NewRunner creates a Runner using the wall clock.
func NewRunner(dp provider.DataProvider, p *plan.Profile, dataDir string) *Runner {
	return &Runner{Provider: dp, Profile: p, DataDir: dataDir, Now: time.Now}
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now().UTC()
	}
	return r.Now().UTC()
}

// Run downloads intervals for each ticker and writes the run report into DataDir.
// Failures are recorded in the report and never stop the run.
func (r *Runner) Run(ctx context.Context, tickerList []string, intervals []plan.IntervalPlan) *Report {
	report := newReport(r.Profile.Name, r.now())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	prog := &progress{}
	go runHeartbeat(ctx, heartbeatInterval, len(tickerList)*len(intervals), prog)

	slog.Info("run started", "run_id", report.RunID, "profile", r.Profile.Name,
		"provider", r.Provider.GetName(), "tickers", len(tickerList), "intervals", len(intervals))

	for _, t := range tickerList {
		for _, ip := range intervals {
			if ctx.Err() != nil {
				break
			}
			res := r.RunInterval(ctx, t, ip)
			prog.record(res)
			report.Results = append(report.Results, res)
		}
	}

	report.FinishedAt = r.now()
	success, failed := report.Counts()
	if err := writeRunReport(r.DataDir, report); err != nil {
		slog.Warn("could not write run report", "error", err)
	}
	slog.Info("run done", "run_id", report.RunID, "success", success, "failed", failed)
	if failed > 0 {
		slog.Info("summary failed", "count", failed, "reasons", joinFailedReasons(report.Results))
	}
	return report
}

// OutputPath returns the dataset file of ticker and interval under the profile's folder rule.
func (r *Runner) OutputPath(ticker, interval string) (string, error) {
	folder, err := tickers.Folder(ticker, r.Profile.Folder, r.Profile.TrimSuffix)
	if err != nil {
		return "", err
	}
	return dataset.Path(r.DataDir, filepath.Join(folder, r.Profile.Subdir), ticker, interval), nil
}

// RunInterval downloads one interval of one ticker, merges it into the stored file and
// rewrites it.
func (r *Runner) RunInterval(ctx context.Context, ticker string, ip plan.IntervalPlan) JobResult {
	res := JobResult{Ticker: ticker, Interval: ip.Name}
	fail := func(reason string, args ...interface{}) JobResult {
		res.Reason = fmt.Sprintf(reason, args...)
		slog.Error("interval failed", "ticker", ticker, "interval", ip.Name, "reason", res.Reason)
		return res
	}

	iv, err := model.ParseInterval(ip.Name)
	if err != nil {
		return fail("%v", err)
	}
	if !provider.Supports(r.Provider, ip.Name) {
		return fail("%s does not serve interval %s", r.Provider.GetName(), ip.Name)
	}
	path, err := r.OutputPath(ticker, ip.Name)
	if err != nil {
		return fail("%v", err)
	}
	res.Path = path

	now := r.now()
	existing, err := r.loadExisting(path, now)
	if err != nil {
		return fail("%v", err)
	}

	q := provider.Query{Symbol: ticker + r.Profile.SymbolSuffix, Interval: iv}
	var fetched []model.Candle
	switch ip.Mode {
	case plan.ModePeriod:
		q.Period = ip.Period
		slog.Info("downloading period", "ticker", ticker, "interval", ip.Name, "period", ip.Period)
		fetched, err = r.Provider.Fetch(ctx, q)
		if err != nil {
			return fail("%v", err)
		}
		fetched = model.Dedup(fetched)
	default:
		start, err := r.startFor(ctx, q, ip, existing, now)
		if errors.Is(err, ErrNoData) {
			return fail("no data")
		}
		if err != nil {
			return fail("%v", err)
		}
		if !start.Before(now) {
			slog.Info("up to date", "ticker", ticker, "interval", ip.Name, "last", start.Format(model.DateTimeFormat))
			res.Ok, res.Total = true, len(existing)
			return res
		}
		var stats DownloadStats
		fetched, stats = DownloadRange(ctx, r.Provider, q, start, now, ip.ChunkDays)
		slog.Info("range downloaded", "ticker", ticker, "interval", ip.Name,
			"windows", stats.Windows, "empty", stats.Empty, "failed", stats.Failed, "rows", len(fetched))
	}

	res.Fetched = len(fetched)
	if len(fetched) == 0 {
		if len(existing) == 0 {
			return fail("no data")
		}
		slog.Warn("nothing new downloaded", "ticker", ticker, "interval", ip.Name)
		res.Ok, res.Total = true, len(existing)
		return res
	}

	dateOnly := r.Profile.Layout == model.OHLCV.Name && !iv.Intraday()
	if dateOnly {
		fetched = truncateToDay(fetched)
	}
	merged := dataset.Merge(existing, fetched, ip.PreferFetched)
	if err := dataset.Write(path, merged, r.Profile.LayoutModel(), dateOnly); err != nil {
		return fail("%v", err)
	}
	res.Ok, res.Total = true, len(merged)
	slog.Info("saved", "ticker", ticker, "interval", ip.Name, "path", path, "fetched", res.Fetched, "total", res.Total)
	return res
}

// loadExisting reads the stored file. A malformed file is quarantined and treated as absent.
func (r *Runner) loadExisting(path string, now time.Time) ([]model.Candle, error) {
	existing, err := dataset.Load(path)
	switch {
	case err == nil:
		return existing, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, nil
	case errors.Is(err, dataset.ErrMalformed):
		dst, qerr := dataset.Quarantine(path, now)
		if qerr != nil {
			return nil, qerr
		}
		slog.Warn("malformed dataset moved aside, downloading from scratch", "path", path, "moved_to", dst, "error", err)
		return nil, nil
	default:
		return nil, err
	}
}

// startFor resolves the first instant to download for a chunked mode.
func (r *Runner) startFor(ctx context.Context, q provider.Query, ip plan.IntervalPlan, existing []model.Candle, now time.Time) (time.Time, error) {
	switch ip.Mode {
	case plan.ModeResume:
		if last, ok := dataset.LastTime(existing); ok {
			return last.Add(time.Second), nil
		}
		return FirstAvailable(ctx, r.Provider, q, now)
	case plan.ModeLookback:
		return now.AddDate(0, 0, -ip.LookbackDays+1), nil
	case plan.ModeFull:
		return Epoch, nil
	default:
		return time.Time{}, fmt.Errorf("unknown mode %q", ip.Mode)
	}
}

// truncateToDay drops the time of day so daily rows match the date-only rows on disk.
func truncateToDay(candles []model.Candle) []model.Candle {
	out := make([]model.Candle, len(candles))
	for i, c := range candles {
		t := c.Time
		c.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		out[i] = c
	}
	return model.Dedup(out)
}
