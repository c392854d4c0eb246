package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/budydeveloper/crypto-dataset/internal/crawl"
	"github.com/budydeveloper/crypto-dataset/internal/plan"
)

// RunFlow runs the profile once, then again every day at RUN_AT until ctx is cancelled.
// It returns the report of the last completed run.
func RunFlow(ctx context.Context, cfg *Config, r *crawl.Runner, tickerList []string, intervals []plan.IntervalPlan) *crawl.Report {
	report := r.Run(ctx, tickerList, intervals)

	hour, min, repeat := cfg.RunAtTime()
	if !repeat {
		return report
	}
	for {
		nextRun := nextCrawlRunTime(time.Now().UTC(), hour, min)
		waitDur := time.Until(nextRun)
		slog.Info("done, wait until next run", "hours", waitDur.Hours(), "until", nextRun.Format("2006-01-02 15:04"))
		timer := time.NewTimer(waitDur)
		select {
		case <-timer.C:
		case <-ctx.Done():
			slog.Info("received signal, stopping", "restart_at", nextRun.Format("2006-01-02 15:04"))
			timer.Stop()
			return report
		}
		report = r.Run(ctx, tickerList, intervals)
	}
}

func nextCrawlRunTime(now time.Time, hour, min int) time.Time {
	targetToday := time.Date(now.Year(), now.Month(), now.Day(), hour, min, 0, 0, time.UTC)
	if now.Before(targetToday) {
		return targetToday
	}
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), hour, min, 0, 0, time.UTC)
}
