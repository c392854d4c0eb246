package crawl

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobResult is the outcome of one (ticker, interval) download.
type JobResult struct {
	Ok       bool   `json:"ok"`
	Ticker   string `json:"ticker"`
	Interval string `json:"interval"`
	Fetched  int    `json:"fetched"`
	Total    int    `json:"total"`
	Path     string `json:"path,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// Report summarises one run of a profile.
type Report struct {
	RunID      string      `json:"run_id"`
	Profile    string      `json:"profile"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Results    []JobResult `json:"results"`
}

func newReport(profile string, now time.Time) *Report {
	return &Report{RunID: uuid.NewString(), Profile: profile, StartedAt: now}
}

// Counts returns the number of successful and failed jobs.
func (r *Report) Counts() (success, failed int) {
	for _, res := range r.Results {
		if res.Ok {
			success++
		} else {
			failed++
		}
	}
	return success, failed
}

type failedEntry struct {
	Ticker   string `json:"ticker"`
	Interval string `json:"interval"`
	Reason   string `json:"reason"`
}

const (
	successReport = ".lastrun.success.json"
	failedReport  = ".lastrun.failed.json"
)

type reportFile struct {
	RunID      string      `json:"run_id"`
	Profile    string      `json:"profile"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Entries    interface{} `json:"entries"`
}

// writeRunReport writes .lastrun.success.json and .lastrun.failed.json under dir.
func writeRunReport(dir string, r *Report) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	var successList []string
	var failedList []failedEntry
	for _, res := range r.Results {
		if res.Ok {
			successList = appendSuccess(successList, res.Ticker+" "+res.Interval)
		} else {
			failedList = append(failedList, failedEntry{Ticker: res.Ticker, Interval: res.Interval, Reason: res.Reason})
		}
	}
	write := func(name string, entries interface{}) error {
		p := filepath.Join(dir, name)
		data, err := json.MarshalIndent(reportFile{
			RunID:      r.RunID,
			Profile:    r.Profile,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Entries:    entries,
		}, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(p, data, 0644)
	}
	// A list that is empty this run removes the previous run's file.
	remove := func(name string) error {
		err := os.Remove(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if len(successList) > 0 {
		if err := write(successReport, successList); err != nil {
			return err
		}
		slog.Info("report wrote success", "dir", dir, "jobs", len(successList))
	} else if err := remove(successReport); err != nil {
		return err
	}
	if len(failedList) > 0 {
		if err := write(failedReport, failedList); err != nil {
			return err
		}
		slog.Info("report wrote failed", "dir", dir, "count", len(failedList))
	} else if err := remove(failedReport); err != nil {
		return err
	}
	return nil
}

func appendSuccess(list []string, entry string) []string {
	for _, t := range list {
		if t == entry {
			return list
		}
	}
	return append(list, entry)
}

func joinFailedReasons(results []JobResult) string {
	var b strings.Builder
	n, total := 0, 0
	for _, r := range results {
		if !r.Ok {
			total++
		}
	}
	for _, r := range results {
		if r.Ok {
			continue
		}
		if n > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s %s: %s", r.Ticker, r.Interval, r.Reason)
		n++
		if n >= 5 && total > 6 {
			fmt.Fprintf(&b, " (+%d more)", total-n)
			break
		}
	}
	return b.String()
}
