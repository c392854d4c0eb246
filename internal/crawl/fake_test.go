package crawl

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/budydeveloper/crypto-dataset/internal/model"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
)

var errWindow = errors.New("boom")

// fakeProvider serves a regular candle series starting at first, one candle per step.
type fakeProvider struct {
	first     time.Time
	step      time.Duration
	intervals []string
	failFrom  map[time.Time]bool // windows starting here fail
	failAll   bool

	mu      sync.Mutex
	queries []provider.Query
}

func newFake(first time.Time, step time.Duration) *fakeProvider {
	return &fakeProvider{first: first, step: step, intervals: []string{"1h", "1d"}, failFrom: map[time.Time]bool{}}
}

func (f *fakeProvider) GetName() string     { return "fake" }
func (f *fakeProvider) Intervals() []string { return f.intervals }
func (f *fakeProvider) Close() error        { return nil }

func (f *fakeProvider) Fetch(_ context.Context, q provider.Query) ([]model.Candle, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.failAll || f.failFrom[q.From] {
		return nil, errWindow
	}
	from, to := q.From, q.To
	if q.Period != "" {
		from, to = f.first, f.first.Add(48*f.step)
	}
	t := f.first
	if from.After(t) {
		n := from.Sub(t) / f.step
		t = t.Add(n * f.step)
		if t.Before(from) {
			t = t.Add(f.step)
		}
	}
	var out []model.Candle
	for ; t.Before(to); t = t.Add(f.step) {
		out = append(out, model.Candle{Time: t, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 3})
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}
