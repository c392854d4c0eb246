package crawl

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// progress is shared between the runner and the heartbeat goroutine.
type progress struct {
	mu      sync.Mutex
	done    int
	failed  int
	fetched int
}

func (p *progress) record(r JobResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if !r.Ok {
		p.failed++
	}
	p.fetched += r.Fetched
}

func runHeartbeat(ctx context.Context, interval time.Duration, totalJobs int, p *progress) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			d, f, n := p.done, p.failed, p.fetched
			p.mu.Unlock()
			slog.Info("heartbeat", "done", d, "total", totalJobs, "failed", f, "rows", n)
		}
	}
}
