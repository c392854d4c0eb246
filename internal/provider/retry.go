package provider

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

const (
	initialRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
)

// Limits bounds request rate and transport retries for one provider client.
type Limits struct {
	RequestsPerSecond float64
	Retries           int // 0 disables retries
}

// NewLimiter returns a limiter for l. A non-positive rate means unlimited.
func (l Limits) NewLimiter() *rate.Limiter {
	if l.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(l.RequestsPerSecond), 1)
}

// Retry runs op under the limiter, retrying errors for which retryable returns true
// at most l.Retries times with exponential backoff.
func (l Limits) Retry(ctx context.Context, limiter *rate.Limiter, op func() error, retryable func(error) bool) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialRetryDelay
	b.MaxInterval = maxRetryDelay
	b.MaxElapsedTime = 0 // bounded by retry count and context

	var policy backoff.BackOff = b
	retries := l.Retries
	if retries < 0 {
		retries = 0
	}
	policy = backoff.WithContext(backoff.WithMaxRetries(policy, uint64(retries)), ctx)

	return backoff.Retry(func() error {
		if err := limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		err := op()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}
