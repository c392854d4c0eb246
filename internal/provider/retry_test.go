package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errFlaky = errors.New("flaky")

func TestRetryBounded(t *testing.T) {
	l := Limits{Retries: 2}
	calls := 0
	err := l.Retry(context.Background(), l.NewLimiter(), func() error {
		calls++
		return errFlaky
	}, func(error) bool { return true })
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls)
}

func TestRetryDisabled(t *testing.T) {
	l := Limits{}
	calls := 0
	err := l.Retry(context.Background(), l.NewLimiter(), func() error {
		calls++
		return errFlaky
	}, func(error) bool { return true })
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPermanent(t *testing.T) {
	l := Limits{Retries: 5}
	calls := 0
	err := l.Retry(context.Background(), l.NewLimiter(), func() error {
		calls++
		return errFlaky
	}, func(error) bool { return false })
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, calls)
}

func TestRetrySucceeds(t *testing.T) {
	l := Limits{Retries: 3, RequestsPerSecond: 1000}
	calls := 0
	err := l.Retry(context.Background(), l.NewLimiter(), func() error {
		calls++
		if calls < 2 {
			return errFlaky
		}
		return nil
	}, func(error) bool { return true })
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}
