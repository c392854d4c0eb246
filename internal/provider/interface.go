package provider

import (
	"context"
	"errors"
	"time"

	"github.com/budydeveloper/crypto-dataset/internal/model"
)

// ErrUnsupportedInterval is returned by Fetch for an interval the provider cannot serve.
var ErrUnsupportedInterval = errors.New("unsupported interval")

// Query selects candles for one symbol. The range is half-open: [From, To).
// A non-empty Period ("60d", "max") replaces From/To with a provider-side lookback.
type Query struct {
	Symbol   string
	Interval model.Interval
	From     time.Time
	To       time.Time
	Period   string
	Limit    int // 0 means no limit
}

// DataProvider is the abstraction used by the application when accessing a data source.
// Fetch returns (nil, nil) when the range holds no candles; errors are never fatal to the caller.
type DataProvider interface {
	GetName() string
	Intervals() []string
	Fetch(ctx context.Context, q Query) ([]model.Candle, error)
	Close() error
}

// Supports reports whether p serves interval.
func Supports(p DataProvider, interval string) bool {
	for _, iv := range p.Intervals() {
		if iv == interval {
			return true
		}
	}
	return false
}
