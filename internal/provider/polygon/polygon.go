// Package polygon fetches stock aggregates through the Polygon REST client.
package polygon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/budydeveloper/crypto-dataset/internal/model"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
)

const (
	// Name is the provider name used in profiles.
	Name = "polygon"

	// Max 50k results per request
	maxLimit = 50000
)

type span struct {
	multiplier int
	timespan   models.Timespan
}

var spans = map[string]span{
	"1m":  {1, models.Minute},
	"5m":  {5, models.Minute},
	"15m": {15, models.Minute},
	"30m": {30, models.Minute},
	"60m": {1, models.Hour},
	"90m": {90, models.Minute},
	"1h":  {1, models.Hour},
	"1d":  {1, models.Day},
	"1wk": {1, models.Week},
	"1mo": {1, models.Month},
	"3mo": {1, models.Quarter},
}

// ErrMissingAPIKey is returned by New without a key.
var ErrMissingAPIKey = errors.New("polygon: POLYGON_API_KEY is not set")

// Provider is a DataProvider backed by the aggregates endpoint.
type Provider struct {
	client *polygon.Client
}

// New creates a Polygon provider. Retries are left to the client. The limiter sits in the
// HTTP transport because ListAggs follows next_url pages on its own.
func New(apiKey string, limits provider.Limits) (*Provider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	hc := provider.NewRateLimitedHTTPClient(limits.NewLimiter())
	return &Provider{client: polygon.NewWithClient(apiKey, hc)}, nil
}

// GetName returns provider name
func (p *Provider) GetName() string { return Name }

// Intervals lists supported interval names.
func (p *Provider) Intervals() []string {
	c, _ := provider.CapabilityOf(Name)
	return c.Intervals
}

// Close closes connections
func (p *Provider) Close() error { return nil }

// Fetch lists aggregates in [q.From, q.To).
func (p *Provider) Fetch(ctx context.Context, q provider.Query) ([]model.Candle, error) {
	params, err := aggsParams(q)
	if err != nil {
		return nil, err
	}
	if params == nil {
		return nil, nil
	}
	var out []model.Candle
	it := p.client.ListAggs(ctx, params)
	for it.Next() {
		out = append(out, toCandle(it.Item()))
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("%s aggs %s %s: %w", Name, q.Symbol, q.Interval.Name, err)
	}
	slog.Debug("polygon aggs fetched", "symbol", q.Symbol, "interval", q.Interval.Name, "rows", len(out))
	return out, nil
}

// aggsParams builds the request for q, or nil for an empty range.
func aggsParams(q provider.Query) (*models.ListAggsParams, error) {
	s, ok := spans[q.Interval.Name]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", Name, q.Interval.Name, provider.ErrUnsupportedInterval)
	}
	if q.Period != "" {
		return nil, fmt.Errorf("%s: period queries are not supported, use a date range", Name)
	}
	if !q.From.Before(q.To) {
		return nil, nil
	}
	limit := maxLimit
	if q.Limit > 0 && q.Limit < limit {
		limit = q.Limit
	}
	params := models.ListAggsParams{
		Ticker:     q.Symbol,
		Multiplier: s.multiplier,
		Timespan:   s.timespan,
		From:       models.Millis(q.From),
		To:         models.Millis(q.To.Add(-time.Millisecond)),
	}.WithAdjusted(true).WithOrder(models.Asc).WithLimit(limit)
	return params, nil
}

func toCandle(a models.Agg) model.Candle {
	return model.Candle{
		Time:   time.Time(a.Timestamp).UTC(),
		Open:   a.Open,
		High:   a.High,
		Low:    a.Low,
		Close:  a.Close,
		Volume: a.Volume,
		Trades: a.Transactions,
	}
}
