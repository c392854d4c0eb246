// Package binance fetches spot klines from the Binance REST API.
package binance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"golang.org/x/time/rate"

	"github.com/budydeveloper/crypto-dataset/internal/model"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
)

const (
	// Name is the provider name used in profiles.
	Name = "binance"

	// Max klines per request.
	pageLimit = 1000

	codeTooManyRequests = -1003
	codeIPBanned        = -1015
)

// intervals maps model interval names to Binance kline intervals.
var intervals = map[string]string{
	"1m":  "1m",
	"5m":  "5m",
	"15m": "15m",
	"30m": "30m",
	"1h":  "1h",
	"60m": "1h",
	"1d":  "1d",
	"1wk": "1w",
	"1mo": "1M",
}

// Config holds Binance client settings. Keys are optional for public market data.
type Config struct {
	APIKey    string
	SecretKey string
	BaseURL   string
	Limits    provider.Limits
}

// Provider is a DataProvider backed by the Binance klines endpoint.
type Provider struct {
	client  *binance.Client
	limits  provider.Limits
	limiter *rate.Limiter
}

// New creates a Binance provider.
func New(cfg Config) *Provider {
	client := binance.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.BaseURL != "" {
		client.BaseURL = cfg.BaseURL
	}
	client.HTTPClient = provider.NewHTTPClient()
	return &Provider{
		client:  client,
		limits:  cfg.Limits,
		limiter: cfg.Limits.NewLimiter(),
	}
}

// GetName returns provider name
func (p *Provider) GetName() string { return Name }

// Intervals lists supported interval names.
func (p *Provider) Intervals() []string {
	c, _ := provider.CapabilityOf(Name)
	return c.Intervals
}

// Close closes connections
func (p *Provider) Close() error {
	p.client.HTTPClient.CloseIdleConnections()
	return nil
}

// Fetch pages through [q.From, q.To) pageLimit klines at a time.
func (p *Provider) Fetch(ctx context.Context, q provider.Query) ([]model.Candle, error) {
	bi, ok := intervals[q.Interval.Name]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", Name, q.Interval.Name, provider.ErrUnsupportedInterval)
	}
	if q.Period != "" {
		return nil, fmt.Errorf("%s: period queries are not supported, use a date range", Name)
	}
	if !q.From.Before(q.To) {
		return nil, nil
	}

	var out []model.Candle
	start := q.From.UnixMilli()
	end := q.To.UnixMilli() - 1
	for start <= end {
		limit := pageLimit
		if q.Limit > 0 && q.Limit-len(out) < limit {
			limit = q.Limit - len(out)
		}

		var page []*binance.Kline
		err := p.limits.Retry(ctx, p.limiter, func() error {
			var err error
			page, err = p.client.NewKlinesService().
				Symbol(q.Symbol).
				Interval(bi).
				StartTime(start).
				EndTime(end).
				Limit(limit).
				Do(ctx)
			return err
		}, retryable)
		if err != nil {
			return nil, fmt.Errorf("%s klines %s %s: %w", Name, q.Symbol, bi, err)
		}
		if len(page) == 0 {
			break
		}

		for _, k := range page {
			c, err := toCandle(k)
			if err != nil {
				return nil, fmt.Errorf("%s klines %s %s: %w", Name, q.Symbol, bi, err)
			}
			out = append(out, c)
		}
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
		if len(page) < limit {
			break
		}
		next := page[len(page)-1].OpenTime + 1
		if next <= start {
			break
		}
		start = next
	}
	if len(out) == 0 {
		return nil, nil
	}
	slog.Debug("binance klines fetched", "symbol", q.Symbol, "interval", bi, "rows", len(out))
	return out, nil
}

// retryable reports rate-limit and transport errors. Other API errors are final.
func retryable(err error) bool {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == codeTooManyRequests || apiErr.Code == codeIPBanned
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return false
}

func toCandle(k *binance.Kline) (model.Candle, error) {
	c := model.Candle{
		Time:      time.UnixMilli(k.OpenTime).UTC(),
		CloseTime: time.UnixMilli(k.CloseTime).UTC(),
		Trades:    k.TradeNum,
	}
	fields := []struct {
		dst *float64
		src string
	}{
		{&c.Open, k.Open},
		{&c.High, k.High},
		{&c.Low, k.Low},
		{&c.Close, k.Close},
		{&c.Volume, k.Volume},
		{&c.QuoteVolume, k.QuoteAssetVolume},
		{&c.TakerBuyBase, k.TakerBuyBaseAssetVolume},
		{&c.TakerBuyQuote, k.TakerBuyQuoteAssetVolume},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.src, 64)
		if err != nil {
			return model.Candle{}, fmt.Errorf("kline %d: %w", k.OpenTime, err)
		}
		*f.dst = v
	}
	return c, nil
}
