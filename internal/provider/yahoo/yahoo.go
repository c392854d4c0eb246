// Package yahoo fetches candles from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	// Zone rules for hosts without a system zoneinfo database.
	_ "time/tzdata"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/budydeveloper/crypto-dataset/internal/model"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
)

const (
	// Name is the provider name used in profiles.
	Name = "yahoo"

	DefaultBaseURL = "https://query2.finance.yahoo.com"
	chartPath      = "/v8/finance/chart/{symbol}"
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Config holds Yahoo client settings.
type Config struct {
	BaseURL string
	Limits  provider.Limits
}

// Provider is a DataProvider backed by the chart endpoint.
type Provider struct {
	client  *resty.Client
	limits  provider.Limits
	limiter *rate.Limiter
}

// StatusError is a non-2xx chart response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chart status %d: %s", e.Code, e.Body)
}

// New creates a Yahoo provider.
func New(cfg Config) *Provider {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	client := resty.NewWithClient(provider.NewHTTPClient()).
		SetBaseURL(base).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
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
	p.client.GetClient().CloseIdleConnections()
	return nil
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		GMTOffset            int64  `json:"gmtoffset"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// Fetch queries one chart range. A Period query uses Yahoo's range parameter.
func (p *Provider) Fetch(ctx context.Context, q provider.Query) ([]model.Candle, error) {
	if !provider.Supports(p, q.Interval.Name) {
		return nil, fmt.Errorf("%s %s: %w", Name, q.Interval.Name, provider.ErrUnsupportedInterval)
	}
	params := map[string]string{
		"interval":       q.Interval.Name,
		"includePrePost": "false",
		"events":         "div,splits",
	}
	if q.Period != "" {
		params["range"] = q.Period
	} else {
		if !q.From.Before(q.To) {
			return nil, nil
		}
		params["period1"] = strconv.FormatInt(q.From.Unix(), 10)
		params["period2"] = strconv.FormatInt(q.To.Unix(), 10)
	}

	var body []byte
	err := p.limits.Retry(ctx, p.limiter, func() error {
		resp, err := p.client.R().
			SetContext(ctx).
			SetPathParam("symbol", q.Symbol).
			SetQueryParams(params).
			Get(chartPath)
		if err != nil {
			return err
		}
		body = resp.Body()
		if resp.StatusCode() == http.StatusNotFound && isNoData(body) {
			return nil
		}
		if resp.IsError() {
			return &StatusError{Code: resp.StatusCode(), Body: truncate(string(body), 200)}
		}
		return nil
	}, retryable)
	if err != nil {
		return nil, fmt.Errorf("%s chart %s %s: %w", Name, q.Symbol, q.Interval.Name, err)
	}

	candles, err := decode(body, q)
	if err != nil {
		return nil, fmt.Errorf("%s chart %s %s: %w", Name, q.Symbol, q.Interval.Name, err)
	}
	slog.Debug("yahoo chart fetched", "symbol", q.Symbol, "interval", q.Interval.Name, "rows", len(candles))
	return candles, nil
}

func decode(body []byte, q provider.Query) ([]model.Candle, error) {
	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	if e := cr.Chart.Error; e != nil {
		if isNoDataError(e) {
			return nil, nil
		}
		return nil, fmt.Errorf("chart error %s: %s", e.Code, e.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, nil
	}
	res := cr.Chart.Result[0]
	if len(res.Timestamp) == 0 || len(res.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := res.Indicators.Quote[0]
	wall := wallClock(res.Meta.ExchangeTimezoneName, res.Meta.GMTOffset)

	var out []model.Candle
	for i, ts := range res.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == nil || h == nil || l == nil || c == nil {
			continue
		}
		t := time.Unix(ts, 0).UTC()
		if q.Period == "" && (t.Before(q.From) || !t.Before(q.To)) {
			continue
		}
		candle := model.Candle{
			Time:  wall(t),
			Open:  *o,
			High:  *h,
			Low:   *l,
			Close: *c,
		}
		if v := at(quote.Volume, i); v != nil {
			candle.Volume = *v
		}
		out = append(out, candle)
		if q.Limit > 0 && len(out) >= q.Limit {
			break
		}
	}
	return out, nil
}

// wallClock returns a converter from UTC instants to exchange wall-clock time, stored as UTC.
// Zone rules are applied per timestamp so rows on both sides of a DST change keep their
// local time. gmtoffset only reflects the offset at request time and is the fallback
// when the zone is missing or unknown.
func wallClock(zone string, gmtoffset int64) func(time.Time) time.Time {
	if zone != "" {
		loc, err := time.LoadLocation(zone)
		if err == nil {
			return func(t time.Time) time.Time {
				l := t.In(loc)
				return time.Date(l.Year(), l.Month(), l.Day(), l.Hour(), l.Minute(), l.Second(), 0, time.UTC)
			}
		}
		slog.Warn("unknown exchange timezone, using gmtoffset", "zone", zone, "gmtoffset", gmtoffset)
	}
	offset := time.Duration(gmtoffset) * time.Second
	return func(t time.Time) time.Time { return t.Add(offset) }
}

func at(s []*float64, i int) *float64 {
	if i >= len(s) {
		return nil
	}
	return s[i]
}

func isNoDataError(e *chartError) bool {
	return e.Code == "Not Found" || strings.Contains(strings.ToLower(e.Description), "no data found")
}

func isNoData(body []byte) bool {
	var cr chartResponse
	if err := json.Unmarshal(body, &cr); err != nil || cr.Chart.Error == nil {
		return false
	}
	return isNoDataError(cr.Chart.Error)
}

// retryable reports throttling, server errors and transport failures.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
