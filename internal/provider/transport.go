package provider

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// baseTransportConfig returns the shared HTTP transport configuration used by provider clients.
func baseTransportConfig() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: 2 * time.Minute,
		TLSHandshakeTimeout:   10 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
	}
}

// NewHTTPClient creates an HTTP client for provider requests.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: baseTransportConfig(),
		Timeout:   3 * time.Minute,
	}
}

// RateLimitedTransport waits on Limiter before every request it forwards to Base.
// Clients that page internally get every page throttled.
type RateLimitedTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

// RoundTrip implements http.RoundTripper.
func (t *RateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.Base.RoundTrip(req)
}

// NewRateLimitedHTTPClient is NewHTTPClient with every request passing through limiter.
func NewRateLimitedHTTPClient(limiter *rate.Limiter) *http.Client {
	hc := NewHTTPClient()
	hc.Transport = &RateLimitedTransport{Base: hc.Transport, Limiter: limiter}
	return hc
}
