package app

import (
	"fmt"
	"strings"

	"github.com/budydeveloper/crypto-dataset/internal/plan"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
	"github.com/budydeveloper/crypto-dataset/internal/provider/binance"
	"github.com/budydeveloper/crypto-dataset/internal/provider/polygon"
	"github.com/budydeveloper/crypto-dataset/internal/provider/yahoo"
	"github.com/budydeveloper/crypto-dataset/internal/tickers"
)

func (c *Config) limits() provider.Limits {
	return provider.Limits{RequestsPerSecond: c.RequestsPerSecond, Retries: c.HTTPRetries}
}

// CreateProvider creates the DataProvider named by a profile.
func CreateProvider(cfg *Config, name string) (provider.DataProvider, error) {
	switch strings.ToLower(name) {
	case binance.Name:
		return binance.New(binance.Config{
			APIKey:    cfg.BinanceAPIKey,
			SecretKey: cfg.BinanceSecretKey,
			BaseURL:   cfg.BinanceBaseURL,
			Limits:    cfg.limits(),
		}), nil
	case yahoo.Name:
		return yahoo.New(yahoo.Config{BaseURL: cfg.YahooBaseURL, Limits: cfg.limits()}), nil
	case polygon.Name:
		return polygon.New(cfg.PolygonAPIKey, cfg.limits())
	default:
		return nil, fmt.Errorf("unsupported data provider: %s. Options: binance, yahoo, polygon", name)
	}
}

// LoadTickers reads the profile's tickers, or TICKERS_FILE when set.
func LoadTickers(cfg *Config, p *plan.Profile) ([]string, error) {
	path := p.TickersFile
	if cfg.TickersFile != "" {
		path = cfg.TickersFile
	}
	if path == "" {
		return nil, fmt.Errorf("profile %q has no tickers file; set TICKERS_FILE", p.Name)
	}
	list, err := tickers.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no tickers in %s", path)
	}
	return list, nil
}
