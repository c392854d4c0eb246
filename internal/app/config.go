package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds application configuration from env
type Config struct {
	Profile string `validate:"required"`
	DataDir string `validate:"required"`

	// TickersFile overrides the profile's tickers file.
	TickersFile string

	// PlansFile empty uses the embedded profiles.
	PlansFile string

	LogLevel string `validate:"oneof=debug info warn warning error"`
	LogFile  string

	BinanceAPIKey     string
	BinanceSecretKey  string
	BinanceBaseURL    string `validate:"omitempty,url"`
	YahooBaseURL      string `validate:"omitempty,url"`
	PolygonAPIKey     string
	RequestsPerSecond float64 `validate:"gte=0"`
	HTTPRetries       int     `validate:"gte=0,lte=10"`

	ExportFormat string `validate:"oneof=csv json parquet"`
	PostgresURL  string

	// RunAt is a daily UTC HH:MM; empty runs once.
	RunAt string `validate:"omitempty,datetime=15:04"`
}

// LoadConfig reads config from environment
func LoadConfig() *Config {
	return &Config{
		Profile:           getEnv("PROFILE", "binance"),
		TickersFile:       os.Getenv("TICKERS_FILE"),
		DataDir:           getEnv("DATA_DIR", "data"),
		PlansFile:         os.Getenv("PLANS_FILE"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFile:           os.Getenv("LOG_FILE"),
		BinanceAPIKey:     os.Getenv("BINANCE_API_KEY"),
		BinanceSecretKey:  os.Getenv("BINANCE_SECRET_KEY"),
		BinanceBaseURL:    os.Getenv("BINANCE_BASE_URL"),
		YahooBaseURL:      os.Getenv("YAHOO_BASE_URL"),
		PolygonAPIKey:     os.Getenv("POLYGON_API_KEY"),
		RequestsPerSecond: getEnvFloat("REQUESTS_PER_SECOND", 5),
		HTTPRetries:       getEnvInt("HTTP_RETRIES", 3),
		ExportFormat:      getEnv("EXPORT_FORMAT", "csv"),
		PostgresURL:       os.Getenv("POSTGRES_URL"),
		RunAt:             os.Getenv("RUN_AT"),
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RunAtTime returns the daily run hour and minute. ok is false when no repeat is configured.
func (c *Config) RunAtTime() (hour, minute int, ok bool) {
	if c.RunAt == "" {
		return 0, 0, false
	}
	t, err := time.Parse("15:04", c.RunAt)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
