package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/budydeveloper/crypto-dataset/internal/plan"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PROFILE", "forex")
	t.Setenv("DATA_DIR", "/tmp/market")
	t.Setenv("HTTP_RETRIES", "0")
	t.Setenv("REQUESTS_PER_SECOND", "2.5")
	t.Setenv("RUN_AT", "06:30")
	t.Setenv("EXPORT_FORMAT", "")

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "forex", cfg.Profile)
	assert.Equal(t, "/tmp/market", cfg.DataDir)
	assert.Equal(t, 0, cfg.HTTPRetries)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.Equal(t, "csv", cfg.ExportFormat)

	h, m, ok := cfg.RunAtTime()
	assert.True(t, ok)
	assert.Equal(t, 6, h)
	assert.Equal(t, 30, m)
}

func TestConfigDefaultsAndValidation(t *testing.T) {
	t.Setenv("PROFILE", "")
	t.Setenv("HTTP_RETRIES", "lots")
	cfg := LoadConfig()
	assert.Equal(t, "binance", cfg.Profile)
	assert.Equal(t, 3, cfg.HTTPRetries)
	_, _, ok := cfg.RunAtTime()
	assert.False(t, ok)

	bad := *cfg
	bad.RunAt = "25:99"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.LogLevel = "loud"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.ExportFormat = "xlsx"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.YahooBaseURL = "not a url"
	assert.Error(t, bad.Validate())
}

func TestCreateProvider(t *testing.T) {
	cfg := &Config{}
	for _, name := range []string{"binance", "yahoo"} {
		dp, err := CreateProvider(cfg, name)
		require.NoError(t, err)
		assert.Equal(t, name, dp.GetName())
		assert.NoError(t, dp.Close())
	}

	_, err := CreateProvider(cfg, "polygon")
	assert.Error(t, err, "polygon needs an API key")
	cfg.PolygonAPIKey = "k"
	dp, err := CreateProvider(cfg, "polygon")
	require.NoError(t, err)
	assert.Equal(t, "polygon", dp.GetName())

	_, err = CreateProvider(cfg, "kraken")
	assert.Error(t, err)
}

func TestLoadTickers(t *testing.T) {
	dir := t.TempDir()
	fx := filepath.Join(dir, "forex.txt")
	require.NoError(t, os.WriteFile(fx, []byte("eurusd\nGBPUSD\n"), 0o644))

	p := &plan.Profile{Name: "forex", TickersFile: fx}
	got, err := LoadTickers(&Config{}, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"EURUSD", "GBPUSD"}, got)

	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(other, []byte(`["btc-usd"]`), 0o644))
	got, err = LoadTickers(&Config{TickersFile: other}, p)
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC-USD"}, got)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0o644))
	_, err = LoadTickers(&Config{TickersFile: empty}, p)
	assert.Error(t, err)
}

func TestProvideProfile(t *testing.T) {
	cfg := &Config{Profile: "crypto"}
	doc, err := ProvidePlans(cfg)
	require.NoError(t, err)
	p, err := ProvideProfile(cfg, doc)
	require.NoError(t, err)
	assert.Equal(t, "yahoo", p.Provider)

	dp, cleanup, err := ProvideDataProvider(cfg, p)
	require.NoError(t, err)
	defer cleanup()
	r := ProvideRunner(&Config{DataDir: "data"}, p, dp)
	assert.Equal(t, "data", r.DataDir)

	_, err = ProvideProfile(&Config{Profile: "nope"}, doc)
	assert.Error(t, err)
}

func TestNextCrawlRunTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 15, 0, 0, time.UTC), nextCrawlRunTime(now, 12, 15))
	assert.Equal(t, time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC), nextCrawlRunTime(now, 9, 0))
	assert.Equal(t, time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC), nextCrawlRunTime(now, 10, 0))
}
