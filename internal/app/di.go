package app

import (
	"log/slog"

	"github.com/budydeveloper/crypto-dataset/internal/crawl"
	"github.com/budydeveloper/crypto-dataset/internal/plan"
	"github.com/budydeveloper/crypto-dataset/internal/provider"
)

// Downloader holds everything a download run needs.
type Downloader struct {
	Config  *Config
	Profile *plan.Profile
	DP      provider.DataProvider
	Runner  *crawl.Runner
}

// ProvidePlans loads the profiles document (for Wire).
func ProvidePlans(cfg *Config) (*plan.Document, error) {
	return plan.Load(cfg.PlansFile)
}

// ProvideProfile selects the configured profile (for Wire).
func ProvideProfile(cfg *Config, doc *plan.Document) (*plan.Profile, error) {
	return doc.Profile(cfg.Profile)
}

// ProvideDataProvider creates the profile's provider (for Wire).
// The cleanup closes it.
func ProvideDataProvider(cfg *Config, p *plan.Profile) (provider.DataProvider, func(), error) {
	dp, err := CreateProvider(cfg, p.Provider)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := dp.Close(); err != nil {
			slog.Warn("closing provider", "provider", dp.GetName(), "error", err)
		}
	}
	return dp, cleanup, nil
}

// ProvideRunner creates the crawl runner (for Wire).
func ProvideRunner(cfg *Config, p *plan.Profile, dp provider.DataProvider) *crawl.Runner {
	return crawl.NewRunner(dp, p, cfg.DataDir)
}
