//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/budydeveloper/crypto-dataset/internal/app"
)

func InitializeDownloader(cfg *app.Config) (*app.Downloader, func(), error) {
	wire.Build(
		app.ProvidePlans,
		app.ProvideProfile,
		app.ProvideDataProvider,
		app.ProvideRunner,
		wire.Struct(new(app.Downloader), "*"),
	)
	return nil, nil, nil
}
