package config

import (
	"fmt"

	"coinwatch-api/pkg/analysis"
	"coinwatch-api/pkg/confkit"
	"coinwatch-api/pkg/market"
	"coinwatch-api/pkg/news"
)

// MustLoadMarket loads etc/market.yaml from the project root and panics on
// error. It isolates the market section so tests that only need providers
// do not require a full main config.
func MustLoadMarket() *market.Config {
	return market.MustLoad()
}

// MustLoadAnalysis loads etc/analysis.yaml from the project root and
// panics on error.
func MustLoadAnalysis() *analysis.Config {
	path := confkit.MustProjectPath("etc/analysis.yaml")
	cfg, err := analysis.LoadConfig(path)
	if err != nil {
		panic(fmt.Errorf("load analysis config %s: %w", path, err))
	}
	return cfg
}

// MustLoadNews loads etc/news.yaml from the project root and panics on
// error.
func MustLoadNews() *news.Config {
	return news.MustLoad()
}

// MustBuildMarketProviders loads market config from the default path and
// builds provider instances; returns the map and default provider name.
func MustBuildMarketProviders() (map[string]market.Provider, string) {
	cfg := MustLoadMarket()
	providers, err := cfg.BuildProviders()
	if err != nil {
		panic(err)
	}
	return providers, cfg.Default
}
