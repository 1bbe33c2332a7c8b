package marketdata

import (
	"encoding/json"
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName"`
	Description  string `json:"description"`
	RequiresAuth bool   `json:"requiresAuth"`
}

var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderBinance: {
		Name:         string(ProviderBinance),
		DisplayName:  "Binance",
		Description:  "Cryptocurrency exchange with public daily kline data, end date inclusive",
		RequiresAuth: false,
	},
	ProviderYahoo: {
		Name:         string(ProviderYahoo),
		DisplayName:  "Yahoo Finance",
		Description:  "General market data feed with daily historical bars, end date exclusive",
		RequiresAuth: false,
	},
	ProviderPolygon: {
		Name:         string(ProviderPolygon),
		DisplayName:  "Polygon.io",
		Description:  "US market data provider with daily aggregate bars",
		RequiresAuth: true,
	},
}

// GetSupportedProviders returns all supported provider names, sorted.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}

// GetDownloadConfigSchema returns the JSON schema for a provider's
// download configuration.
func GetDownloadConfigSchema(providerName string) (string, error) {
	var config any

	switch ProviderType(providerName) {
	case ProviderBinance:
		config = &BinanceDownloadConfig{}
	case ProviderYahoo:
		config = &YahooDownloadConfig{}
	case ProviderPolygon:
		config = &PolygonDownloadConfig{}
	default:
		return "", errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	schema := jsonschema.Reflect(config)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to marshal schema for %s", providerName)
	}

	return string(data), nil
}
