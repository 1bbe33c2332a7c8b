package marketdata

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
)

// Asset is one of the supported instruments.
type Asset string

const (
	AssetBTCUSDT Asset = "btcusdt"
	AssetETHUSDT Asset = "ethusdt"
	AssetXAUUSD  Asset = "xauusd"
)

// SupportedAssets returns all supported assets in canonical order. This
// is the effective selection when the CLI selector is omitted.
func SupportedAssets() []Asset {
	return []Asset{AssetBTCUSDT, AssetETHUSDT, AssetXAUUSD}
}

// ParseAsset validates a CLI-supplied asset name against the closed set.
func ParseAsset(s string) (Asset, error) {
	asset := Asset(strings.ToLower(s))
	for _, supported := range SupportedAssets() {
		if asset == supported {
			return asset, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeUnknownAsset, "unknown asset %q, supported: %s", s, joinAssets(SupportedAssets()))
}

// ProviderType identifies a market data provider.
type ProviderType string

const (
	ProviderBinance ProviderType = "binance"
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
)

// Route maps an asset to the provider that serves it and the ticker the
// provider knows it by.
type Route struct {
	Provider ProviderType `yaml:"provider" validate:"required,oneof=binance yahoo polygon"`
	Ticker   string       `yaml:"ticker" validate:"required"`
}

// RoutingTable is the instrument-to-adapter routing passed into the
// client at construction.
type RoutingTable map[Asset]Route

// DefaultRoutes returns the built-in routing: the two crypto pairs go to
// Binance, gold goes to Yahoo Finance via the GC=F futures contract.
func DefaultRoutes() RoutingTable {
	return RoutingTable{
		AssetBTCUSDT: {Provider: ProviderBinance, Ticker: "BTCUSDT"},
		AssetETHUSDT: {Provider: ProviderBinance, Ticker: "ETHUSDT"},
		AssetXAUUSD:  {Provider: ProviderYahoo, Ticker: "GC=F"},
	}
}

// LoadRoutes reads a YAML routing override file and overlays it on the
// default table. Entries for unknown assets or providers are rejected.
func LoadRoutes(path string) (RoutingTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read routes file %s", path)
	}

	var overrides map[Asset]Route
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse routes file %s", path)
	}

	routes := DefaultRoutes()

	for asset, route := range overrides {
		if _, err := ParseAsset(string(asset)); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "routes file %s", path)
		}

		switch route.Provider {
		case ProviderBinance, ProviderYahoo, ProviderPolygon:
		default:
			return nil, errors.Newf(errors.ErrCodeInvalidProvider, "routes file %s: unsupported provider %q for %s", path, route.Provider, asset)
		}

		if route.Ticker == "" {
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "routes file %s: missing ticker for %s", path, asset)
		}

		routes[asset] = route
	}

	return routes, nil
}

// OutputFileName returns the fixed per-instrument output file name.
func OutputFileName(asset Asset, format WriterFormat) string {
	return fmt.Sprintf("%s_ohlcv_2025.%s", asset, format.Ext())
}

func joinAssets(assets []Asset) string {
	names := make([]string, len(assets))
	for i, a := range assets {
		names[i] = string(a)
	}

	return strings.Join(names, ", ")
}
