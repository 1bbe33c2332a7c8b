package marketdata

import (
	"context"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mercator-lab/ohlcv-fetch/internal/logger"
	"github.com/mercator-lab/ohlcv-fetch/internal/types"
	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
	"github.com/mercator-lab/ohlcv-fetch/pkg/marketdata/provider"
	"github.com/mercator-lab/ohlcv-fetch/pkg/marketdata/writer"
)

// WriterFormat selects the export file format.
type WriterFormat string

const (
	FormatCSV     WriterFormat = "csv"
	FormatParquet WriterFormat = "parquet"
)

// Ext returns the file extension for the format.
func (f WriterFormat) Ext() string {
	return string(f)
}

// ClientConfig holds the configuration for the download client.
type ClientConfig struct {
	Format        WriterFormat `validate:"required,oneof=csv parquet"`
	DataPath      string       `validate:"required"`
	Routes        RoutingTable `validate:"required,min=1"`
	PolygonAPIKey string
}

// DownloadParams holds the parameters for a single asset download.
type DownloadParams struct {
	Asset     Asset     `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtefield=StartDate"`
}

// DownloadResult describes a completed fetch-and-export for one asset.
type DownloadResult struct {
	Asset       Asset
	RecordCount int
	OutputPath  string
}

// Client downloads OHLCV series from providers and exports one file per
// asset. One provider instance is created per provider type referenced
// by the routing table; nothing is shared across assets beyond that.
type Client struct {
	config     ClientConfig
	validate   *validator.Validate
	log        *logger.Logger
	providers  map[ProviderType]provider.Provider
	onProgress provider.OnDownloadProgress
}

// NewClient creates a download client with the given configuration.
// onProgress may be nil.
func NewClient(config ClientConfig, log *logger.Logger, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	c := &Client{
		config:     config,
		validate:   validate,
		log:        log,
		providers:  make(map[ProviderType]provider.Provider),
		onProgress: onProgress,
	}

	for _, route := range config.Routes {
		if _, ok := c.providers[route.Provider]; ok {
			continue
		}

		p, err := c.newProvider(route.Provider)
		if err != nil {
			return nil, err
		}

		c.providers[route.Provider] = p
	}

	return c, nil
}

// RegisterProvider replaces the provider used for a provider type. Tests
// use this to substitute fakes for the network-facing clients.
func (c *Client) RegisterProvider(providerType ProviderType, p provider.Provider) {
	c.providers[providerType] = p
}

// Download fetches one asset's series and exports it. An empty record
// set is a failure, not a valid zero-row output; no output file is
// touched unless the fetch returned rows.
func (c *Client) Download(ctx context.Context, params DownloadParams) (DownloadResult, error) {
	if err := c.validate.Struct(params); err != nil {
		return DownloadResult{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	route, ok := c.config.Routes[params.Asset]
	if !ok {
		return DownloadResult{}, errors.Newf(errors.ErrCodeUnknownAsset, "no route configured for asset %s", params.Asset)
	}

	prov, ok := c.providers[route.Provider]
	if !ok {
		return DownloadResult{}, errors.Newf(errors.ErrCodeInvalidProvider, "no provider registered for %s", route.Provider)
	}

	c.log.Info("downloading asset",
		zap.String("asset", string(params.Asset)),
		zap.String("provider", prov.Name()),
		zap.String("ticker", route.Ticker),
		zap.String("start", params.StartDate.Format(DateLayout)),
		zap.String("end", params.EndDate.Format(DateLayout)),
	)

	bars, err := prov.FetchDaily(ctx, route.Ticker, params.StartDate, params.EndDate, c.onProgress)
	if err != nil {
		return DownloadResult{}, err
	}

	if len(bars) == 0 {
		return DownloadResult{}, errors.Newf(errors.ErrCodeEmptyResult, "%s: provider %s returned no rows for %s", params.Asset, prov.Name(), route.Ticker)
	}

	outputPath, err := c.export(params.Asset, bars)
	if err != nil {
		return DownloadResult{}, err
	}

	return DownloadResult{
		Asset:       params.Asset,
		RecordCount: len(bars),
		OutputPath:  outputPath,
	}, nil
}

func (c *Client) export(asset Asset, bars []types.Bar) (string, error) {
	outputPath := filepath.Join(c.config.DataPath, OutputFileName(asset, c.config.Format))

	w := c.newWriter(outputPath)
	defer func() {
		if err := w.Close(); err != nil {
			c.log.Warn("failed to close writer", zap.String("path", outputPath), zap.Error(err))
		}
	}()

	if err := w.Initialize(); err != nil {
		return "", err
	}

	for _, bar := range bars {
		if err := w.Write(bar); err != nil {
			return "", err
		}
	}

	return w.Finalize()
}

func (c *Client) newWriter(outputPath string) writer.SeriesWriter {
	if c.config.Format == FormatParquet {
		return writer.NewParquetWriter(outputPath)
	}

	return writer.NewCSVWriter(outputPath)
}

func (c *Client) newProvider(providerType ProviderType) (provider.Provider, error) {
	switch providerType {
	case ProviderBinance:
		return provider.NewBinanceClient(), nil
	case ProviderYahoo:
		return provider.NewYahooClient(), nil
	case ProviderPolygon:
		return provider.NewPolygonClient(c.config.PolygonAPIKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider type: %s", providerType)
	}
}
