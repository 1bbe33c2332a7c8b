package provider

import (
	"context"
	"time"

	binance "github.com/adshao/go-binance/v2"

	"github.com/mercator-lab/ohlcv-fetch/internal/types"
	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
)

const (
	// binanceDailyInterval is the kline interval for daily candles.
	binanceDailyInterval = "1d"
	// binancePageLimit is the maximum number of klines per API request.
	binancePageLimit = 500
)

// BinanceKlinesService abstracts the go-binance klines request builder so
// the client can be replaced in tests without a real network.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient abstracts the go-binance client surface used here.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

// BinanceClient fetches daily klines from Binance's public (unauthenticated)
// historical candles endpoint. Both date bounds are inclusive.
type BinanceClient struct {
	client BinanceAPIClient
}

// NewBinanceClient creates a Binance provider. Public market data needs no
// API credentials.
func NewBinanceClient() *BinanceClient {
	return &BinanceClient{
		client: &binanceAPIAdapter{client: binance.NewClient("", "")},
	}
}

// NewBinanceClientWithAPI creates a Binance provider around a custom API
// client. Used in tests.
func NewBinanceClientWithAPI(api BinanceAPIClient) *BinanceClient {
	return &BinanceClient{client: api}
}

func (c *BinanceClient) Name() string { return "binance" }

// FetchDaily downloads daily klines for ticker over [start, end], both
// bounds inclusive, paginating past the per-request limit. Numeric fields
// are coerced leniently: a non-numeric value becomes None, never an error.
func (c *BinanceClient) FetchDaily(ctx context.Context, ticker string, start time.Time, end time.Time, onProgress OnDownloadProgress) ([]types.Bar, error) {
	// Binance API uses milliseconds for timestamps.
	startMillis := start.UnixMilli()
	endMillis := end.UnixMilli()

	total := float64(endMillis - startMillis)
	if total <= 0 {
		total = 1
	}

	var bars []types.Bar

	currentStart := startMillis

	for {
		klines, err := c.client.NewKlinesService().
			Symbol(ticker).
			Interval(binanceDailyInterval).
			StartTime(currentStart).
			EndTime(endMillis).
			Limit(binancePageLimit).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeProviderFetchFailed, err, "binance: failed to fetch klines for %s", ticker)
		}

		for _, k := range klines {
			bars = append(bars, normalizeKline(k))
		}

		reportProgress(onProgress, float64(currentStart-startMillis), total, "Downloading "+ticker+" klines from Binance")

		// Last page: no data or a short page.
		if len(klines) < binancePageLimit {
			break
		}

		// Next request starts just past the close of the last kline.
		currentStart = klines[len(klines)-1].CloseTime + 1
		if currentStart >= endMillis {
			break
		}
	}

	reportProgress(onProgress, total, total, "Downloading "+ticker+" klines from Binance")

	return bars, nil
}

// normalizeKline keeps only the OHLCV columns of the 12-field kline tuple
// and converts the open-time epoch milliseconds to a timestamp.
func normalizeKline(k *binance.Kline) types.Bar {
	return types.Bar{
		OpenTime: time.UnixMilli(k.OpenTime).UTC(),
		Open:     types.LenientDecimal(k.Open),
		High:     types.LenientDecimal(k.High),
		Low:      types.LenientDecimal(k.Low),
		Close:    types.LenientDecimal(k.Close),
		Volume:   types.LenientDecimal(k.Volume),
	}
}

// binanceAPIAdapter adapts *binance.Client to the BinanceAPIClient seam.
type binanceAPIAdapter struct {
	client *binance.Client
}

func (a *binanceAPIAdapter) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesAdapter{service: a.client.NewKlinesService()}
}

type binanceKlinesAdapter struct {
	service *binance.KlinesService
}

func (a *binanceKlinesAdapter) Symbol(symbol string) BinanceKlinesService {
	a.service = a.service.Symbol(symbol)
	return a
}

func (a *binanceKlinesAdapter) Interval(interval string) BinanceKlinesService {
	a.service = a.service.Interval(interval)
	return a
}

func (a *binanceKlinesAdapter) StartTime(startTime int64) BinanceKlinesService {
	a.service = a.service.StartTime(startTime)
	return a
}

func (a *binanceKlinesAdapter) EndTime(endTime int64) BinanceKlinesService {
	a.service = a.service.EndTime(endTime)
	return a
}

func (a *binanceKlinesAdapter) Limit(limit int) BinanceKlinesService {
	a.service = a.service.Limit(limit)
	return a
}

func (a *binanceKlinesAdapter) Do(ctx context.Context) ([]*binance.Kline, error) {
	return a.service.Do(ctx)
}
