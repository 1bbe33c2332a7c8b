package provider

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"

	"github.com/mercator-lab/ohlcv-fetch/internal/types"
	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
)

// PolygonClient fetches daily aggregate bars from Polygon.io. It is an
// alternative market-data route for instruments with a Polygon ticker,
// selectable through a routing override. Requires an API key.
type PolygonClient struct {
	client *polygon.Client
}

// NewPolygonClient creates a Polygon provider.
func NewPolygonClient(apiKey string) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon: api key is required")
	}

	return &PolygonClient{client: polygon.New(apiKey)}, nil
}

func (c *PolygonClient) Name() string { return "polygon" }

// FetchDaily downloads daily aggregates for ticker over [start, end].
func (c *PolygonClient) FetchDaily(ctx context.Context, ticker string, start time.Time, end time.Time, onProgress OnDownloadProgress) ([]types.Bar, error) {
	totalDays := float64(int(end.Sub(start).Hours()/24) + 1)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := c.client.ListAggs(ctx, params)

	var bars []types.Bar

	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, types.Bar{
			OpenTime: time.Time(agg.Timestamp).UTC(),
			Open:     optional.Some(decimal.NewFromFloat(agg.Open)),
			High:     optional.Some(decimal.NewFromFloat(agg.High)),
			Low:      optional.Some(decimal.NewFromFloat(agg.Low)),
			Close:    optional.Some(decimal.NewFromFloat(agg.Close)),
			Volume:   optional.Some(decimal.NewFromFloat(agg.Volume)),
		})

		reportProgress(onProgress, float64(len(bars)), totalDays, "Downloading "+ticker+" aggregates from Polygon")
	}

	if iter.Err() != nil {
		return nil, errors.Wrapf(errors.ErrCodeProviderFetchFailed, iter.Err(), "polygon: failed to fetch aggregates for %s", ticker)
	}

	reportProgress(onProgress, totalDays, totalDays, "Downloading "+ticker+" aggregates from Polygon")

	return bars, nil
}
