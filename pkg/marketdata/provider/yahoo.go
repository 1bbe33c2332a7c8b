package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mercator-lab/ohlcv-fetch/internal/types"
	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches daily bars from the Yahoo Finance v8 chart API.
//
// Unlike Binance, Yahoo's end bound is exclusive: a request for
// [2025-01-01, 2025-01-05] yields bars up to and including 2025-01-04.
// This asymmetry is inherited from the upstream API and kept as is.
type YahooClient struct {
	client  *http.Client
	baseURL string
}

// NewYahooClient creates a Yahoo Finance provider.
func NewYahooClient() *YahooClient {
	return &YahooClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: yahooBaseURL,
	}
}

// NewYahooClientWithBaseURL creates a Yahoo provider against a custom
// endpoint. Used in tests with httptest servers.
func NewYahooClientWithBaseURL(baseURL string, client *http.Client) *YahooClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &YahooClient{client: client, baseURL: baseURL}
}

func (c *YahooClient) Name() string { return "yahoo" }

// yahooChart is the response structure of the Yahoo Finance chart API.
// Quote arrays carry explicit nulls for missing values.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDaily downloads daily bars for ticker over [start, end). Timestamps
// are converted to timezone-free values before export. A response with
// zero rows is an EmptyResult error, distinct from transport failures.
func (c *YahooClient) FetchDaily(ctx context.Context, ticker string, start time.Time, end time.Time, onProgress OnDownloadProgress) ([]types.Bar, error) {
	reportProgress(onProgress, 0, 1, "Downloading "+ticker+" bars from Yahoo Finance")

	chart, err := c.fetchChart(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptyResult, "yahoo: no data returned for %s", ticker)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptyResult, "yahoo: no quote data returned for %s", ticker)
	}

	quote := result.Indicators.Quote[0]
	endUnix := end.Unix()
	bars := make([]types.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		// The upstream end bound is exclusive in practice; enforce it so
		// behavior does not depend on endpoint quirks.
		if ts >= endUnix {
			continue
		}

		bars = append(bars, types.Bar{
			OpenTime: time.Unix(ts, 0).UTC(),
			Open:     types.DecimalFromFloatPtr(indexOrNil(quote.Open, i)),
			High:     types.DecimalFromFloatPtr(indexOrNil(quote.High, i)),
			Low:      types.DecimalFromFloatPtr(indexOrNil(quote.Low, i)),
			Close:    types.DecimalFromFloatPtr(indexOrNil(quote.Close, i)),
			Volume:   types.DecimalFromFloatPtr(indexOrNil(quote.Volume, i)),
		})
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeEmptyResult, "yahoo: no data returned for %s", ticker)
	}

	reportProgress(onProgress, 1, 1, "Downloading "+ticker+" bars from Yahoo Finance")

	return bars, nil
}

func (c *YahooClient) fetchChart(ctx context.Context, ticker string, start time.Time, end time.Time) (*yahooChart, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL, url.PathEscape(ticker), start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeProviderFetchFailed, err, "yahoo: failed to build request for %s", ticker)
	}

	// Yahoo rejects requests without a browser-like user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeProviderFetchFailed, err, "yahoo: failed to fetch %s", ticker)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeProviderFetchFailed, err, "yahoo: failed to read response for %s", ticker)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrCodeProviderFetchFailed, "yahoo: status %d for %s: %s", resp.StatusCode, ticker, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeProviderParseFailed, err, "yahoo: failed to decode response for %s", ticker)
	}

	if chart.Chart.Error != nil {
		return nil, errors.Newf(errors.ErrCodeProviderFetchFailed, "yahoo: api error for %s: %s", ticker, chart.Chart.Error.Description)
	}

	return &chart, nil
}

func indexOrNil(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}

	return values[i]
}
