package marketdata

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// AssetResult records the outcome of one asset in a batch.
type AssetResult struct {
	Asset       Asset
	RecordCount int
	OutputPath  string
	Err         error
}

// Succeeded reports whether the asset downloaded and exported cleanly.
func (r AssetResult) Succeeded() bool {
	return r.Err == nil
}

// Summary is the outcome of a batch download.
type Summary struct {
	Results   []AssetResult
	Succeeded int
	Total     int
}

// AllSucceeded reports whether every requested asset succeeded. The
// process exit status follows this.
func (s Summary) AllSucceeded() bool {
	return s.Succeeded == s.Total
}

// String renders the success tally, e.g. "2/3 successful".
func (s Summary) String() string {
	return fmt.Sprintf("%d/%d successful", s.Succeeded, s.Total)
}

// DownloadAll runs fetch-and-export for each asset in request order,
// strictly one at a time. Failures are independent: an asset's error is
// recorded in the summary and the batch continues with the next asset.
// DownloadAll itself never fails.
func (c *Client) DownloadAll(ctx context.Context, assets []Asset, start time.Time, end time.Time) Summary {
	summary := Summary{
		Results: make([]AssetResult, 0, len(assets)),
		Total:   len(assets),
	}

	for _, asset := range assets {
		result, err := c.Download(ctx, DownloadParams{
			Asset:     asset,
			StartDate: start,
			EndDate:   end,
		})
		if err != nil {
			c.log.Error("asset download failed",
				zap.String("asset", string(asset)),
				zap.Error(err),
			)
			summary.Results = append(summary.Results, AssetResult{Asset: asset, Err: err})

			continue
		}

		c.log.Info("asset downloaded",
			zap.String("asset", string(asset)),
			zap.Int("records", result.RecordCount),
			zap.String("output", result.OutputPath),
		)

		summary.Succeeded++
		summary.Results = append(summary.Results, AssetResult{
			Asset:       asset,
			RecordCount: result.RecordCount,
			OutputPath:  result.OutputPath,
		})
	}

	return summary
}
