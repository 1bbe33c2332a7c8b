package provider

import (
	"context"
	"time"

	"github.com/mercator-lab/ohlcv-fetch/internal/types"
)

// OnDownloadProgress reports download progress for long-running fetches.
type OnDownloadProgress = func(current float64, total float64, message string)

// Provider fetches one instrument's daily OHLCV series over a date range.
//
// End-bound semantics follow each upstream API: Binance treats end as
// inclusive, Yahoo as exclusive. Bars are returned in the provider's
// ascending time order and are not re-sorted.
type Provider interface {
	// FetchDaily returns the daily bars for ticker over [start, end].
	// onProgress may be nil.
	FetchDaily(ctx context.Context, ticker string, start time.Time, end time.Time, onProgress OnDownloadProgress) ([]types.Bar, error)
	// Name returns the provider name used in logs and error messages.
	Name() string
}

func reportProgress(onProgress OnDownloadProgress, current float64, total float64, message string) {
	if onProgress != nil {
		onProgress(current, total, message)
	}
}
