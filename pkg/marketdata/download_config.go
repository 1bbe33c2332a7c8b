package marketdata

import (
	"github.com/go-playground/validator/v10"

	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
)

// BaseDownloadConfig contains the fields common to all provider download
// configurations. Dates use the YYYY-MM-DD calendar-date format.
type BaseDownloadConfig struct {
	Ticker    string `json:"ticker" jsonschema:"title=Ticker,description=The provider-specific symbol to download (e.g. BTCUSDT or GC=F),required" validate:"required"`
	StartDate string `json:"startDate" jsonschema:"title=Start Date,description=Start date in YYYY-MM-DD format,format=date,required" validate:"required"`
	EndDate   string `json:"endDate" jsonschema:"title=End Date,description=End date in YYYY-MM-DD format,format=date,required" validate:"required"`
}

// BinanceDownloadConfig configures a Binance download. The public market
// data API does not require authentication.
type BinanceDownloadConfig struct {
	BaseDownloadConfig
}

// YahooDownloadConfig configures a Yahoo Finance download. Note the end
// date is exclusive for this provider.
type YahooDownloadConfig struct {
	BaseDownloadConfig
}

// PolygonDownloadConfig configures a Polygon.io download.
type PolygonDownloadConfig struct {
	BaseDownloadConfig

	APIKey string `json:"apiKey" jsonschema:"title=API Key,description=Polygon.io API key for authentication,required" validate:"required"`
}

// Validate validates the BaseDownloadConfig fields, including the date
// format of both bounds.
func (c *BaseDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download config", err)
	}

	if _, err := ParseDate(c.StartDate); err != nil {
		return err
	}

	if _, err := ParseDate(c.EndDate); err != nil {
		return err
	}

	return nil
}

// Validate validates the PolygonDownloadConfig.
func (c *PolygonDownloadConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download config", err)
	}

	return c.BaseDownloadConfig.Validate()
}
