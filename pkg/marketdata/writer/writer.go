package writer

import (
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/mercator-lab/ohlcv-fetch/internal/types"
)

// Header is the fixed column set every exported series carries, in order.
var Header = []string{"Open Time", "Open", "High", "Low", "Close", "Volume"}

// TimestampLayout is how Open Time values are rendered: no timezone
// offset, regardless of provider.
const TimestampLayout = "2006-01-02 15:04:05"

// SeriesWriter defines the interface for persisting a normalized OHLCV
// series to a destination file.
type SeriesWriter interface {
	// Initialize sets up the writer, truncating any previous output.
	Initialize() error
	// Write persists a single bar.
	Write(bar types.Bar) error
	// Finalize completes the writing process and returns the output path.
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// formatValue renders an optional decimal for export. None becomes the
// empty string, keeping null upstream values visible as blanks.
func formatValue(v optional.Option[decimal.Decimal]) string {
	d, err := v.Take()
	if err != nil {
		return ""
	}

	return d.String()
}
