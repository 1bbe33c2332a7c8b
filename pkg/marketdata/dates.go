package marketdata

import (
	"time"

	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
)

// DateLayout is the only accepted calendar-date format for CLI bounds.
const DateLayout = "2006-01-02"

// DefaultStartDate is the fixed default lower bound for downloads.
const DefaultStartDate = "2025-01-01"

// ParseDate parses a YYYY-MM-DD string. Anything else fails with an
// InvalidDateFormat error carrying the offending string. Both CLI bounds
// go through this before any network activity.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrCodeInvalidDateFormat, err, "invalid date format: %q, use YYYY-MM-DD", s)
	}

	return t, nil
}
