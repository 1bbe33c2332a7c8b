package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Bar is one daily OHLCV record after provider normalization.
//
// Price and volume fields are optional because providers coerce
// malformed upstream values to None instead of failing the whole
// download. OpenTime carries no timezone meaning once exported.
type Bar struct {
	OpenTime time.Time                        `csv:"open_time" yaml:"open_time"`
	Open     optional.Option[decimal.Decimal] `csv:"open" yaml:"open"`
	High     optional.Option[decimal.Decimal] `csv:"high" yaml:"high"`
	Low      optional.Option[decimal.Decimal] `csv:"low" yaml:"low"`
	Close    optional.Option[decimal.Decimal] `csv:"close" yaml:"close"`
	Volume   optional.Option[decimal.Decimal] `csv:"volume" yaml:"volume"`
}

// LenientDecimal parses s into a decimal value, returning None for
// anything that does not parse as a number. Upstream APIs are known to
// ship placeholder fields, so a bad value never aborts a download.
func LenientDecimal(s string) optional.Option[decimal.Decimal] {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return optional.None[decimal.Decimal]()
	}

	return optional.Some(d)
}

// DecimalFromFloatPtr converts a possibly-nil float into an optional
// decimal. Used by providers whose JSON payloads carry explicit nulls.
func DecimalFromFloatPtr(f *float64) optional.Option[decimal.Decimal] {
	if f == nil {
		return optional.None[decimal.Decimal]()
	}

	return optional.Some(decimal.NewFromFloat(*f))
}
