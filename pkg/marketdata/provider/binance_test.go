package provider

import (
	"context"
	"testing"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
)

// mockBinanceAPI implements BinanceAPIClient for testing. It records the
// request parameters of every call and serves canned pages.
type mockBinanceAPI struct {
	klinesPerCall [][]*binance.Kline
	errsPerCall   []error
	callCount     int

	symbols   []string
	intervals []string
	starts    []int64
	ends      []int64
	limits    []int
}

func (m *mockBinanceAPI) NewKlinesService() BinanceKlinesService {
	return &mockKlinesService{api: m}
}

type mockKlinesService struct {
	api      *mockBinanceAPI
	symbol   string
	interval string
	start    int64
	end      int64
	limit    int
}

func (s *mockKlinesService) Symbol(symbol string) BinanceKlinesService {
	s.symbol = symbol
	return s
}

func (s *mockKlinesService) Interval(interval string) BinanceKlinesService {
	s.interval = interval
	return s
}

func (s *mockKlinesService) StartTime(startTime int64) BinanceKlinesService {
	s.start = startTime
	return s
}

func (s *mockKlinesService) EndTime(endTime int64) BinanceKlinesService {
	s.end = endTime
	return s
}

func (s *mockKlinesService) Limit(limit int) BinanceKlinesService {
	s.limit = limit
	return s
}

func (s *mockKlinesService) Do(_ context.Context) ([]*binance.Kline, error) {
	api := s.api
	api.symbols = append(api.symbols, s.symbol)
	api.intervals = append(api.intervals, s.interval)
	api.starts = append(api.starts, s.start)
	api.ends = append(api.ends, s.end)
	api.limits = append(api.limits, s.limit)

	idx := api.callCount
	api.callCount++

	var err error
	if idx < len(api.errsPerCall) {
		err = api.errsPerCall[idx]
	}

	if idx < len(api.klinesPerCall) {
		return api.klinesPerCall[idx], err
	}

	return nil, err
}

func makeKline(openTime int64, open, high, low, closePrice, volume string) *binance.Kline {
	return &binance.Kline{
		OpenTime:  openTime,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		Volume:    volume,
		CloseTime: openTime + 24*60*60*1000 - 1,
	}
}

type BinanceClientTestSuite struct {
	suite.Suite
	start time.Time
	end   time.Time
}

func TestBinanceClientSuite(t *testing.T) {
	suite.Run(t, new(BinanceClientTestSuite))
}

func (suite *BinanceClientTestSuite) SetupTest() {
	suite.start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.end = time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
}

func (suite *BinanceClientTestSuite) TestFetchDailyNormalization() {
	openTime := suite.start.UnixMilli()
	api := &mockBinanceAPI{
		klinesPerCall: [][]*binance.Kline{{
			makeKline(openTime, "93576.1", "94500", "93000.55", "94100", "1234.5"),
		}},
	}

	client := NewBinanceClientWithAPI(api)

	bars, err := client.FetchDaily(context.Background(), "BTCUSDT", suite.start, suite.end, nil)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 1)

	bar := bars[0]
	suite.Equal(time.UnixMilli(openTime).UTC(), bar.OpenTime)
	suite.True(bar.Open.Unwrap().Equal(decimal.RequireFromString("93576.1")))
	suite.True(bar.High.Unwrap().Equal(decimal.RequireFromString("94500")))
	suite.True(bar.Low.Unwrap().Equal(decimal.RequireFromString("93000.55")))
	suite.True(bar.Close.Unwrap().Equal(decimal.RequireFromString("94100")))
	suite.True(bar.Volume.Unwrap().Equal(decimal.RequireFromString("1234.5")))
}

func (suite *BinanceClientTestSuite) TestFetchDailyLenientCoercion() {
	api := &mockBinanceAPI{
		klinesPerCall: [][]*binance.Kline{{
			makeKline(suite.start.UnixMilli(), "100", "not-a-number", "99", "", "101.5"),
		}},
	}

	client := NewBinanceClientWithAPI(api)

	bars, err := client.FetchDaily(context.Background(), "BTCUSDT", suite.start, suite.end, nil)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 1)

	// Non-numeric values become None, never an error.
	suite.True(bars[0].High.IsNone())
	suite.True(bars[0].Close.IsNone())
	suite.True(bars[0].Open.IsSome())
	suite.True(bars[0].Volume.IsSome())
}

func (suite *BinanceClientTestSuite) TestFetchDailyRequestBounds() {
	api := &mockBinanceAPI{
		klinesPerCall: [][]*binance.Kline{{
			makeKline(suite.start.UnixMilli(), "1", "1", "1", "1", "1"),
		}},
	}

	client := NewBinanceClientWithAPI(api)

	_, err := client.FetchDaily(context.Background(), "ETHUSDT", suite.start, suite.end, nil)
	suite.Require().NoError(err)
	suite.Require().Equal(1, api.callCount)

	// Both bounds map to epoch milliseconds; the end bound is inclusive.
	suite.Equal("ETHUSDT", api.symbols[0])
	suite.Equal("1d", api.intervals[0])
	suite.Equal(suite.start.UnixMilli(), api.starts[0])
	suite.Equal(suite.end.UnixMilli(), api.ends[0])
	suite.Equal(binancePageLimit, api.limits[0])
}

func (suite *BinanceClientTestSuite) TestFetchDailyPagination() {
	end := suite.start.AddDate(0, 0, 600)

	firstPage := make([]*binance.Kline, binancePageLimit)
	for i := range firstPage {
		openTime := suite.start.AddDate(0, 0, i).UnixMilli()
		firstPage[i] = makeKline(openTime, "1", "2", "0.5", "1.5", "10")
	}

	secondPage := []*binance.Kline{
		makeKline(suite.start.AddDate(0, 0, binancePageLimit).UnixMilli(), "1", "2", "0.5", "1.5", "10"),
	}

	api := &mockBinanceAPI{klinesPerCall: [][]*binance.Kline{firstPage, secondPage}}
	client := NewBinanceClientWithAPI(api)

	bars, err := client.FetchDaily(context.Background(), "BTCUSDT", suite.start, end, nil)
	suite.Require().NoError(err)
	suite.Len(bars, binancePageLimit+1)
	suite.Equal(2, api.callCount)

	// The second request resumes just past the last kline's close time.
	lastClose := firstPage[len(firstPage)-1].CloseTime
	suite.Equal(lastClose+1, api.starts[1])
}

func (suite *BinanceClientTestSuite) TestFetchDailyError() {
	api := &mockBinanceAPI{
		klinesPerCall: [][]*binance.Kline{nil},
		errsPerCall:   []error{errors.New(errors.ErrCodeUnknown, "api unreachable")},
	}

	client := NewBinanceClientWithAPI(api)

	bars, err := client.FetchDaily(context.Background(), "BTCUSDT", suite.start, suite.end, nil)
	suite.Require().Error(err)
	suite.Nil(bars)
	suite.True(errors.HasCode(err, errors.ErrCodeProviderFetchFailed))
}

func (suite *BinanceClientTestSuite) TestFetchDailyEmptyPage() {
	api := &mockBinanceAPI{klinesPerCall: [][]*binance.Kline{{}}}
	client := NewBinanceClientWithAPI(api)

	bars, err := client.FetchDaily(context.Background(), "BTCUSDT", suite.start, suite.end, nil)
	suite.Require().NoError(err)
	suite.Empty(bars)
	suite.Equal(1, api.callCount)
}

func (suite *BinanceClientTestSuite) TestName() {
	suite.Equal("binance", NewBinanceClient().Name())
}
