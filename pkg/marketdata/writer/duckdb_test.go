package writer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
)

func TestParquetWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xauusd_ohlcv_2025.parquet")

	w := NewParquetWriter(path)
	require.NoError(t, w.Initialize())

	bar := makeBar(3)
	bar.Volume = optional.None[decimal.Decimal]()
	require.NoError(t, w.Write(makeBar(1)))
	require.NoError(t, w.Write(bar))

	out, err := w.Finalize()
	require.NoError(t, err)
	require.Equal(t, path, out)
	require.NoError(t, w.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	stats, err := ReadParquetStats(path)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalRows)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), stats.StartTime.UTC())
	require.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), stats.EndTime.UTC())
}

func TestParquetWriterNotInitialized(t *testing.T) {
	w := NewParquetWriter(filepath.Join(t.TempDir(), "out.parquet"))

	err := w.Write(makeBar(1))
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.ErrCodeWriterNotReady))

	_, err = w.Finalize()
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.ErrCodeWriterNotReady))
}

func TestReadParquetStatsMissingFile(t *testing.T) {
	_, err := ReadParquetStats(filepath.Join(t.TempDir(), "absent.parquet"))
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.ErrCodeExportFailed))
}
