package writer

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/mercator-lab/ohlcv-fetch/internal/types"
	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
)

// ParquetWriter buffers bars in an in-memory DuckDB table and exports
// them as a Parquet file with the fixed six-column schema on Finalize.
type ParquetWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewParquetWriter creates a Parquet writer targeting outputPath.
func NewParquetWriter(outputPath string) *ParquetWriter {
	return &ParquetWriter{outputPath: outputPath}
}

// Initialize opens the in-memory database, creates the staging table, and
// prepares the insert statement inside a transaction.
func (w *ParquetWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeExportFailed, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS ohlcv (
			id TEXT,
			open_time TIMESTAMP,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeExportFailed, "failed to create staging table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeExportFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO ohlcv (id, open_time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return errors.Wrap(errors.ErrCodeExportFailed, "failed to prepare insert", err)
	}

	return nil
}

// Write stages a single bar. None values are stored as SQL NULL.
func (w *ParquetWriter) Write(bar types.Bar) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeWriterNotReady, "parquet writer is not initialized")
	}

	_, err := w.stmt.Exec(
		uuid.New().String(),
		bar.OpenTime,
		nullableFloat(bar.Open),
		nullableFloat(bar.High),
		nullableFloat(bar.Low),
		nullableFloat(bar.Close),
		nullableFloat(bar.Volume),
	)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to stage row for %s", w.outputPath)
	}

	return nil
}

// Finalize commits the staged rows and exports them to the Parquet file,
// renaming columns to the exported header names.
func (w *ParquetWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeWriterNotReady, "parquet writer is not initialized")
	}

	if err := w.tx.Commit(); err != nil {
		return "", errors.Wrap(errors.ErrCodeExportFailed, "failed to commit staged rows", err)
	}

	w.tx = nil

	copySQL := fmt.Sprintf(`
		COPY (
			SELECT
				open_time AS "Open Time",
				open AS "Open",
				high AS "High",
				low AS "Low",
				close AS "Close",
				volume AS "Volume"
			FROM ohlcv
			ORDER BY open_time
		) TO '%s' (FORMAT PARQUET)
	`, strings.ReplaceAll(w.outputPath, "'", "''"))

	if _, err := w.db.Exec(copySQL); err != nil {
		return "", errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to export %s", w.outputPath)
	}

	return w.outputPath, nil
}

// Close releases the statement and database handle.
func (w *ParquetWriter) Close() error {
	if w.stmt != nil {
		w.stmt.Close()
		w.stmt = nil
	}

	if w.tx != nil {
		w.tx.Rollback()
		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeExportFailed, "failed to close DuckDB connection", err)
		}

		w.db = nil
	}

	return nil
}

// GetOutputPath returns the configured output file path.
func (w *ParquetWriter) GetOutputPath() string {
	return w.outputPath
}

// ParquetStats summarizes an exported Parquet series.
type ParquetStats struct {
	TotalRows int64
	StartTime time.Time
	EndTime   time.Time
}

// ReadParquetStats reads row count and time range of a Parquet export.
func ReadParquetStats(path string) (ParquetStats, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return ParquetStats{}, errors.Wrap(errors.ErrCodeExportFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	viewSQL := fmt.Sprintf(`CREATE VIEW ohlcv AS SELECT * FROM read_parquet('%s')`,
		strings.ReplaceAll(path, "'", "''"))
	if _, err := db.Exec(viewSQL); err != nil {
		return ParquetStats{}, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to read %s", path)
	}

	query, args, err := squirrel.
		Select(`COUNT(*)`, `MIN("Open Time")`, `MAX("Open Time")`).
		From("ohlcv").
		ToSql()
	if err != nil {
		return ParquetStats{}, errors.Wrap(errors.ErrCodeExportFailed, "failed to build stats query", err)
	}

	var (
		stats      ParquetStats
		start, end sql.NullTime
	)

	if err := db.QueryRow(query, args...).Scan(&stats.TotalRows, &start, &end); err != nil {
		return ParquetStats{}, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to query stats for %s", path)
	}

	stats.StartTime = start.Time
	stats.EndTime = end.Time

	return stats, nil
}

func nullableFloat(v optional.Option[decimal.Decimal]) any {
	d, err := v.Take()
	if err != nil {
		return nil
	}

	return d.InexactFloat64()
}
