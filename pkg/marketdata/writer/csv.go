package writer

import (
	"encoding/csv"
	"os"

	"github.com/mercator-lab/ohlcv-fetch/internal/types"
	"github.com/mercator-lab/ohlcv-fetch/pkg/errors"
)

// CSVWriter writes a bar series as comma-delimited text with the fixed
// six-column header. The target file is overwritten unconditionally.
type CSVWriter struct {
	outputPath string
	file       *os.File
	csv        *csv.Writer
}

// NewCSVWriter creates a CSV writer targeting outputPath.
func NewCSVWriter(outputPath string) *CSVWriter {
	return &CSVWriter{outputPath: outputPath}
}

// Initialize creates (or truncates) the output file and writes the header row.
func (w *CSVWriter) Initialize() error {
	file, err := os.Create(w.outputPath)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to create %s", w.outputPath)
	}

	w.file = file
	w.csv = csv.NewWriter(file)

	if err := w.csv.Write(Header); err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to write header to %s", w.outputPath)
	}

	return nil
}

// Write appends one bar as a CSV row. None values become empty cells.
func (w *CSVWriter) Write(bar types.Bar) error {
	if w.csv == nil {
		return errors.New(errors.ErrCodeWriterNotReady, "csv writer is not initialized")
	}

	record := []string{
		bar.OpenTime.Format(TimestampLayout),
		formatValue(bar.Open),
		formatValue(bar.High),
		formatValue(bar.Low),
		formatValue(bar.Close),
		formatValue(bar.Volume),
	}

	if err := w.csv.Write(record); err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to write row to %s", w.outputPath)
	}

	return nil
}

// Finalize flushes buffered rows and reports any deferred write error.
func (w *CSVWriter) Finalize() (string, error) {
	if w.csv == nil {
		return "", errors.New(errors.ErrCodeWriterNotReady, "csv writer is not initialized")
	}

	w.csv.Flush()

	if err := w.csv.Error(); err != nil {
		return "", errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to flush %s", w.outputPath)
	}

	return w.outputPath, nil
}

// Close closes the underlying file.
func (w *CSVWriter) Close() error {
	if w.file == nil {
		return nil
	}

	if err := w.file.Close(); err != nil {
		return errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to close %s", w.outputPath)
	}

	w.file = nil

	return nil
}

// GetOutputPath returns the configured output file path.
func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}
