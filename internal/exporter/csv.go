package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"

	"tablenorm/internal/table"
)

// CSVWriter provides delimited text export
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Delimiter rune // defaults to ','
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteFile writes t to path atomically.
func (w *CSVWriter) WriteFile(ctx context.Context, path string, t *table.Table, options WriteOptions) error {
	w.logger.DebugContext(ctx, "Writing CSV file",
		slog.String("file_path", path),
		slog.Int("record_count", t.NumRows()))

	return writeAtomic(path, func(f *os.File) error {
		return WriteTable(f, t, options)
	})
}

// WriteTable writes the header and every row of t to out. Missing values are
// empty fields and dates use YYYY-MM-DD.
func WriteTable(out io.Writer, t *table.Table, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if options.Delimiter != 0 {
		writer.Comma = options.Delimiter
	}

	if err := writer.Write(t.Columns()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range t.Records() {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
