package exporter

import (
	"context"
	"log/slog"

	apperrors "tablenorm/internal/errors"
	"tablenorm/internal/table"
)

// Options configures the sinks behind an Exporter.
type Options struct {
	// BOMPrefix starts delimited output with a UTF-8 byte order mark.
	BOMPrefix bool
	// Delimiter overrides the separator of .csv output. .tsv always uses tab.
	Delimiter rune
	// SQLiteTable names the table in .db/.sqlite output.
	SQLiteTable string
	// Sheet names the worksheet in .xlsx output.
	Sheet string
}

// Exporter writes a table in the format implied by the output path.
type Exporter struct {
	opts    Options
	logger  *slog.Logger
	csv     *CSVWriter
	xlsx    *XLSXWriter
	parquet *ParquetWriter
	sqlite  *SQLiteWriter
}

// New creates an exporter with one writer per supported format.
func New(opts Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "exporter"))
	return &Exporter{
		opts:    opts,
		logger:  logger,
		csv:     NewCSVWriter(logger),
		xlsx:    NewXLSXWriter(opts.Sheet, logger),
		parquet: NewParquetWriter(logger),
		sqlite:  NewSQLiteWriter(opts.SQLiteTable, logger),
	}
}

// Export writes t to path. Either the complete output is in place afterwards
// or path is untouched and a STORAGE error is returned.
func (e *Exporter) Export(ctx context.Context, path string, t *table.Table) error {
	format, err := FormatForPath(path)
	if err != nil {
		return apperrors.NewValidationError(err.Error()).WithContext("path", path)
	}

	switch format {
	case FormatCSV:
		err = e.csv.WriteFile(ctx, path, t, WriteOptions{Delimiter: e.opts.Delimiter, BOMPrefix: e.opts.BOMPrefix})
	case FormatTSV:
		err = e.csv.WriteFile(ctx, path, t, WriteOptions{Delimiter: '\t', BOMPrefix: e.opts.BOMPrefix})
	case FormatXLSX:
		err = e.xlsx.WriteFile(ctx, path, t)
	case FormatParquet:
		err = e.parquet.WriteFile(ctx, path, t)
	case FormatSQLite:
		err = e.sqlite.WriteFile(ctx, path, t)
	}
	if err != nil {
		e.logger.ErrorContext(ctx, "export failed",
			slog.String("path", path),
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError("failed to write output", err).
			WithContext("path", path).
			WithContext("format", string(format))
	}

	e.logger.InfoContext(ctx, "output written",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", t.NumRows()))
	return nil
}
