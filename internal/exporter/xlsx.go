package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"tablenorm/internal/table"
)

const dateNumFmt = "yyyy-mm-dd"

// XLSXWriter exports a table as a single-sheet workbook.
type XLSXWriter struct {
	logger *slog.Logger
	sheet  string
}

// NewXLSXWriter creates a writer that names the worksheet sheet.
func NewXLSXWriter(sheet string, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if sheet == "" {
		sheet = "cleaned"
	}
	return &XLSXWriter{logger: logger, sheet: sheet}
}

// WriteFile writes t to path atomically. Integer, number and date cells are
// stored as typed values, missing cells are left empty.
func (w *XLSXWriter) WriteFile(ctx context.Context, path string, t *table.Table) error {
	w.logger.DebugContext(ctx, "Writing XLSX file",
		slog.String("file_path", path),
		slog.String("sheet", w.sheet),
		slog.Int("record_count", t.NumRows()))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), w.sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for j, name := range t.Columns() {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(w.sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header %s: %w", name, err)
		}
	}

	for i := 0; i < t.NumRows(); i++ {
		for j, v := range t.Row(i) {
			if v.IsMissing() {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(w.sheet, cell, xlsxValue(v)); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if err := w.styleDateColumns(f, t); err != nil {
		return err
	}

	return writeAtomic(path, func(out *os.File) error {
		if err := f.Write(out); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		return nil
	})
}

func (w *XLSXWriter) styleDateColumns(f *excelize.File, t *table.Table) error {
	if t.NumRows() == 0 {
		return nil
	}
	numFmt := dateNumFmt
	var style int
	for j, kind := range columnKinds(t) {
		if kind != table.KindDate {
			continue
		}
		if style == 0 {
			var err error
			if style, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt}); err != nil {
				return fmt.Errorf("failed to create date style: %w", err)
			}
		}
		top, _ := excelize.CoordinatesToCellName(j+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(j+1, t.NumRows()+1)
		if err := f.SetCellStyle(w.sheet, top, bottom, style); err != nil {
			return fmt.Errorf("failed to style date column: %w", err)
		}
	}
	return nil
}

func xlsxValue(v table.Value) interface{} {
	switch v.Kind() {
	case table.KindInteger:
		i, _ := v.Int()
		return i
	case table.KindNumber:
		f, _ := v.Float()
		return f
	case table.KindDate:
		d, _ := v.Time()
		return d
	default:
		return v.Text()
	}
}
