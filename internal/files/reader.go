package files

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "tablenorm/internal/errors"
	"tablenorm/internal/table"
)

// Format is the on-disk layout of an input file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the input format from the file extension. .txt files
// are read as delimited text with the configured delimiter.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported input file type %q", filepath.Ext(path))
}

// ReadOptions tunes how an input file is read.
type ReadOptions struct {
	// Delimiter overrides the format's separator (',' for CSV, tab for TSV).
	Delimiter rune
	// Encoding of delimited input. Empty means UTF-8.
	Encoding Encoding
	// Sheet selects a worksheet of an .xlsx file. Empty means the first sheet.
	Sheet string
}

// Reader loads input files into raw tables.
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a reader that logs with the given logger.
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{logger: logger.With(slog.String("component", "reader"))}
}

// Load reads path into a table of strings. Empty fields become missing.
// An absent file is a NOT_FOUND error, a file without a header row is an
// INPUT error and malformed delimited text is a PARSING error.
func (r *Reader) Load(ctx context.Context, path string, opts ReadOptions) (*table.Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, apperrors.NewInputError(err.Error(), nil).WithContext("path", path)
	}

	var t *table.Table
	switch format {
	case FormatXLSX:
		t, err = ReadXLSX(path, opts.Sheet)
	default:
		if opts.Delimiter == 0 && format == FormatTSV {
			opts.Delimiter = '\t'
		}
		t, err = readDelimitedFile(path, opts)
	}
	if err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "input loaded",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumColumns()))
	return t, nil
}

func readDelimitedFile(path string, opts ReadOptions) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	t, err := ReadDelimited(f, opts)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	return t, nil
}

// ReadDelimited parses delimited text. Rows shorter than the header are
// padded with missing values and longer rows are truncated. Blank lines are
// skipped.
func ReadDelimited(src io.Reader, opts ReadOptions) (*table.Table, error) {
	decoded, err := NewDecodingReader(src, opts.Encoding)
	if err != nil {
		return nil, apperrors.NewInputError("cannot decode input", err)
	}

	cr := csv.NewReader(decoded)
	if opts.Delimiter != 0 {
		cr.Comma = opts.Delimiter
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if stderrors.Is(err, io.EOF) {
		return nil, apperrors.NewInputError("input is empty: no header row", nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("cannot read header row", err)
	}

	var records [][]string
	for {
		record, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("malformed delimited input", err)
		}
		records = append(records, record)
	}
	return table.FromRecords(header, records), nil
}

// ReadXLSX loads one worksheet. The first non-blank row is the header and
// blank rows are skipped.
func ReadXLSX(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, openError(path, err)
		}
		return nil, apperrors.NewParsingError("cannot open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, apperrors.NewInputError("workbook has no sheets", nil).WithContext("path", path)
		}
		sheet = sheets[0]
	} else if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", sheet)).WithContext("path", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError("cannot read sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}

	var nonBlank [][]string
	for _, row := range rows {
		if !blankRow(row) {
			nonBlank = append(nonBlank, row)
		}
	}
	if len(nonBlank) == 0 {
		return nil, apperrors.NewInputError("sheet is empty: no header row", nil).
			WithContext("path", path).
			WithContext("sheet", sheet)
	}
	return table.FromRecords(nonBlank[0], nonBlank[1:]), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

func openError(path string, err error) error {
	if stderrors.Is(err, fs.ErrNotExist) {
		return apperrors.NewAppError(apperrors.ErrTypeNotFound,
			fmt.Sprintf("input file %s not found", path), err).WithContext("path", path)
	}
	return apperrors.NewInputError("cannot open input file", err).WithContext("path", path)
}
