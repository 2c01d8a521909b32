package exporter

import (
	"fmt"
	"path/filepath"
	"strings"

	"tablenorm/internal/table"
)

// Format identifies an output file type.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
	FormatSQLite  Format = "sqlite"
)

// FormatForPath picks the output format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".parquet":
		return FormatParquet, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("unsupported output file type %q", filepath.Ext(path))
}

// Extension returns the canonical file extension for f, including the dot.
func (f Format) Extension() string {
	if f == FormatSQLite {
		return ".db"
	}
	return "." + string(f)
}

// columnKinds returns the kind of every column of t.
func columnKinds(t *table.Table) []table.Kind {
	cols := t.Columns()
	kinds := make([]table.Kind, len(cols))
	for i, c := range cols {
		kinds[i] = t.ColumnKind(c)
	}
	return kinds
}

// sqlType maps a column kind to a SQLite column type. Dates are stored as
// YYYY-MM-DD text.
func sqlType(k table.Kind) string {
	switch k {
	case table.KindInteger:
		return "INTEGER"
	case table.KindNumber:
		return "REAL"
	default:
		return "TEXT"
	}
}

// sqlArg converts a cell to a database/sql argument for a column of kind k.
func sqlArg(v table.Value, k table.Kind) any {
	if v.IsMissing() {
		return nil
	}
	switch k {
	case table.KindInteger:
		i, _ := v.Int()
		return i
	case table.KindNumber:
		f, _ := v.Float()
		return f
	default:
		return v.Text()
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
