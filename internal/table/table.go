// Package table holds the in-memory tabular model shared by the cleaning
// pipeline, the transforms, and the file readers and writers.
package table

import (
	"fmt"
)

// Table is an ordered set of named columns and rows of typed values.
// Every row has exactly one value per column.
type Table struct {
	columns []string
	rows    [][]Value
}

// New creates an empty table with the given columns.
func New(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols}
}

// FromRecords builds a raw table from header and string records.
// Empty fields become missing, every other field is kept verbatim as a string.
// Short records are padded with missing values and long records are truncated.
func FromRecords(header []string, records [][]string) *Table {
	t := New(header)
	t.rows = make([][]Value, 0, len(records))
	for _, rec := range records {
		row := make([]Value, len(header))
		for i := range row {
			if i < len(rec) && rec[i] != "" {
				row[i] = NewString(rec[i])
			}
		}
		t.rows = append(t.rows, row)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.columns) }

// ColumnIndex returns the position of a column or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Column returns a copy of the values of one column.
func (t *Table) Column(name string) ([]Value, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	values := make([]Value, len(t.rows))
	for r, row := range t.rows {
		values[r] = row[idx]
	}
	return values, nil
}

// SetColumn replaces the values of one column.
func (t *Table) SetColumn(name string, values []Value) error {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}
	if len(values) != len(t.rows) {
		return fmt.Errorf("%w: column %s has %d values, table has %d rows",
			ErrLengthMismatch, name, len(values), len(t.rows))
	}
	for r, row := range t.rows {
		row[idx] = values[r]
	}
	return nil
}

// Row returns a copy of the row at index i.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	copy(row, t.rows[i])
	return row
}

// AppendRow adds a row at the end of the table.
func (t *Table) AppendRow(row []Value) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("%w: row has %d values, table has %d columns",
			ErrLengthMismatch, len(row), len(t.columns))
	}
	r := make([]Value, len(row))
	copy(r, row)
	t.rows = append(t.rows, r)
	return nil
}

// Rename replaces all column names at once.
func (t *Table) Rename(names []string) error {
	if len(names) != len(t.columns) {
		return fmt.Errorf("%w: %d names for %d columns", ErrLengthMismatch, len(names), len(t.columns))
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, n)
		}
		seen[n] = struct{}{}
	}
	copy(t.columns, names)
	return nil
}

// Select returns a new table with the named columns in the given order.
func (t *Table) Select(columns []string) (*Table, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = t.ColumnIndex(c)
		if idx[i] < 0 {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, c)
		}
	}
	out := New(columns)
	out.rows = make([][]Value, len(t.rows))
	for r, row := range t.rows {
		nr := make([]Value, len(idx))
		for i, src := range idx {
			nr[i] = row[src]
		}
		out.rows[r] = nr
	}
	return out, nil
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(row []Value) bool) *Table {
	out := New(t.columns)
	for _, row := range t.rows {
		if keep(row) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New(t.columns)
	out.rows = make([][]Value, len(t.rows))
	for r, row := range t.rows {
		nr := make([]Value, len(row))
		copy(nr, row)
		out.rows[r] = nr
	}
	return out
}

// Records renders every row as text, missing values as "".
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.rows))
	for r, row := range t.rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = v.Text()
		}
		out[r] = rec
	}
	return out
}

// MissingCounts returns the number of missing values per column, in column order.
func (t *Table) MissingCounts() []int {
	counts := make([]int, len(t.columns))
	for _, row := range t.rows {
		for i, v := range row {
			if v.IsMissing() {
				counts[i]++
			}
		}
	}
	return counts
}

// ColumnKind returns the kind shared by every non-missing value of a column.
// An all-missing column reports KindMissing, integers mixed with numbers
// report KindNumber and any other mix reports KindString.
func (t *Table) ColumnKind(name string) Kind {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return KindMissing
	}
	kind := KindMissing
	for _, row := range t.rows {
		k := row[idx].Kind()
		if k == KindMissing {
			continue
		}
		if kind == KindMissing {
			kind = k
			continue
		}
		switch {
		case k == kind:
		case isNumeric(k) && isNumeric(kind):
			kind = KindNumber
		default:
			return KindString
		}
	}
	return kind
}

func isNumeric(k Kind) bool {
	return k == KindInteger || k == KindNumber
}
