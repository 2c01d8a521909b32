package transform

import (
	"fmt"
	"sort"

	"tablenorm/internal/table"
)

// Top returns the n rows with the largest numeric value in column, largest
// first. Ties keep their original order. Rows without a numeric value are
// never selected, so fewer than n rows may come back.
func Top(t *table.Table, column string, n int) (*table.Table, error) {
	if n < 1 {
		return nil, fmt.Errorf("top %d: %w", n, ErrInvalidCount)
	}
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("top by %s: %w", column, table.ErrColumnNotFound)
	}

	var rows [][]table.Value
	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		if _, ok := numeric(row[idx]); ok {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return compareValues(rows[i][idx], rows[j][idx]) > 0
	})
	if len(rows) > n {
		rows = rows[:n]
	}
	return fromRows(t.Columns(), rows), nil
}
