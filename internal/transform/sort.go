package transform

import (
	"fmt"
	"sort"

	"tablenorm/internal/table"
)

// SortBy returns the rows of t ordered by column. The sort is stable and
// missing values are placed last in both directions.
func SortBy(t *table.Table, column string, descending bool) (*table.Table, error) {
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("sort by %s: %w", column, table.ErrColumnNotFound)
	}

	rows := make([][]table.Value, t.NumRows())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][idx], rows[j][idx]
		if a.IsMissing() || b.IsMissing() {
			return !a.IsMissing() && b.IsMissing()
		}
		if descending {
			return compareValues(a, b) > 0
		}
		return compareValues(a, b) < 0
	})
	return fromRows(t.Columns(), rows), nil
}

func fromRows(columns []string, rows [][]table.Value) *table.Table {
	out := table.New(columns)
	for _, row := range rows {
		// rows come from a table with the same columns
		_ = out.AppendRow(row)
	}
	return out
}
