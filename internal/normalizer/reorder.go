package normalizer

import (
	"tablenorm/internal/table"
)

// ReorderColumns moves the preferred columns that exist in t to the front, in
// preferred order, followed by the remaining columns in their original order.
func ReorderColumns(t *table.Table, preferred []string) *table.Table {
	order := make([]string, 0, t.NumColumns())
	placed := make(map[string]struct{}, t.NumColumns())
	for _, c := range preferred {
		if _, done := placed[c]; done || !t.HasColumn(c) {
			continue
		}
		order = append(order, c)
		placed[c] = struct{}{}
	}
	for _, c := range t.Columns() {
		if _, done := placed[c]; !done {
			order = append(order, c)
		}
	}
	// every name in order comes from t
	out, _ := t.Select(order)
	return out
}

// TrimStrings trims every string value in t and turns empty strings into
// missing values.
func TrimStrings(t *table.Table) *table.Table {
	out := t.Clone()
	for _, col := range out.Columns() {
		values, _ := out.Column(col)
		for i, v := range values {
			values[i] = TrimText(v)
		}
		_ = out.SetColumn(col, values)
	}
	return out
}
