package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tablenorm/internal/table"
)

func TestReorderColumns(t *testing.T) {
	tests := []struct {
		name      string
		columns   []string
		preferred []string
		expected  []string
	}{
		{
			name:      "preferred first then original order",
			columns:   []string{"department", "city", "name", "age"},
			preferred: DefaultPreferredOrder(),
			expected:  []string{"name", "age", "department", "city"},
		},
		{
			name:      "absent preferred columns ignored",
			columns:   []string{"b", "a"},
			preferred: []string{"x", "a"},
			expected:  []string{"a", "b"},
		},
		{
			name:      "repeated preferred names placed once",
			columns:   []string{"b", "a"},
			preferred: []string{"a", "a"},
			expected:  []string{"a", "b"},
		},
		{
			name:      "no preferred order",
			columns:   []string{"c", "b", "a"},
			preferred: nil,
			expected:  []string{"c", "b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ReorderColumns(table.New(tt.columns), tt.preferred)
			assert.Equal(t, tt.expected, out.Columns())
		})
	}
}

func TestReorderColumns_MovesValues(t *testing.T) {
	in := table.FromRecords([]string{"age", "name"}, [][]string{{"25", "Sam"}})

	out := ReorderColumns(in, []string{"name"})

	assert.Equal(t, [][]string{{"Sam", "25"}}, out.Records())
}

func TestTrimStrings(t *testing.T) {
	in := table.FromRecords([]string{"city"}, [][]string{{" Pune "}, {"   "}, {""}})

	out := TrimStrings(in)

	assert.Equal(t, [][]string{{"Pune"}, {""}, {""}}, out.Records())
	assert.Equal(t, []int{2}, out.MissingCounts())
	// input untouched
	assert.Equal(t, []int{1}, in.MissingCounts())
}
