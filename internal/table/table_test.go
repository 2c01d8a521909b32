package table

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecords(t *testing.T) {
	tbl := FromRecords(
		[]string{"name", "age"},
		[][]string{
			{"Sam", "25"},
			{"Riya", ""},
			{"Arjun"},
			{"Extra", "30", "ignored"},
		},
	)

	require.Equal(t, 4, tbl.NumRows())
	assert.Equal(t, []string{"name", "age"}, tbl.Columns())

	ages, err := tbl.Column("age")
	require.NoError(t, err)
	assert.Equal(t, NewString("25"), ages[0])
	assert.True(t, ages[1].IsMissing(), "empty field should be missing")
	assert.True(t, ages[2].IsMissing(), "short record should be padded")
	assert.Equal(t, NewString("30"), ages[3])
}

func TestFromRecords_KeepsWhitespaceOnlyFields(t *testing.T) {
	tbl := FromRecords([]string{"age"}, [][]string{{" "}})

	v := tbl.Row(0)[0]
	s, ok := v.Str()
	require.True(t, ok)
	assert.Equal(t, " ", s)
}

func TestTable_SetColumn(t *testing.T) {
	tbl := FromRecords([]string{"a", "b"}, [][]string{{"1", "x"}, {"2", "y"}})

	err := tbl.SetColumn("a", []Value{NewInteger(1), NewInteger(2)})
	require.NoError(t, err)
	assert.Equal(t, KindInteger, tbl.ColumnKind("a"))

	err = tbl.SetColumn("a", []Value{NewInteger(1)})
	assert.True(t, errors.Is(err, ErrLengthMismatch))

	err = tbl.SetColumn("missing", nil)
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}

func TestTable_Rename(t *testing.T) {
	tbl := New([]string{"a", "b"})

	require.NoError(t, tbl.Rename([]string{"x", "y"}))
	assert.Equal(t, []string{"x", "y"}, tbl.Columns())

	err := tbl.Rename([]string{"x", "x"})
	assert.True(t, errors.Is(err, ErrDuplicateColumn))

	err = tbl.Rename([]string{"x"})
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestTable_Select(t *testing.T) {
	tbl := FromRecords([]string{"a", "b", "c"}, [][]string{{"1", "2", "3"}})

	out, err := tbl.Select([]string{"c", "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, out.Columns())
	assert.Equal(t, [][]string{{"3", "1"}}, out.Records())

	_, err = tbl.Select([]string{"zzz"})
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl := FromRecords([]string{"a"}, [][]string{{"1"}})
	clone := tbl.Clone()

	require.NoError(t, clone.SetColumn("a", []Value{NewInteger(9)}))

	assert.Equal(t, NewString("1"), tbl.Row(0)[0])
	assert.Equal(t, NewInteger(9), clone.Row(0)[0])
}

func TestTable_Records(t *testing.T) {
	tbl := New([]string{"name", "age", "score", "joined"})
	require.NoError(t, tbl.AppendRow([]Value{
		NewString("Sam"),
		NewInteger(25),
		NewNumber(7.5),
		NewDate(time.Date(2021, time.February, 10, 13, 30, 0, 0, time.Local)),
	}))
	require.NoError(t, tbl.AppendRow([]Value{NewMissing(), NewMissing(), NewMissing(), NewMissing()}))

	assert.Equal(t, [][]string{
		{"Sam", "25", "7.5", "2021-02-10"},
		{"", "", "", ""},
	}, tbl.Records())
	assert.Equal(t, []int{1, 1, 1, 1}, tbl.MissingCounts())
}

func TestTable_ColumnKind(t *testing.T) {
	tbl := New([]string{"mixed", "empty", "ints", "nums"})
	require.NoError(t, tbl.AppendRow([]Value{NewInteger(1), NewMissing(), NewInteger(1), NewInteger(2)}))
	require.NoError(t, tbl.AppendRow([]Value{NewString("x"), NewMissing(), NewMissing(), NewNumber(2.5)}))

	assert.Equal(t, KindString, tbl.ColumnKind("mixed"))
	assert.Equal(t, KindMissing, tbl.ColumnKind("empty"))
	assert.Equal(t, KindInteger, tbl.ColumnKind("ints"))
	assert.Equal(t, KindNumber, tbl.ColumnKind("nums"))
	assert.Equal(t, KindMissing, tbl.ColumnKind("nope"))
}

func TestTable_Filter(t *testing.T) {
	tbl := FromRecords([]string{"a"}, [][]string{{"1"}, {""}, {"3"}})

	out := tbl.Filter(func(row []Value) bool { return !row[0].IsMissing() })

	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, 3, tbl.NumRows())
}

func TestValue_Equal(t *testing.T) {
	d := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"missing equals missing", NewMissing(), NewMissing(), true},
		{"missing differs from empty string", NewMissing(), NewString(""), false},
		{"missing differs from zero", NewMissing(), NewInteger(0), false},
		{"same strings", NewString("x"), NewString("x"), true},
		{"integer and number differ", NewInteger(1), NewNumber(1), false},
		{"same dates", NewDate(d), NewDate(d.Add(5 * time.Hour)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "missing", KindMissing.String())
	assert.Equal(t, "integer", KindInteger.String())
	assert.Equal(t, "unknown(42)", Kind(42).String())
}
