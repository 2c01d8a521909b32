package transform

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tablenorm/internal/table"
)

// numeric returns the exact value of integer and number cells. Strings and
// dates are not numeric.
func numeric(v table.Value) (decimal.Decimal, bool) {
	switch v.Kind() {
	case table.KindInteger:
		i, _ := v.Int()
		return decimal.NewFromInt(i), true
	case table.KindNumber:
		f, _ := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(f), true
	}
	return decimal.Zero, false
}

// kindRank orders values of different kinds: numbers, dates, strings, then
// missing.
func kindRank(k table.Kind) int {
	switch k {
	case table.KindInteger, table.KindNumber:
		return 0
	case table.KindDate:
		return 1
	case table.KindString:
		return 2
	default:
		return 3
	}
}

// compareValues orders two non-missing values; it returns -1, 0 or 1.
func compareValues(a, b table.Value) int {
	ra, rb := kindRank(a.Kind()), kindRank(b.Kind())
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 0:
		da, _ := numeric(a)
		db, _ := numeric(b)
		return da.Cmp(db)
	case 1:
		ta, _ := a.Time()
		tb, _ := b.Time()
		return ta.Compare(tb)
	case 2:
		return strings.Compare(a.Text(), b.Text())
	}
	return 0
}

// InferTypes converts string columns whose non-missing values all read as
// one kind: whole numbers become integer, other numbers become number and
// YYYY-MM-DD text becomes date. Columns with any other text stay strings.
// Columns with no values are left alone.
func InferTypes(t *table.Table) *table.Table {
	out := t.Clone()
	for _, col := range out.Columns() {
		values, _ := out.Column(col)
		if converted, ok := inferColumn(values); ok {
			_ = out.SetColumn(col, converted)
		}
	}
	return out
}

func inferColumn(values []table.Value) ([]table.Value, bool) {
	parsers := []func(string) (table.Value, bool){parseInteger, parseNumber, parseDate}
	for _, parse := range parsers {
		converted := make([]table.Value, len(values))
		seen := false
		ok := true
		for i, v := range values {
			if v.IsMissing() {
				continue
			}
			s, isString := v.Str()
			if !isString {
				ok = false
				break
			}
			pv, good := parse(strings.TrimSpace(s))
			if !good {
				ok = false
				break
			}
			converted[i] = pv
			seen = true
		}
		if ok && seen {
			return converted, true
		}
	}
	return nil, false
}

func parseInteger(s string) (table.Value, bool) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return table.Value{}, false
	}
	return table.NewInteger(i), true
}

func parseNumber(s string) (table.Value, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return table.Value{}, false
	}
	return table.NewNumber(f), true
}

func parseDate(s string) (table.Value, bool) {
	d, err := time.Parse(table.DateLayout, s)
	if err != nil {
		return table.Value{}, false
	}
	return table.NewDate(d), true
}
