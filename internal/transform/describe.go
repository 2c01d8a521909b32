package transform

import (
	"math"

	"github.com/shopspring/decimal"

	"tablenorm/internal/table"
)

// DescribeStats lists the statistics produced by Describe, in row order.
var DescribeStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe summarizes every integer and number column of t. The result has a
// "stat" column naming each statistic followed by one column per numeric
// input column. std is the sample standard deviation and is missing for fewer
// than two values; quartiles use linear interpolation. A column without
// numeric values reports a count of zero and missing statistics.
func Describe(t *table.Table) *table.Table {
	var columns []string
	for _, c := range t.Columns() {
		switch t.ColumnKind(c) {
		case table.KindInteger, table.KindNumber:
			columns = append(columns, c)
		}
	}

	stats := make([][]table.Value, len(columns))
	for i, c := range columns {
		values, _ := t.Column(c)
		stats[i] = describeColumn(values)
	}

	out := table.New(append([]string{"stat"}, columns...))
	for r, name := range DescribeStats {
		row := make([]table.Value, 0, len(columns)+1)
		row = append(row, table.NewString(name))
		for i := range columns {
			row = append(row, stats[i][r])
		}
		_ = out.AppendRow(row)
	}
	return out
}

func describeColumn(values []table.Value) []table.Value {
	var nums []decimal.Decimal
	for _, v := range values {
		if d, ok := numeric(v); ok {
			nums = append(nums, d)
		}
	}
	out := make([]table.Value, len(DescribeStats))
	out[0] = table.NewInteger(int64(len(nums)))
	if len(nums) == 0 {
		return out
	}

	xs := sorted(nums)
	avg := mean(xs)
	number := func(d decimal.Decimal) table.Value { return table.NewNumber(d.InexactFloat64()) }

	out[1] = number(avg)
	if len(xs) > 1 {
		var ss decimal.Decimal
		for _, x := range xs {
			dev := x.Sub(avg)
			ss = ss.Add(dev.Mul(dev))
		}
		variance := ss.Div(decimal.NewFromInt(int64(len(xs) - 1)))
		out[2] = table.NewNumber(math.Sqrt(variance.InexactFloat64()))
	}
	out[3] = number(xs[0])
	out[4] = number(quantile(xs, 0.25))
	out[5] = number(quantile(xs, 0.5))
	out[6] = number(quantile(xs, 0.75))
	out[7] = number(xs[len(xs)-1])
	return out
}
