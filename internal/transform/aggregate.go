package transform

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"tablenorm/internal/table"
)

// Aggregation names a per-group reduction.
type Aggregation string

const (
	AggMean   Aggregation = "mean"
	AggSum    Aggregation = "sum"
	AggCount  Aggregation = "count"
	AggMin    Aggregation = "min"
	AggMax    Aggregation = "max"
	AggMedian Aggregation = "median"
)

// ParseAggregation validates an aggregation name.
func ParseAggregation(name string) (Aggregation, error) {
	switch agg := Aggregation(name); agg {
	case AggMean, AggSum, AggCount, AggMin, AggMax, AggMedian:
		return agg, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAggregation, name)
}

type group struct {
	key    table.Value
	values []table.Value
}

// GroupAggregate reduces the value column for each distinct key. The result
// has two columns, the key and "<value>_<agg>", with one row per key sorted
// ascending. Rows with a missing key are dropped. count counts non-missing
// values; the other aggregations use numeric values only and yield missing
// for a group without any.
func GroupAggregate(t *table.Table, key, value string, agg Aggregation) (*table.Table, error) {
	if _, err := ParseAggregation(string(agg)); err != nil {
		return nil, err
	}
	ki, vi := t.ColumnIndex(key), t.ColumnIndex(value)
	if ki < 0 {
		return nil, fmt.Errorf("group by %s: %w", key, table.ErrColumnNotFound)
	}
	if vi < 0 {
		return nil, fmt.Errorf("aggregate %s: %w", value, table.ErrColumnNotFound)
	}

	index := make(map[string]*group)
	var groups []*group
	for i := 0; i < t.NumRows(); i++ {
		row := t.Row(i)
		k := row[ki]
		if k.IsMissing() {
			continue
		}
		id := k.Kind().String() + "\x00" + k.Text()
		g, ok := index[id]
		if !ok {
			g = &group{key: k}
			index[id] = g
			groups = append(groups, g)
		}
		g.values = append(g.values, row[vi])
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return compareValues(groups[i].key, groups[j].key) < 0
	})

	out := table.New([]string{key, fmt.Sprintf("%s_%s", value, agg)})
	for _, g := range groups {
		_ = out.AppendRow([]table.Value{g.key, reduce(g.values, agg)})
	}
	return out, nil
}

func reduce(values []table.Value, agg Aggregation) table.Value {
	if agg == AggCount {
		n := 0
		for _, v := range values {
			if !v.IsMissing() {
				n++
			}
		}
		return table.NewInteger(int64(n))
	}

	var nums []decimal.Decimal
	allIntegers := true
	for _, v := range values {
		if d, ok := numeric(v); ok {
			nums = append(nums, d)
			allIntegers = allIntegers && v.Kind() == table.KindInteger
		}
	}
	if len(nums) == 0 {
		if agg == AggSum {
			return table.NewInteger(0)
		}
		return table.NewMissing()
	}

	var result decimal.Decimal
	keepKind := allIntegers
	switch agg {
	case AggSum:
		result = decimal.Sum(nums[0], nums[1:]...)
	case AggMin:
		result = decimal.Min(nums[0], nums[1:]...)
	case AggMax:
		result = decimal.Max(nums[0], nums[1:]...)
	case AggMean:
		result = mean(nums)
		keepKind = false
	case AggMedian:
		result = quantile(sorted(nums), 0.5)
		keepKind = false
	}
	if keepKind && result.IsInteger() {
		return table.NewInteger(result.IntPart())
	}
	return table.NewNumber(result.InexactFloat64())
}

func mean(xs []decimal.Decimal) decimal.Decimal {
	return decimal.Sum(xs[0], xs[1:]...).Div(decimal.NewFromInt(int64(len(xs))))
}

func sorted(xs []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(xs))
	copy(out, xs)
	sort.Slice(out, func(i, j int) bool { return out[i].LessThan(out[j]) })
	return out
}

// quantile interpolates linearly between the closest ranks of sorted xs.
func quantile(xs []decimal.Decimal, q float64) decimal.Decimal {
	pos := decimal.NewFromFloat(q).Mul(decimal.NewFromInt(int64(len(xs) - 1)))
	lo := pos.Floor()
	i := int(lo.IntPart())
	if i >= len(xs)-1 {
		return xs[len(xs)-1]
	}
	frac := pos.Sub(lo)
	return xs[i].Add(xs[i+1].Sub(xs[i]).Mul(frac))
}
