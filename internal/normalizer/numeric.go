package normalizer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"tablenorm/internal/table"
)

// maxExponent bounds the decimal exponent of parsed cells. Anything beyond it
// is outside float64 range, and arithmetic on such values rescales to huge
// big.Ints.
const maxExponent = 400

var (
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
	two      = decimal.NewFromInt(2)
)

// numericReport counts what a numeric coercion did to a column.
type numericReport struct {
	Parsed    int // values that parsed as numbers
	Unparsed  int // non-missing inputs that could not be parsed
	Filled    int // missing values replaced by the fill value
	FillValue decimal.Decimal
}

// CoerceNumeric parses every value as a number and returns whole numbers.
// Unparsable values become missing. With FillMean or FillMedian and at least
// one parsed value, the statistic over the parsed values replaces every
// missing value. FillConstant fills with constant unless it is not finite, or
// outside the int64 range for whole numbers. Every value, fill values
// included, is floored. When nothing parses and the strategy is mean or
// median the column comes back all missing.
func CoerceNumeric(values []table.Value, fill FillStrategy, constant float64) []table.Value {
	out, _ := coerceNumeric(values, fill, constant, true)
	return out
}

// CoerceNumber is CoerceNumeric without flooring: results are floating-point.
func CoerceNumber(values []table.Value, fill FillStrategy, constant float64) []table.Value {
	out, _ := coerceNumeric(values, fill, constant, false)
	return out
}

func coerceNumeric(values []table.Value, fill FillStrategy, constant float64, integer bool) ([]table.Value, numericReport) {
	var report numericReport

	parsed := make([]decimal.Decimal, len(values))
	ok := make([]bool, len(values))
	var present []decimal.Decimal
	for i, v := range values {
		d, good := parseDecimal(v)
		if !good {
			if !isBlank(v) {
				report.Unparsed++
			}
			continue
		}
		if integer && (d.GreaterThan(maxInt64) || d.LessThan(minInt64)) {
			report.Unparsed++
			continue
		}
		parsed[i], ok[i] = d, true
		present = append(present, d)
	}
	report.Parsed = len(present)

	var fillValue decimal.Decimal
	haveFill := false
	switch fill {
	case FillConstant:
		if ValidFillValue(constant, integer) == nil {
			fillValue, haveFill = decimal.NewFromFloat(constant), true
		}
	case FillMean:
		if len(present) > 0 {
			fillValue, haveFill = mean(present), true
		}
	case FillMedian:
		if len(present) > 0 {
			fillValue, haveFill = median(present), true
		}
	}
	if integer && haveFill {
		fillValue = fillValue.Floor()
	}
	report.FillValue = fillValue

	out := make([]table.Value, len(values))
	for i := range values {
		d := parsed[i]
		if !ok[i] {
			if !haveFill {
				continue
			}
			d = fillValue
			report.Filled++
		}
		if integer {
			out[i] = table.NewInteger(d.Floor().IntPart())
		} else {
			out[i] = table.NewNumber(d.InexactFloat64())
		}
	}
	return out, report
}

// parseDecimal reads integer and number values directly and parses strings
// after removing surrounding whitespace and "," thousands separators.
func parseDecimal(v table.Value) (decimal.Decimal, bool) {
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
	case table.KindString:
		s, _ := v.Str()
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
			return decimal.Zero, false
		}
		if math.IsInf(d.InexactFloat64(), 0) {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// isBlank reports whether v is missing or a string of only whitespace. Blank
// cells are missing values, not parse failures.
func isBlank(v table.Value) bool {
	if v.IsMissing() {
		return true
	}
	s, ok := v.Str()
	return ok && strings.TrimSpace(s) == ""
}

// ValidFillValue reports whether f can be used as a constant fill. Whole
// number columns also need f inside the int64 range.
func ValidFillValue(f float64, integer bool) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("fill value %v is not a finite number", f)
	}
	if integer && (f >= math.MaxInt64 || f < math.MinInt64) {
		return fmt.Errorf("fill value %v is outside the integer range", f)
	}
	return nil
}

func mean(xs []decimal.Decimal) decimal.Decimal {
	return decimal.Sum(xs[0], xs[1:]...).Div(decimal.NewFromInt(int64(len(xs))))
}

func median(xs []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(xs))
	copy(sorted, xs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(two)
}
