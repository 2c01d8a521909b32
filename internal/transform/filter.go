package transform

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"tablenorm/internal/table"
)

// maxExponent bounds threshold exponents to the float64 range.
const maxExponent = 400

// Op is a comparison operator used in filter predicates.
type Op string

const (
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpEqual        Op = "=="
	OpNotEqual     Op = "!="
)

// operators is ordered so two-character operators match before their prefixes.
var operators = []Op{OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual, OpGreater, OpLess}

// Predicate compares a numeric column to a threshold.
type Predicate struct {
	Column    string
	Op        Op
	Threshold decimal.Decimal
}

// ParsePredicate reads expressions such as "salary>45000" or "age <= 30".
func ParsePredicate(expr string) (Predicate, error) {
	for _, op := range operators {
		idx := strings.Index(expr, string(op))
		if idx < 0 {
			continue
		}
		column := strings.TrimSpace(expr[:idx])
		raw := strings.TrimSpace(expr[idx+len(op):])
		if column == "" || raw == "" {
			return Predicate{}, fmt.Errorf("%w: %q", ErrInvalidPredicate, expr)
		}
		threshold, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil || threshold.Exponent() > maxExponent || threshold.Exponent() < -maxExponent ||
			math.IsInf(threshold.InexactFloat64(), 0) {
			return Predicate{}, fmt.Errorf("%w: threshold %q is not a number", ErrInvalidPredicate, raw)
		}
		return Predicate{Column: column, Op: op, Threshold: threshold}, nil
	}
	return Predicate{}, fmt.Errorf("%w: %q has no comparison operator", ErrInvalidPredicate, expr)
}

// String renders the predicate in the form ParsePredicate accepts.
func (p Predicate) String() string {
	return p.Column + string(p.Op) + p.Threshold.String()
}

// Match reports whether v satisfies the predicate. Missing and non-numeric
// values never match.
func (p Predicate) Match(v table.Value) bool {
	d, ok := numeric(v)
	if !ok {
		return false
	}
	c := d.Cmp(p.Threshold)
	switch p.Op {
	case OpGreater:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	case OpLess:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	}
	return false
}

// Filter keeps the rows whose value in p.Column matches p, in their original
// order.
func Filter(t *table.Table, p Predicate) (*table.Table, error) {
	idx := t.ColumnIndex(p.Column)
	if idx < 0 {
		return nil, fmt.Errorf("filter on %s: %w", p.Column, table.ErrColumnNotFound)
	}
	return t.Filter(func(row []table.Value) bool {
		return p.Match(row[idx])
	}), nil
}
