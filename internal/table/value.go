package table

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar-date format used whenever a date is rendered as text.
const DateLayout = "2006-01-02"

// Kind represents the type of data held by a Value.
type Kind int

const (
	// KindMissing marks an absent value. It is distinct from zero and from "".
	KindMissing Kind = iota
	// KindString represents text data.
	KindString
	// KindInteger represents whole numbers (int64).
	KindInteger
	// KindNumber represents floating-point numbers (float64).
	KindNumber
	// KindDate represents a calendar date without time of day.
	KindDate
)

// String returns the string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Value is a single typed cell.
// The zero Value is missing.
type Value struct {
	kind Kind
	str  string
	i    int64
	f    float64
	t    time.Time
}

// NewMissing returns the missing marker.
func NewMissing() Value {
	return Value{}
}

// NewString wraps a text value. The empty string is a valid, non-missing value.
func NewString(s string) Value {
	return Value{kind: KindString, str: s}
}

// NewInteger wraps a whole number.
func NewInteger(i int64) Value {
	return Value{kind: KindInteger, i: i}
}

// NewNumber wraps a floating-point number.
func NewNumber(f float64) Value {
	return Value{kind: KindNumber, f: f}
}

// NewDate wraps a calendar date. Time of day and location are discarded.
func NewDate(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Kind reports the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether v is the missing marker.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Str returns the text of a string value.
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Int returns the number held by an integer value.
func (v Value) Int() (int64, bool) {
	return v.i, v.kind == KindInteger
}

// Float returns the numeric content of integer and number values.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInteger:
		return float64(v.i), true
	case KindNumber:
		return v.f, true
	default:
		return 0, false
	}
}

// Time returns the date held by a date value.
func (v Value) Time() (time.Time, bool) {
	return v.t, v.kind == KindDate
}

// Text renders the value for output. Missing values render as "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindNumber:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindDate:
		return v.t.Format(DateLayout)
	default:
		return ""
	}
}

// String implements fmt.Stringer. Missing values print as "<missing>".
func (v Value) String() string {
	if v.kind == KindMissing {
		return "<missing>"
	}
	return v.Text()
}

// Equal reports whether two values have the same kind and content.
// Two missing values are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindInteger:
		return v.i == o.i
	case KindNumber:
		return v.f == o.f
	case KindDate:
		return v.t.Equal(o.t)
	default:
		return true
	}
}
