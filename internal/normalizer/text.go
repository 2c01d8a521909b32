package normalizer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"tablenorm/internal/table"
)

// CleanText normalizes free-text values: NFKC folding, whitespace runs
// collapsed to one space, leading and trailing whitespace removed, then the
// case style applied. Values that end up empty become missing. Non-string
// values are cleaned through their text form.
//
// CleanText is pure and idempotent.
func CleanText(values []table.Value, style CaseStyle) []table.Value {
	caser := newCaser(style)
	out := make([]table.Value, len(values))
	for i, v := range values {
		if v.IsMissing() {
			continue
		}
		s := cleanString(v.Text(), caser)
		if s == "" {
			continue
		}
		out[i] = table.NewString(s)
	}
	return out
}

// TrimText trims a single value and turns empty results into missing. It does
// not touch internal whitespace or case.
func TrimText(v table.Value) table.Value {
	s, ok := v.Str()
	if !ok {
		return v
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return table.NewMissing()
	}
	return table.NewString(s)
}

func cleanString(s string, caser *cases.Caser) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	if caser != nil {
		s = norm.NFKC.String(caser.String(s))
	}
	return s
}

// newCaser returns nil for CaseNone. A Caser is stateful, so each call of
// CleanText gets its own.
func newCaser(style CaseStyle) *cases.Caser {
	var c cases.Caser
	switch style {
	case CaseLower:
		c = cases.Lower(language.Und)
	case CaseUpper:
		c = cases.Upper(language.Und)
	case CaseNone:
		return nil
	default:
		c = cases.Title(language.Und)
	}
	return &c
}
