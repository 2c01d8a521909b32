package normalizer

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"tablenorm/internal/table"
)

var (
	yearFirstDate = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})$`)
	yearLastDate  = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})$`)
)

// ParseDate turns values into calendar dates. A leading four-digit year is
// always read year-month-day; otherwise the two leading parts are read in the
// given order (day before month for DayFirst). Anything else, including
// impossible dates such as 31-02-2021, becomes missing. There is no fallback
// to the other convention.
func ParseDate(values []table.Value, order DateOrder) []table.Value {
	out, _ := parseDates(values, order)
	return out
}

func parseDates(values []table.Value, order DateOrder) ([]table.Value, int) {
	unparsed := 0
	out := make([]table.Value, len(values))
	for i, v := range values {
		switch v.Kind() {
		case table.KindMissing:
			continue
		case table.KindDate:
			out[i] = v
			continue
		}
		if isBlank(v) {
			continue
		}
		t, ok := parseDateString(strings.TrimSpace(v.Text()), order)
		if !ok {
			unparsed++
			continue
		}
		out[i] = table.NewDate(t)
	}
	return out, unparsed
}

func parseDateString(s string, order DateOrder) (time.Time, bool) {
	var y, m, d int
	if p := yearFirstDate.FindStringSubmatch(s); p != nil {
		y, m, d = atoi(p[1]), atoi(p[2]), atoi(p[3])
	} else if p := yearLastDate.FindStringSubmatch(s); p != nil {
		y = atoi(p[3])
		if order == MonthFirst {
			m, d = atoi(p[1]), atoi(p[2])
		} else {
			d, m = atoi(p[1]), atoi(p[2])
		}
	} else {
		return time.Time{}, false
	}

	if m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 31 -> Mar 3); reject those
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

// atoi is only called on regexp-validated digit runs.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
