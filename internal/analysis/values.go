package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	missingTokens = map[string]struct{}{"": {}, "null": {}, "n/a": {}, "na": {}, "-": {}}
	trueTokens    = map[string]struct{}{"true": {}, "yes": {}, "1": {}}
	falseTokens   = map[string]struct{}{"false": {}, "no": {}, "0": {}}

	numericShape = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

	// Year first, every other component optional: 2025, 2025-01, 20250103,
	// 2025/01/03 10:30:00.250 and so on.
	isoFlexible = regexp.MustCompile(`^(\d{4})[-/]?(\d{1,2})?[-/]?(\d{0,2})[Tt\s]*(\d{1,2})?:?(\d{1,2})?:?(\d{1,2})?[.:]?(\d+)?$`)

	zonedLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04Z07:00"}

	// Unpadded day and month as written by spreadsheet exports: 1/3/2025,
	// 2025/1/3, 3.1.2025. Slashes with the year last read month first and
	// fall back to day first.
	unpaddedLayouts = []string{"1/2/2006", "2/1/2006", "2006/1/2", "2.1.2006"}

	// Strict fallbacks, tried in order after the flexible parse fails.
	dateLayouts = []string{
		"2006-01-02",
		"2006/01/02",
		"02.01.2006",
		"01/02/2006",
		"02/01/2006",
		"2006-01-02 15:04:05",
	}
)

// IsMissing reports whether a cell is one of the missing-value tokens
// ("", null, n/a, na, -), compared trimmed and case-insensitively.
func IsMissing(v string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// ParseBool classifies a cell against the true/false token sets. ok is false
// when the cell is neither.
func ParseBool(v string) (value bool, ok bool) {
	s := strings.ToLower(strings.TrimSpace(v))
	if _, hit := trueTokens[s]; hit {
		return true, true
	}
	if _, hit := falseTokens[s]; hit {
		return false, true
	}
	return false, false
}

// ParseNumber parses locale-formatted numbers. When both ',' and '.' appear,
// the rightmost one is the decimal separator and the other is a thousands
// separator. A lone ',' is a decimal separator. Anything that does not end up
// as plain -?digits(.digits) is rejected.
func ParseNumber(v string) (float64, bool) {
	raw := strings.TrimSpace(v)
	if raw == "" {
		return 0, false
	}
	hasComma := strings.Contains(raw, ",")
	hasDot := strings.Contains(raw, ".")

	var normalized string
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(raw, ".") > strings.LastIndex(raw, ",") {
			normalized = strings.ReplaceAll(raw, ",", "")
		} else {
			normalized = strings.ReplaceAll(strings.ReplaceAll(raw, ".", ""), ",", ".")
		}
	case hasComma:
		normalized = strings.ReplaceAll(raw, ",", ".")
	default:
		normalized = raw
	}
	if !numericShape.MatchString(normalized) {
		return 0, false
	}
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseDate tries the flexible ISO-style parse first, then the unpadded
// layouts and finally the strict layouts in order. Times without a zone are
// read as UTC.
func ParseDate(v string) (time.Time, bool) {
	raw := strings.TrimSpace(v)
	if raw == "" {
		return time.Time{}, false
	}
	if t, ok := parseISOFlexible(raw); ok {
		return t, true
	}
	for _, l := range zonedLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, true
		}
	}
	for _, l := range unpaddedLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, true
		}
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseISOFlexible(raw string) (time.Time, bool) {
	m := isoFlexible.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	num := func(s string, def int) int {
		if s == "" {
			return def
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return -1
		}
		return n
	}
	year := num(m[1], 0)
	month := num(m[2], 1)
	day := num(m[3], 1)
	hour := num(m[4], 0)
	minute := num(m[5], 0)
	sec := num(m[6], 0)
	ms := 0
	if frac := m[7]; frac != "" {
		if len(frac) > 3 {
			frac = frac[:3]
		}
		for len(frac) < 3 {
			frac += "0"
		}
		ms = num(frac, 0)
	}
	if month < 1 || month > 12 || hour < 0 || hour > 23 || minute < 0 || minute > 59 || sec < 0 || sec > 59 {
		return time.Time{}, false
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, sec, ms*int(time.Millisecond), time.UTC), true
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// BeforeDay reports whether a falls on an earlier calendar day than b.
func BeforeDay(a, b time.Time) bool { return dayKey(a) < dayKey(b) }

// AfterDay reports whether a falls on a later calendar day than b.
func AfterDay(a, b time.Time) bool { return dayKey(a) > dayKey(b) }
