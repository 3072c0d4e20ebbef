// Package normalize converts the raw textual tokens found in vendor export
// files into typed values. All functions are pure and total: malformed input
// yields a zero value, never an error or a panic. Callers decide whether a
// zero result is worth a warning.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	memoryRe    = regexp.MustCompile(`(?i)^\s*([\d,]+(?:\.\d+)?)\s*(KB|MB|GB)\s*$`)
	limitRe     = regexp.MustCompile(`^\s*([\d,]+)\s*\(Limit:\s*([\d,]+|none)\)\s*$`)
	peakRe      = regexp.MustCompile(`^\s*([\d,]+)\s*\(Peak:?\s*([\d,]+)\)\s*$`)
	percentRe   = regexp.MustCompile(`^\s*([\d,]+(?:\.\d+)?)\s*%\s*$`)
	timestampRe = regexp.MustCompile(`^\s*(\d{1,2})-([A-Za-z]{3})-(\d{2})\s+(\d{1,2}):(\d{2})\s*(AM|PM)(?:\s+[A-Z]{2,5})?\s*$`)
)

// Composite is the result of parsing a "value (Limit: N)" or
// "value (Peak: N)" string. Limit is nil when the export says "Limit: none".
type Composite struct {
	Value float64
	Limit *float64
	Peak  float64
	// HasLimit distinguishes "Limit: none" (true, nil Limit) from a string
	// that carried no limit clause at all.
	HasLimit bool
	HasPeak  bool
}

// ParseMemory parses "<number> <unit>" with unit KB, MB, or GB and returns
// the size in MB. Unmatched input returns 0.
func ParseMemory(s string) float64 {
	m := memoryRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(stripSeparators(m[1]), 64)
	if err != nil {
		return 0
	}
	switch strings.ToUpper(m[2]) {
	case "KB":
		return n / 1024
	case "GB":
		return n * 1024
	}
	return n
}

// ParseComposite parses "value (Limit: N|none)" and "value (Peak: N)"
// strings, stripping thousands separators. A plain numeric string yields a
// bare value; anything else yields the zero Composite.
func ParseComposite(s string) Composite {
	if m := limitRe.FindStringSubmatch(s); m != nil {
		c := Composite{Value: parseNumber(m[1]), HasLimit: true}
		if !strings.EqualFold(m[2], "none") {
			limit := parseNumber(m[2])
			c.Limit = &limit
		}
		return c
	}
	if m := peakRe.FindStringSubmatch(s); m != nil {
		return Composite{Value: parseNumber(m[1]), Peak: parseNumber(m[2]), HasPeak: true}
	}
	if n, err := strconv.ParseFloat(stripSeparators(strings.TrimSpace(s)), 64); err == nil {
		return Composite{Value: n}
	}
	return Composite{}
}

// ParseStatusSet splits a status set like "{down,alarm,unackedAlarm}",
// its quoted variant, or a bare token into lower-cased tokens. Empty or
// unparseable input returns nil.
func ParseStatusSet(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(strings.Trim(p, "{}")))
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// ParseVendorTimestamp parses the vendor timestamp format
// "19-Aug-25 10:11 PM EDT". The two-digit year is taken as 20YY and the
// timezone abbreviation is dropped, not converted; the result is in UTC.
// Returns false when the string does not match.
func ParseVendorTimestamp(s string) (time.Time, bool) {
	m := timestampRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := monthByAbbrev(m[2])
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	if day < 1 || day > 31 || hour > 12 || minute > 59 {
		return time.Time{}, false
	}
	if m[6] == "PM" && hour != 12 {
		hour += 12
	}
	if m[6] == "AM" && hour == 12 {
		hour = 0
	}
	return time.Date(2000+year, month, day, hour, minute, 0, 0, time.UTC), true
}

// ParsePercent parses "45%" or a bare numeric string. Returns false when
// neither form matches.
func ParsePercent(s string) (float64, bool) {
	if m := percentRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(stripSeparators(m[1]), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// IsPercent reports whether the string looks like a percentage value.
func IsPercent(s string) bool {
	return percentRe.MatchString(s)
}

// IsMemory reports whether the string looks like a memory size with unit.
func IsMemory(s string) bool {
	return memoryRe.MatchString(s)
}

// Percentage computes round(current/limit*100), or 0 when the limit is not
// positive.
func Percentage(current, limit float64) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Round(current / limit * 100))
}

// CapacityPercentage is Percentage for a nilable limit.
func CapacityPercentage(current float64, limit *float64) int {
	if limit == nil {
		return 0
	}
	return Percentage(current, *limit)
}

// parseNumber parses an integer-or-float string with thousands separators,
// returning 0 on failure.
func parseNumber(s string) float64 {
	n, err := strconv.ParseFloat(stripSeparators(strings.TrimSpace(s)), 64)
	if err != nil {
		return 0
	}
	return n
}

func stripSeparators(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

func monthByAbbrev(abbrev string) (time.Month, bool) {
	switch strings.ToLower(abbrev) {
	case "jan":
		return time.January, true
	case "feb":
		return time.February, true
	case "mar":
		return time.March, true
	case "apr":
		return time.April, true
	case "may":
		return time.May, true
	case "jun":
		return time.June, true
	case "jul":
		return time.July, true
	case "aug":
		return time.August, true
	case "sep":
		return time.September, true
	case "oct":
		return time.October, true
	case "nov":
		return time.November, true
	case "dec":
		return time.December, true
	}
	return 0, false
}
