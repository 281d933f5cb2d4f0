package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are tried in order. Layouts without an offset are read
// in the caller's location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// ParseTimestamp parses a reading timestamp: RFC 3339, a local date-time
// ("2024-03-10 08:15:00", "10/03/2024 08:15") or unix epoch seconds or
// milliseconds as a decimal string.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.UTC
	}

	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FromEpoch(epoch), nil
	}

	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// FromEpoch reads values above 1e11 as milliseconds, smaller ones as seconds
func FromEpoch(v int64) time.Time {
	if v > 1e11 || v < -1e11 {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

// ParseDate parses a calendar day (YYYY-MM-DD) at midnight in loc. A nil loc
// means UTC.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseMonth parses YYYY-MM
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// ParseYear parses a four digit year
func ParseYear(s string) (int, error) {
	t, err := time.Parse(YearLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid year %q, expected YYYY", s)
	}
	return t.Year(), nil
}
