package aggregation

import "time"

// Granularity represents the time bucket size
type Granularity string

const (
	GranularityMinute Granularity = "1m"
	GranularityDay    Granularity = "1d"
	GranularityMonth  Granularity = "1M"
)

// Bucket key layouts. Keys of one granularity sort lexicographically in
// chronological order.
const (
	MinuteKeyLayout = "2006-01-02 15:04"
	DayKeyLayout    = "2006-01-02"
	MonthKeyLayout  = "2006-01"
)

// KeyLayout returns the time layout used to render bucket keys
func (g Granularity) KeyLayout() string {
	switch g {
	case GranularityDay:
		return DayKeyLayout
	case GranularityMonth:
		return MonthKeyLayout
	default:
		return MinuteKeyLayout
	}
}

// Truncate returns the start of the bucket containing t, in t's location
func (g Granularity) Truncate(t time.Time) time.Time {
	switch g {
	case GranularityDay:
		return TruncateToDay(t)
	case GranularityMonth:
		return TruncateToMonth(t)
	default:
		return TruncateToMinute(t)
	}
}

// KeyFunc maps a timestamp to its bucket key. ok is false for timestamps that
// belong to no bucket.
type KeyFunc func(t time.Time) (key string, ok bool)

// KeyFunc returns the bucket key function of this granularity, evaluated in loc.
// A nil loc means UTC. Zero timestamps are rejected.
func (g Granularity) KeyFunc(loc *time.Location) KeyFunc {
	if loc == nil {
		loc = time.UTC
	}
	layout := g.KeyLayout()
	return func(t time.Time) (string, bool) {
		if t.IsZero() {
			return "", false
		}
		return t.In(loc).Format(layout), true
	}
}

// TruncateToMinute drops seconds and below
func TruncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// TruncateToDay truncates time to local midnight
func TruncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// TruncateToMonth truncates time to the start of the month
func TruncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// TruncateToYear truncates time to the start of the year
func TruncateToYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}
