package report

import "time"

// Clock supplies the current instant. Reports never read the wall clock
// directly.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns the wall clock
func SystemClock() Clock { return ClockFunc(time.Now) }

// FixedClock always returns t
func FixedClock(t time.Time) Clock { return ClockFunc(func() time.Time { return t }) }

// Locale controls how instants map onto calendar days and weeks
type Locale struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// DefaultLocale is UTC with weeks starting on Sunday
func DefaultLocale() Locale {
	return Locale{Location: time.UTC, WeekStart: time.Sunday}
}

// Loc returns the locale's location, UTC when unset
func (l Locale) Loc() *time.Location {
	if l.Location == nil {
		return time.UTC
	}
	return l.Location
}

// StartOfDay returns local midnight of the day containing t
func (l Locale) StartOfDay(t time.Time) time.Time {
	t = t.In(l.Loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, l.Loc())
}

// StartOfWeek returns local midnight of the first day of the week containing t
func (l Locale) StartOfWeek(t time.Time) time.Time {
	day := l.StartOfDay(t)
	offset := (int(day.Weekday()) - int(l.WeekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}
