package report

import (
	"time"

	"github.com/smartbackpack/loadreport/internal/aggregation"
)

// Kind names a report shape
type Kind string

const (
	KindDaily   Kind = "daily"
	KindWeekly  Kind = "weekly"
	KindPeriod  Kind = "period"
	KindMonthly Kind = "monthly"
	KindAnnual  Kind = "annual"
)

// Period is a half-open calendar range [Start, End) in a locale
type Period struct {
	Kind  Kind
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the period
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// LastDay returns the start of the last calendar day covered
func (p Period) LastDay() time.Time {
	return p.End.AddDate(0, 0, -1)
}

// Days returns the number of calendar days covered
func (p Period) Days() int {
	n := 0
	for d := p.Start; d.Before(p.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// String renders the inclusive day range
func (p Period) String() string {
	return p.Start.Format(aggregation.DayKeyLayout) + ".." + p.LastDay().Format(aggregation.DayKeyLayout)
}

// Day is the calendar day containing date
func (l Locale) Day(date time.Time) Period {
	start := l.StartOfDay(date)
	return Period{Kind: KindDaily, Start: start, End: start.AddDate(0, 0, 1)}
}

// Week is the 7-day week containing date, starting at l.WeekStart
func (l Locale) Week(date time.Time) Period {
	start := l.StartOfWeek(date)
	return Period{Kind: KindWeekly, Start: start, End: start.AddDate(0, 0, 7)}
}

// Range covers the days first through last, both inclusive. An inverted range
// is empty.
func (l Locale) Range(first, last time.Time) Period {
	start := l.StartOfDay(first)
	end := l.StartOfDay(last).AddDate(0, 0, 1)
	if end.Before(start) {
		end = start
	}
	return Period{Kind: KindPeriod, Start: start, End: end}
}

// Month is the calendar month of year
func (l Locale) Month(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, l.Loc())
	return Period{Kind: KindMonthly, Start: start, End: start.AddDate(0, 1, 0)}
}

// Year is the calendar year
func (l Locale) Year(year int) Period {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, l.Loc())
	return Period{Kind: KindAnnual, Start: start, End: start.AddDate(1, 0, 0)}
}
