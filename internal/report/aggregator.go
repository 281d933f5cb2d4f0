// Package report builds the daily, weekly, monthly, annual and custom range
// load reports of one backpack from a batch of readings.
//
// Every report follows the same pipeline: readings inside the period are
// reduced to a chronological Series, which feeds the statistics summary and
// the trend line. Chart holds the calendar slots of the period for plotting.
package report

import (
	"time"

	"github.com/smartbackpack/loadreport/internal/aggregation"
	"github.com/smartbackpack/loadreport/internal/analytics"
	"github.com/smartbackpack/loadreport/internal/analytics/stats"
	"github.com/smartbackpack/loadreport/internal/analytics/trend"
	"github.com/smartbackpack/loadreport/internal/models"
)

// ChartSlot is one calendar slot of a report chart. Slots without readings
// hold 0.
type ChartSlot struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Report is the result of one aggregation run
type Report struct {
	Kind        Kind             `json:"kind"`
	Start       string           `json:"start"`
	End         string           `json:"end"`
	Series      analytics.Series `json:"series"`
	Chart       []ChartSlot      `json:"chart"`
	Summary     *stats.Summary   `json:"summary"`
	Trend       *trend.Line      `json:"trend"`
	Indicators  Indicators       `json:"indicators"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Aggregator builds reports. It is safe for concurrent use.
type Aggregator struct {
	clock  Clock
	locale Locale
}

// NewAggregator creates an aggregator. A nil clock means the wall clock.
func NewAggregator(clock Clock, locale Locale) *Aggregator {
	if clock == nil {
		clock = SystemClock()
	}
	if locale.Location == nil {
		locale.Location = time.UTC
	}
	return &Aggregator{clock: clock, locale: locale}
}

// Locale returns the locale reports are computed in
func (a *Aggregator) Locale() Locale {
	return a.locale
}

// Now returns the clock's instant in the locale
func (a *Aggregator) Now() time.Time {
	return a.clock.Now().In(a.locale.Loc())
}

// Daily reports the day containing date, bucketed by minute
func (a *Aggregator) Daily(readings []models.Reading, date time.Time, opts Options) *Report {
	return a.Build(a.locale.Day(date), readings, opts)
}

// Weekly reports the week containing date, one value per day
func (a *Aggregator) Weekly(readings []models.Reading, date time.Time, opts Options) *Report {
	return a.Build(a.locale.Week(date), readings, opts)
}

// Range reports the days first through last inclusive, one value per day
func (a *Aggregator) Range(readings []models.Reading, first, last time.Time, opts Options) *Report {
	return a.Build(a.locale.Range(first, last), readings, opts)
}

// Monthly reports a calendar month, one value per day
func (a *Aggregator) Monthly(readings []models.Reading, year int, month time.Month, opts Options) *Report {
	return a.Build(a.locale.Month(year, month), readings, opts)
}

// Annual reports a calendar year, one value per month
func (a *Aggregator) Annual(readings []models.Reading, year int, opts Options) *Report {
	return a.Build(a.locale.Year(year), readings, opts)
}

// Build runs the pipeline for p. Readings outside the period are ignored.
// An empty period yields an all-zero chart with nil summary and trend.
func (a *Aggregator) Build(p Period, readings []models.Reading, opts Options) *Report {
	loc := a.locale.Loc()
	inPeriod := make([]models.Reading, 0, len(readings))
	for _, r := range readings {
		if !r.Timestamp.IsZero() && p.Contains(r.Timestamp) {
			inPeriod = append(inPeriod, r)
		}
	}

	series := a.series(p.Kind, inPeriod)
	values := series.Values()

	return &Report{
		Kind:        p.Kind,
		Start:       p.Start.Format(aggregation.DayKeyLayout),
		End:         p.LastDay().Format(aggregation.DayKeyLayout),
		Series:      series,
		Chart:       a.chart(p, series),
		Summary:     stats.Summarize(values),
		Trend:       trend.Fit(values),
		Indicators:  ComputeIndicators(inPeriod, loc, opts),
		GeneratedAt: a.Now(),
	}
}

func (a *Aggregator) series(kind Kind, readings []models.Reading) analytics.Series {
	loc := a.locale.Loc()
	switch kind {
	case KindDaily:
		return aggregation.MinuteSeries(readings, loc)
	case KindAnnual:
		return aggregation.MonthlySeries(readings, loc)
	default:
		return aggregation.DailySeries(readings, loc)
	}
}

// chart lays the series onto the calendar slots of p
func (a *Aggregator) chart(p Period, s analytics.Series) []ChartSlot {
	byKey := make(map[string]float64, len(s))
	for _, pt := range s {
		byKey[pt.Key] = pt.Value
	}

	switch p.Kind {
	case KindDaily:
		slots := make([]ChartSlot, len(s))
		for i, pt := range s {
			slots[i] = ChartSlot{Key: pt.Key, Label: pt.Time.Format("15:04"), Value: analytics.Round2(pt.Value)}
		}
		return slots

	case KindAnnual:
		slots := make([]ChartSlot, 0, 12)
		for m := p.Start; m.Before(p.End); m = m.AddDate(0, 1, 0) {
			key := m.Format(aggregation.MonthKeyLayout)
			slots = append(slots, ChartSlot{Key: key, Label: m.Format("Jan"), Value: byKey[key]})
		}
		return slots

	default:
		label := "02/01"
		switch p.Kind {
		case KindWeekly:
			label = "Mon"
		case KindMonthly:
			label = "02"
		}
		slots := make([]ChartSlot, 0, p.Days())
		for d := p.Start; d.Before(p.End); d = d.AddDate(0, 0, 1) {
			key := d.Format(aggregation.DayKeyLayout)
			slots = append(slots, ChartSlot{Key: key, Label: d.Format(label), Value: byKey[key]})
		}
		return slots
	}
}
