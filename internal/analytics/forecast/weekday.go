// Package forecast predicts the load of a target day from the history of the
// same weekday.
package forecast

import (
	"math"
	"time"

	"github.com/smartbackpack/loadreport/internal/aggregation"
	"github.com/smartbackpack/loadreport/internal/analytics"
	"github.com/smartbackpack/loadreport/internal/analytics/stats"
	"github.com/smartbackpack/loadreport/internal/models"
)

// Rejection reasons
const (
	ReasonNoHistory    = "no same-weekday history"
	ReasonThinSample   = "fewer than 2 same-weekday days"
	ReasonHighSkewness = "high skew, unreliable"
)

const (
	// MinSampleDays is the number of same-weekday days a forecast needs
	MinSampleDays = 2
	// MaxAbsSkewness is the largest |skewness| accepted as a confident forecast
	MaxAbsSkewness = 1.0
)

// Result is the outcome of a weekday forecast. A rejection is a normal
// outcome: Accepted is false, Reason says why and PartialSummary carries the
// statistics that were computed before the gate.
type Result struct {
	Accepted        bool           `json:"accepted"`
	Reason          string         `json:"reason,omitempty"`
	PredictedWeight float64        `json:"predicted_weight"`
	SampleSize      int            `json:"sample_size"`
	Summary         *stats.Summary `json:"summary,omitempty"`
	PartialSummary  *stats.Summary `json:"partial_summary,omitempty"`

	Target  string           `json:"target"`
	Weekday string           `json:"weekday"`
	Days    analytics.Series `json:"days"`
}

// WeekdayPredictor forecasts from same-weekday history evaluated in Location.
// It holds no state between calls.
type WeekdayPredictor struct {
	Location *time.Location
}

// NewWeekdayPredictor creates a predictor for loc. A nil loc means UTC.
func NewWeekdayPredictor(loc *time.Location) *WeekdayPredictor {
	if loc == nil {
		loc = time.UTC
	}
	return &WeekdayPredictor{Location: loc}
}

// Predict filters readings to the weekday of target, reduces them to one
// value per day and gates the prediction on sample size and skewness.
func (p *WeekdayPredictor) Predict(readings []models.Reading, target time.Time) *Result {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	target = target.In(loc)
	weekday := target.Weekday()

	result := &Result{
		Target:  target.Format(aggregation.DayKeyLayout),
		Weekday: weekday.String(),
		Days:    analytics.Series{},
	}

	sameDay := make([]models.Reading, 0, len(readings))
	for _, r := range readings {
		if r.Timestamp.IsZero() {
			continue
		}
		if r.Timestamp.In(loc).Weekday() == weekday {
			sameDay = append(sameDay, r)
		}
	}
	if len(sameDay) == 0 {
		result.Reason = ReasonNoHistory
		return result
	}

	days := aggregation.DailySeries(sameDay, loc)
	result.Days = days
	result.SampleSize = days.Len()
	summary := stats.Summarize(days.Values())

	if days.Len() < MinSampleDays {
		result.Reason = ReasonThinSample
		result.PartialSummary = summary
		return result
	}

	if !confident(summary) {
		result.Reason = ReasonHighSkewness
		result.PartialSummary = summary
		return result
	}

	result.Accepted = true
	result.PredictedWeight = summary.Mean
	result.Summary = summary
	return result
}

// confident applies the skewness gate. Skewness is already rounded to 2
// decimals, so a raw 1.004 passes and 1.005 does not.
func confident(summary *stats.Summary) bool {
	return summary != nil && math.Abs(summary.Skewness) <= MaxAbsSkewness
}
