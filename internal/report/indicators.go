package report

import (
	"math"
	"time"

	"github.com/smartbackpack/loadreport/internal/aggregation"
	"github.com/smartbackpack/loadreport/internal/models"
)

// Defaults applied when the caller passes a zero or negative limit input
const (
	DefaultBodyWeightKg = 70.0
	DefaultMaxLoadPct   = 10.0
)

// Options carries the per-user inputs of the load limit
type Options struct {
	BodyWeightKg float64
	MaxLoadPct   float64
}

// normalized fills in the defaults
func (o Options) normalized() Options {
	if !(o.BodyWeightKg > 0) || math.IsInf(o.BodyWeightKg, 0) {
		o.BodyWeightKg = DefaultBodyWeightKg
	}
	if !(o.MaxLoadPct > 0) || math.IsInf(o.MaxLoadPct, 0) {
		o.MaxLoadPct = DefaultMaxLoadPct
	}
	return o
}

// MaxAllowedPerSide is the heaviest load one strap may carry: the allowed
// share of body weight split over two sides
func (o Options) MaxAllowedPerSide() float64 {
	o = o.normalized()
	return o.BodyWeightKg * o.MaxLoadPct / 100 / 2
}

// Extreme is a single notable reading
type Extreme struct {
	Weight    float64   `json:"weight"`
	Timestamp time.Time `json:"timestamp"`
}

// SideExtremes holds the heaviest and lightest reading of one side. Both are
// nil when the side has no readings.
type SideExtremes struct {
	Heaviest *Extreme `json:"heaviest"`
	Lightest *Extreme `json:"lightest"`
}

func (s *SideExtremes) observe(r models.Reading) {
	if s.Heaviest == nil || r.Weight > s.Heaviest.Weight {
		s.Heaviest = &Extreme{Weight: r.Weight, Timestamp: r.Timestamp}
	}
	if s.Lightest == nil || r.Weight < s.Lightest.Weight {
		s.Lightest = &Extreme{Weight: r.Weight, Timestamp: r.Timestamp}
	}
}

// Indicators summarizes the raw readings of a report period
type Indicators struct {
	TotalReadings    int          `json:"total_readings"`
	DaysWithReadings int          `json:"days_with_readings"`
	Left             SideExtremes `json:"left"`
	Right            SideExtremes `json:"right"`

	BodyWeightKg       float64 `json:"body_weight_kg"`
	MaxLoadPct         float64 `json:"max_load_pct"`
	MaxAllowedPerSide  float64 `json:"max_allowed_per_side"`
	ReadingsAboveLimit int     `json:"readings_above_limit"`
	AboveLimitPct      float64 `json:"above_limit_pct"`
}

// ComputeIndicators scans readings once. A SideBoth reading counts toward the
// extremes of each side. Every reading, whatever its side, is checked against
// the per-side limit.
func ComputeIndicators(readings []models.Reading, loc *time.Location, opts Options) Indicators {
	if loc == nil {
		loc = time.UTC
	}
	opts = opts.normalized()
	limit := opts.MaxAllowedPerSide()

	ind := Indicators{
		BodyWeightKg:      opts.BodyWeightKg,
		MaxLoadPct:        opts.MaxLoadPct,
		MaxAllowedPerSide: limit,
	}

	days := make(map[string]struct{})
	for _, r := range readings {
		if r.Timestamp.IsZero() || math.IsNaN(r.Weight) {
			continue
		}
		ind.TotalReadings++
		days[r.Timestamp.In(loc).Format(aggregation.DayKeyLayout)] = struct{}{}

		if r.Weight > limit {
			ind.ReadingsAboveLimit++
		}

		switch aggregation.Classify(r.SideLabel) {
		case models.SideLeft:
			ind.Left.observe(r)
		case models.SideRight:
			ind.Right.observe(r)
		case models.SideBoth:
			ind.Left.observe(r)
			ind.Right.observe(r)
		}
	}
	ind.DaysWithReadings = len(days)

	if ind.TotalReadings > 0 {
		pct := float64(ind.ReadingsAboveLimit) / float64(ind.TotalReadings) * 100
		ind.AboveLimitPct = math.Round(pct*10) / 10
	}
	return ind
}
