package aggregation

import (
	"sort"
	"time"

	"github.com/smartbackpack/loadreport/internal/analytics"
	"github.com/smartbackpack/loadreport/internal/models"
)

// MinuteSeries aggregates readings into minute buckets and returns the loads
// in chronological order. Values are not rounded.
func MinuteSeries(readings []models.Reading, loc *time.Location) analytics.Series {
	sorted := Sorted(Aggregate(readings, GranularityMinute, loc))
	series := make(analytics.Series, len(sorted))
	for i, bl := range sorted {
		series[i] = analytics.SeriesPoint{Key: bl.Key, Time: bl.Start, Value: bl.Load}
	}
	return series
}

// DailySeries reduces readings to one value per day: the mean of that day's
// minute bucket loads, rounded to 2 decimals.
func DailySeries(readings []models.Reading, loc *time.Location) analytics.Series {
	return Rollup(MinuteSeries(readings, loc), GranularityDay)
}

// MonthlySeries reduces readings to one value per month: the mean of that
// month's daily values.
func MonthlySeries(readings []models.Reading, loc *time.Location) analytics.Series {
	return Rollup(DailySeries(readings, loc), GranularityMonth)
}

type rollupAcc struct {
	start time.Time
	sum   float64
	count int
}

// Rollup re-buckets a series into the coarser granularity g. Each output point
// is the mean of the input points falling into it, rounded to 2 decimals.
// Point times are truncated in their own location.
func Rollup(s analytics.Series, g Granularity) analytics.Series {
	layout := g.KeyLayout()
	groups := make(map[string]*rollupAcc)
	for _, p := range s {
		if p.Time.IsZero() {
			continue
		}
		key := p.Time.Format(layout)
		acc, ok := groups[key]
		if !ok {
			acc = &rollupAcc{start: g.Truncate(p.Time)}
			groups[key] = acc
		}
		acc.sum += p.Value
		acc.count++
	}

	out := make(analytics.Series, 0, len(groups))
	for key, acc := range groups {
		out = append(out, analytics.SeriesPoint{
			Key:   key,
			Time:  acc.start,
			Value: analytics.Round2(acc.sum / float64(acc.count)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
