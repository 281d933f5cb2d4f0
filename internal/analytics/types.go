// Package analytics provides the series type shared by the statistics, trend
// and forecast packages.
package analytics

import (
	"math"
	"time"
)

// SeriesPoint is one bucket value of a series
type SeriesPoint struct {
	Key   string    `json:"key"`
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is an ordered list of bucket values. Order is chronological.
type Series []SeriesPoint

// Values extracts just the values from the series
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, p := range s {
		values[i] = p.Value
	}
	return values
}

// Keys extracts the bucket keys, used as chart labels
func (s Series) Keys() []string {
	keys := make([]string, len(s))
	for i, p := range s {
		keys[i] = p.Key
	}
	return keys
}

// Len returns the number of points
func (s Series) Len() int {
	return len(s)
}

// Round2 rounds half away from zero to 2 decimals. Adding zero turns a
// negative-zero result into 0.
func Round2(v float64) float64 {
	return math.Round(v*100)/100 + 0
}

// Finite reports whether v is neither NaN nor infinite
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Mean returns the arithmetic mean, 0 for an empty slice
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
