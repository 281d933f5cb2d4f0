// Package stats computes population descriptive statistics over a series of
// bucket loads.
//
// Variance and the moments derived from it use the population denominator n,
// never n-1, so report values stay comparable with historical reports.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/smartbackpack/loadreport/internal/analytics"
)

// Summary holds the descriptive statistics of one series. Every value is
// rounded to 2 decimals; internal computation uses full precision.
type Summary struct {
	Mean     float64   `json:"mean"`
	Median   float64   `json:"median"`
	Mode     []float64 `json:"mode"`
	StdDev   float64   `json:"std_dev"`
	Skewness float64   `json:"skewness"`
	Kurtosis float64   `json:"kurtosis"` // excess kurtosis

	Count        int     `json:"count"`
	Total        float64 `json:"total"`
	AboveMeanPct float64 `json:"above_mean_pct"`
}

// ModeString renders all modal values comma-joined, e.g. "1, 2"
func (s *Summary) ModeString() string {
	if s == nil || len(s.Mode) == 0 {
		return "-"
	}
	parts := make([]string, len(s.Mode))
	for i, m := range s.Mode {
		parts[i] = strconv.FormatFloat(m, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

// Summarize computes the statistics of values. Non-finite entries are dropped
// first; nil is returned when nothing remains.
func Summarize(values []float64) *Summary {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if analytics.Finite(v) {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return nil
	}

	n := float64(len(xs))
	total := 0.0
	for _, x := range xs {
		total += x
	}
	mean := total / n

	var m2, m3, m4 float64
	above := 0
	for _, x := range xs {
		d := x - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
		if x > mean {
			above++
		}
	}
	m2 /= n
	m3 /= n
	m4 /= n

	stdDev := math.Sqrt(m2)

	// Zero spread defines skewness as 0 and excess kurtosis as -3.
	skewDenom, kurtDenom := 1.0, 1.0
	if stdDev != 0 {
		skewDenom = stdDev * stdDev * stdDev
		kurtDenom = skewDenom * stdDev
	}

	return &Summary{
		Mean:         analytics.Round2(mean),
		Median:       analytics.Round2(median(xs)),
		Mode:         mode(xs),
		StdDev:       analytics.Round2(stdDev),
		Skewness:     analytics.Round2(m3 / skewDenom),
		Kurtosis:     analytics.Round2(m4/kurtDenom - 3),
		Count:        len(xs),
		Total:        analytics.Round2(total),
		AboveMeanPct: analytics.Round2(float64(above) / n * 100),
	}
}

// median sorts a copy; even lengths average the two middle elements
func median(xs []float64) float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// mode groups values by their 2-decimal rounding and returns every value
// that reaches the highest frequency, ascending
func mode(xs []float64) []float64 {
	freq := make(map[float64]int, len(xs))
	maxFreq := 0
	for _, x := range xs {
		k := analytics.Round2(x)
		freq[k]++
		if freq[k] > maxFreq {
			maxFreq = freq[k]
		}
	}

	modes := make([]float64, 0, 1)
	for k, c := range freq {
		if c == maxFreq {
			modes = append(modes, k)
		}
	}
	sort.Float64s(modes)
	return modes
}
