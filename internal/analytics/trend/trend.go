// Package trend fits an ordinary least squares line through a series
package trend

import "github.com/smartbackpack/loadreport/internal/analytics"

// Line is y = Slope*x + Intercept, where x is the 1-based position of a point
// in its series
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Fit returns the least-squares line through values, using x = 1..n.
// It returns nil for fewer than 2 values. Coefficients are rounded to 2
// decimals.
func Fit(values []float64) *Line {
	if len(values) < 2 {
		return nil
	}

	n := float64(len(values))
	sumX := 0.0
	sumY := 0.0
	sumXY := 0.0
	sumX2 := 0.0

	for i, y := range values {
		x := float64(i + 1)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	slope := 0.0
	if denominator := n*sumX2 - sumX*sumX; denominator != 0 {
		slope = (n*sumXY - sumX*sumY) / denominator
	}
	intercept := (sumY - slope*sumX) / n

	return &Line{
		Slope:     analytics.Round2(slope),
		Intercept: analytics.Round2(intercept),
	}
}

// FitSeries fits the values of s in order
func FitSeries(s analytics.Series) *Line {
	return Fit(s.Values())
}

// At evaluates the line at position x
func (l *Line) At(x int) float64 {
	if l == nil {
		return 0
	}
	return analytics.Round2(l.Slope*float64(x) + l.Intercept)
}

// Points evaluates the line at positions 1..n, for chart overlays
func (l *Line) Points(n int) []float64 {
	if l == nil || n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = l.At(i + 1)
	}
	return out
}
