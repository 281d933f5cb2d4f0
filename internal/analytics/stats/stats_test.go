package stats

import (
	"math"
	"reflect"
	"testing"
)

func TestSummarize_Empty(t *testing.T) {
	if s := Summarize(nil); s != nil {
		t.Errorf("expected nil summary for empty input, got %+v", s)
	}
	if s := Summarize([]float64{math.NaN(), math.Inf(1)}); s != nil {
		t.Errorf("expected nil summary when only non-finite values, got %+v", s)
	}
}

func TestSummarize_KnownDistribution(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s == nil {
		t.Fatal("expected summary")
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"mean", s.Mean, 5},
		{"median", s.Median, 4.5},
		{"stddev", s.StdDev, 2},
		{"skewness", s.Skewness, 0.66},
		{"kurtosis", s.Kurtosis, -0.22},
		{"total", s.Total, 40},
		{"above mean pct", s.AboveMeanPct, 25},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
	if !reflect.DeepEqual(s.Mode, []float64{4}) {
		t.Errorf("expected mode [4], got %v", s.Mode)
	}
	if s.Count != 8 {
		t.Errorf("expected count 8, got %d", s.Count)
	}
}

func TestSummarize_ConstantSeries(t *testing.T) {
	s := Summarize([]float64{3, 3, 3})
	if s.StdDev != 0 {
		t.Errorf("expected stddev 0, got %v", s.StdDev)
	}
	if s.Skewness != 0 {
		t.Errorf("expected skewness 0, got %v", s.Skewness)
	}
	if s.Kurtosis != -3 {
		t.Errorf("expected kurtosis -3, got %v", s.Kurtosis)
	}
	if s.AboveMeanPct != 0 {
		t.Errorf("expected 0%% above mean, got %v", s.AboveMeanPct)
	}
}

func TestSummarize_SingleValue(t *testing.T) {
	s := Summarize([]float64{7.5})
	if s.Mean != 7.5 || s.Median != 7.5 || s.StdDev != 0 {
		t.Errorf("unexpected single value summary %+v", s)
	}
	if !reflect.DeepEqual(s.Mode, []float64{7.5}) {
		t.Errorf("expected mode [7.5], got %v", s.Mode)
	}
}

func TestSummarize_MultiModal(t *testing.T) {
	s := Summarize([]float64{1, 1, 2, 2, 3})
	if !reflect.DeepEqual(s.Mode, []float64{1, 2}) {
		t.Errorf("expected mode [1 2], got %v", s.Mode)
	}
	if got := s.ModeString(); got != "1, 2" {
		t.Errorf("expected mode string %q, got %q", "1, 2", got)
	}
}

func TestSummarize_ModeUsesRoundedValues(t *testing.T) {
	s := Summarize([]float64{1.001, 1.004, 2})
	if !reflect.DeepEqual(s.Mode, []float64{1}) {
		t.Errorf("expected values rounding to 1.00 to share a mode, got %v", s.Mode)
	}
}

func TestSummarize_Symmetric(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4, 5})
	if s.Mean != s.Median {
		t.Errorf("symmetric series: mean %v != median %v", s.Mean, s.Median)
	}
	if s.Skewness != 0 {
		t.Errorf("symmetric series: expected skewness 0, got %v", s.Skewness)
	}
}

func TestSummarize_EvenMedian(t *testing.T) {
	if got := Summarize([]float64{4, 1, 3, 2}).Median; got != 2.5 {
		t.Errorf("expected median 2.5, got %v", got)
	}
}

func TestSummarize_DropsNonFinite(t *testing.T) {
	s := Summarize([]float64{1, math.NaN(), 3, math.Inf(-1)})
	if s.Count != 2 || s.Mean != 2 {
		t.Errorf("expected non-finite values dropped, got count=%d mean=%v", s.Count, s.Mean)
	}
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	values := []float64{5, 1, 4}
	Summarize(values)
	if !reflect.DeepEqual(values, []float64{5, 1, 4}) {
		t.Errorf("input was reordered: %v", values)
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	values := []float64{12.3, 8.1, 9.9, 15.0, 8.1}
	a := Summarize(values)
	b := Summarize(values)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical summaries, got %+v and %+v", a, b)
	}
}

func TestSummarize_RightSkew(t *testing.T) {
	s := Summarize([]float64{1, 1, 1, 1, 10})
	if s.Skewness <= 1 {
		t.Errorf("expected strong positive skew, got %v", s.Skewness)
	}
}

func TestModeString_Nil(t *testing.T) {
	var s *Summary
	if got := s.ModeString(); got != "-" {
		t.Errorf("expected placeholder, got %q", got)
	}
}
