package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartbackpack/loadreport/internal/logging"
	"github.com/smartbackpack/loadreport/internal/models"
	"github.com/smartbackpack/loadreport/internal/report"
	"github.com/smartbackpack/loadreport/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday
var testNow = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

type failingSource struct{}

func (failingSource) Query(ctx context.Context, backpack string, start, end time.Time) ([]models.Reading, error) {
	return nil, errors.New("store offline")
}

func newTestAggregator() *report.Aggregator {
	return report.NewAggregator(report.FixedClock(testNow), report.DefaultLocale())
}

func newTestStore(t *testing.T, readings ...models.Reading) *storage.MemoryStore {
	t.Helper()
	store := storage.NewMemoryStore(0, 0, logging.NewNop())
	t.Cleanup(func() { _ = store.Close() })
	if len(readings) > 0 {
		require.NoError(t, store.Write(context.Background(), readings...))
	}
	return store
}

func rd(ts time.Time, side string, w float64) models.Reading {
	return models.Reading{Backpack: "BP1", Timestamp: ts, SideLabel: side, Weight: w}
}

func TestReportService_Period(t *testing.T) {
	svc := NewReportService(logging.NewNop(), newTestStore(t), newTestAggregator())

	tests := []struct {
		name      string
		req       ReportRequest
		wantStart string
		wantEnd   string
	}{
		{"daily defaults to today", ReportRequest{Kind: report.KindDaily}, "2024-03-20", "2024-03-21"},
		{"weekly starts on sunday", ReportRequest{Kind: report.KindWeekly}, "2024-03-17", "2024-03-24"},
		{"weekly of given date", ReportRequest{Kind: report.KindWeekly, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}, "2024-03-03", "2024-03-10"},
		{"period inclusive", ReportRequest{
			Kind:  report.KindPeriod,
			Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		}, "2024-03-01", "2024-03-04"},
		{"period single day", ReportRequest{Kind: report.KindPeriod, Start: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}, "2024-03-01", "2024-03-02"},
		{"monthly defaults", ReportRequest{Kind: report.KindMonthly}, "2024-03-01", "2024-04-01"},
		{"monthly explicit", ReportRequest{Kind: report.KindMonthly, Year: 2023, Month: time.February}, "2023-02-01", "2023-03-01"},
		{"annual", ReportRequest{Kind: report.KindAnnual, Year: 2022}, "2022-01-01", "2023-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.Period(&tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.req.Kind, p.Kind)
			assert.Equal(t, tt.wantStart, p.Start.Format(time.DateOnly))
			assert.Equal(t, tt.wantEnd, p.End.Format(time.DateOnly))
		})
	}
}

func TestReportService_PeriodErrors(t *testing.T) {
	svc := NewReportService(logging.NewNop(), newTestStore(t), newTestAggregator())

	tests := []struct {
		name string
		req  ReportRequest
	}{
		{"unknown kind", ReportRequest{Kind: "hourly"}},
		{"inverted range", ReportRequest{
			Kind:  report.KindPeriod,
			Start: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}},
		{"month out of range", ReportRequest{Kind: report.KindMonthly, Month: 13}},
		{"year out of range", ReportRequest{Kind: report.KindAnnual, Year: 10000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Period(&tt.req)
			require.Error(t, err)
			var svcErr *ServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, CodeInvalidPeriod, svcErr.Code)
		})
	}
}

func TestReportService_Execute(t *testing.T) {
	store := newTestStore(t,
		rd(time.Date(2024, 3, 18, 8, 0, 0, 0, time.UTC), "Esquerda", 4),
		rd(time.Date(2024, 3, 18, 8, 0, 30, 0, time.UTC), "Direita", 2),
		rd(time.Date(2024, 3, 19, 8, 0, 0, 0, time.UTC), "ambos", 3),
		// previous week, outside the report
		rd(time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC), "left", 50),
	)
	svc := NewReportService(logging.NewNop(), store, newTestAggregator())

	resp, err := svc.Execute(context.Background(), &ReportRequest{Backpack: "BP1", Kind: report.KindWeekly})
	require.NoError(t, err)

	assert.Equal(t, "BP1", resp.Backpack)
	assert.Equal(t, 3, resp.Readings)
	assert.Equal(t, report.KindWeekly, resp.Kind)
	assert.Equal(t, "2024-03-17", resp.Start)
	assert.Equal(t, "2024-03-23", resp.End)
	require.Len(t, resp.Series, 2)
	assert.Equal(t, 6.0, resp.Series[0].Value)
	assert.Equal(t, 6.0, resp.Series[1].Value)
	assert.Len(t, resp.Chart, 7)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, 6.0, resp.Summary.Mean)
	assert.Equal(t, testNow, resp.GeneratedAt)
}

func TestReportService_ExecuteEmpty(t *testing.T) {
	svc := NewReportService(logging.NewNop(), newTestStore(t), newTestAggregator())

	resp, err := svc.Execute(context.Background(), &ReportRequest{Backpack: "BP9", Kind: report.KindMonthly})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Readings)
	assert.Nil(t, resp.Summary)
	assert.Nil(t, resp.Trend)
	assert.Len(t, resp.Chart, 31)
}

func TestReportService_ExecuteErrors(t *testing.T) {
	t.Run("missing backpack", func(t *testing.T) {
		svc := NewReportService(logging.NewNop(), newTestStore(t), newTestAggregator())
		_, err := svc.Execute(context.Background(), &ReportRequest{Kind: report.KindDaily})
		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, CodeInvalidRequest, svcErr.Code)
	})

	t.Run("query failure", func(t *testing.T) {
		svc := NewReportService(logging.NewNop(), failingSource{}, newTestAggregator())
		_, err := svc.Execute(context.Background(), &ReportRequest{Backpack: "BP1", Kind: report.KindDaily})
		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, CodeQueryFailed, svcErr.Code)
		assert.Equal(t, "store offline", svcErr.Details["error"])
	})
}

func TestForecastService_Accepted(t *testing.T) {
	// Three previous Wednesdays with similar loads
	store := newTestStore(t,
		rd(time.Date(2024, 2, 28, 8, 0, 0, 0, time.UTC), "left", 5),
		rd(time.Date(2024, 3, 6, 8, 0, 0, 0, time.UTC), "left", 6),
		rd(time.Date(2024, 3, 13, 8, 0, 0, 0, time.UTC), "left", 7),
		// a Tuesday, ignored by the weekday filter
		rd(time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC), "left", 90),
		// the target day itself is not history
		rd(time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC), "left", 90),
	)
	svc := NewForecastService(logging.NewNop(), store, newTestAggregator())

	resp, err := svc.Execute(context.Background(), &ForecastRequest{Backpack: "BP1"})
	require.NoError(t, err)

	assert.Equal(t, "BP1", resp.Backpack)
	assert.True(t, resp.Accepted)
	assert.Equal(t, 6.0, resp.PredictedWeight)
	assert.Equal(t, 3, resp.SampleSize)
	assert.Equal(t, "2024-03-20", resp.Target)
	assert.Equal(t, "Wednesday", resp.Weekday)
}

func TestForecastService_Rejected(t *testing.T) {
	store := newTestStore(t, rd(time.Date(2024, 3, 13, 8, 0, 0, 0, time.UTC), "left", 5))
	svc := NewForecastService(logging.NewNop(), store, newTestAggregator())

	resp, err := svc.Execute(context.Background(), &ForecastRequest{Backpack: "BP1", Date: testNow})
	require.NoError(t, err, "a rejected forecast is not an error")
	assert.False(t, resp.Accepted)
	assert.Equal(t, "fewer than 2 same-weekday days", resp.Reason)
	assert.NotNil(t, resp.PartialSummary)
}

func TestForecastService_Errors(t *testing.T) {
	svc := NewForecastService(logging.NewNop(), failingSource{}, newTestAggregator())

	_, err := svc.Execute(context.Background(), &ForecastRequest{Backpack: "bad code"})
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, CodeInvalidRequest, svcErr.Code)

	_, err = svc.Execute(context.Background(), &ForecastRequest{Backpack: "BP1"})
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, CodeQueryFailed, svcErr.Code)
}

func TestReportService_Defaults(t *testing.T) {
	svc := NewReportService(logging.NewNop(), newTestStore(t), newTestAggregator())
	svc.SetDefaults(report.Options{BodyWeightKg: 80, MaxLoadPct: 15})

	resp, err := svc.Execute(context.Background(), &ReportRequest{Backpack: "BP1", Kind: report.KindDaily})
	require.NoError(t, err)
	assert.Equal(t, 6.0, resp.Indicators.MaxAllowedPerSide)

	resp, err = svc.Execute(context.Background(), &ReportRequest{
		Backpack: "BP1",
		Kind:     report.KindDaily,
		Options:  report.Options{BodyWeightKg: 40},
	})
	require.NoError(t, err)
	assert.Equal(t, 3.0, resp.Indicators.MaxAllowedPerSide, "explicit values win per field")
}
