package services

import (
	"context"
	"fmt"
	"time"

	"github.com/smartbackpack/loadreport/internal/ingest"
	"github.com/smartbackpack/loadreport/internal/logging"
	"github.com/smartbackpack/loadreport/internal/report"
	"github.com/smartbackpack/loadreport/internal/storage"
)

// ReportService builds load reports from stored readings
type ReportService struct {
	logger     *logging.Logger
	source     storage.ReadingSource
	aggregator *report.Aggregator
	defaults   report.Options
}

// NewReportService creates a new ReportService
func NewReportService(
	logger *logging.Logger,
	source storage.ReadingSource,
	aggregator *report.Aggregator,
) *ReportService {
	return &ReportService{
		logger:     logger,
		source:     source,
		aggregator: aggregator,
	}
}

// SetDefaults sets the load limit inputs used when a request leaves them zero
func (s *ReportService) SetDefaults(opts report.Options) {
	s.defaults = opts
}

// ReportRequest describes one report. Zero dates and calendar fields default
// to the aggregator's current day, month or year.
type ReportRequest struct {
	Backpack string
	Kind     report.Kind

	Date  time.Time // daily and weekly
	Start time.Time // period, first day
	End   time.Time // period, last day inclusive

	Year  int        // monthly and annual
	Month time.Month // monthly

	Options report.Options
}

// ReportResponse is a report of one backpack
type ReportResponse struct {
	Backpack string `json:"backpack"`
	Readings int    `json:"readings"`
	*report.Report
}

// Period resolves the calendar period of req in the aggregator's locale
func (s *ReportService) Period(req *ReportRequest) (report.Period, error) {
	locale := s.aggregator.Locale()
	now := s.aggregator.Now()

	orNow := func(t time.Time) time.Time {
		if t.IsZero() {
			return now
		}
		return t
	}

	year := req.Year
	if year == 0 {
		year = now.Year()
	}
	if year < 1 || year > 9999 {
		return report.Period{}, NewServiceErrorWithDetails(CodeInvalidPeriod,
			fmt.Sprintf("year %d is out of range", year),
			map[string]interface{}{"year": year})
	}

	switch req.Kind {
	case report.KindDaily:
		return locale.Day(orNow(req.Date)), nil
	case report.KindWeekly:
		return locale.Week(orNow(req.Date)), nil
	case report.KindPeriod:
		start := orNow(req.Start)
		end := req.End
		if end.IsZero() {
			end = start
		}
		if locale.StartOfDay(end).Before(locale.StartOfDay(start)) {
			return report.Period{}, NewServiceErrorWithDetails(CodeInvalidPeriod,
				"end date is before start date",
				map[string]interface{}{
					"start": start.Format(time.DateOnly),
					"end":   end.Format(time.DateOnly),
				})
		}
		return locale.Range(start, end), nil
	case report.KindMonthly:
		month := req.Month
		if month == 0 {
			month = now.Month()
		}
		if month < time.January || month > time.December {
			return report.Period{}, NewServiceErrorWithDetails(CodeInvalidPeriod,
				fmt.Sprintf("month %d is out of range", month),
				map[string]interface{}{"month": int(month)})
		}
		return locale.Month(year, month), nil
	case report.KindAnnual:
		return locale.Year(year), nil
	default:
		return report.Period{}, NewServiceErrorWithDetails(CodeInvalidPeriod,
			fmt.Sprintf("unknown report kind %q", req.Kind),
			map[string]interface{}{
				"available_kinds": []report.Kind{
					report.KindDaily, report.KindWeekly, report.KindPeriod,
					report.KindMonthly, report.KindAnnual,
				},
			})
	}
}

// Execute resolves the period, queries its readings and builds the report
func (s *ReportService) Execute(ctx context.Context, req *ReportRequest) (*ReportResponse, error) {
	startExec := time.Now()

	if err := ingest.ValidateBackpackCode(req.Backpack); err != nil {
		return nil, NewServiceError(CodeInvalidRequest, err.Error())
	}

	period, err := s.Period(req)
	if err != nil {
		return nil, err
	}

	readings, err := s.source.Query(ctx, req.Backpack, period.Start, period.End)
	if err != nil {
		return nil, &ServiceError{
			Code:    CodeQueryFailed,
			Message: "Failed to query readings",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}

	opts := req.Options
	if opts.BodyWeightKg <= 0 {
		opts.BodyWeightKg = s.defaults.BodyWeightKg
	}
	if opts.MaxLoadPct <= 0 {
		opts.MaxLoadPct = s.defaults.MaxLoadPct
	}
	rep := s.aggregator.Build(period, readings, opts)

	s.logger.Debug("Report built",
		"backpack", req.Backpack,
		"kind", string(period.Kind),
		"period", period.String(),
		"readings", len(readings),
		"series_len", rep.Series.Len(),
		"latency_ms", time.Since(startExec).Milliseconds())

	return &ReportResponse{
		Backpack: req.Backpack,
		Readings: len(readings),
		Report:   rep,
	}, nil
}
