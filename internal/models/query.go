package models

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/smartbackpack/loadreport/internal/utils"
)

// Report kinds accepted by ReportQuery
var ReportKinds = []string{"daily", "weekly", "period", "monthly", "annual"}

// ReportQuery represents the raw report query input. Empty date fields mean
// the current day, month or year.
type ReportQuery struct {
	Backpack   string
	Kind       string
	Date       string // YYYY-MM-DD, daily and weekly
	Start      string // YYYY-MM-DD, period
	End        string // YYYY-MM-DD, period, inclusive
	Month      string // YYYY-MM, monthly
	Year       string // YYYY, annual
	BodyWeight string // kg
	MaxLoadPct string // percent of body weight

	DateParsed       time.Time
	StartParsed      time.Time
	EndParsed        time.Time
	YearParsed       int
	MonthParsed      time.Month
	BodyWeightParsed float64
	MaxLoadPctParsed float64
}

// Validate checks the query and fills the *Parsed fields. Dates are read as
// local midnight in loc.
func (q *ReportQuery) Validate(loc *time.Location) error {
	if q.Backpack == "" {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "backpack code is required",
		}
	}

	valid := false
	for _, k := range ReportKinds {
		if q.Kind == k {
			valid = true
			break
		}
	}
	if !valid {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "report kind must be one of: daily, weekly, period, monthly, annual",
		}
	}

	var err error
	if q.DateParsed, err = parseOptionalDate("date", q.Date, loc); err != nil {
		return err
	}
	if q.StartParsed, err = parseOptionalDate("start", q.Start, loc); err != nil {
		return err
	}
	if q.EndParsed, err = parseOptionalDate("end", q.End, loc); err != nil {
		return err
	}
	if !q.StartParsed.IsZero() && !q.EndParsed.IsZero() && q.EndParsed.Before(q.StartParsed) {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "end must not be before start",
		}
	}

	if q.Month != "" {
		year, month, err := utils.ParseMonth(q.Month)
		if err != nil {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "month must be in YYYY-MM format (e.g., 2024-03)",
			}
		}
		q.YearParsed, q.MonthParsed = year, month
	}

	if q.Year != "" {
		year, err := utils.ParseYear(q.Year)
		if err != nil {
			return &fiber.Error{
				Code:    fiber.StatusBadRequest,
				Message: "year must be in YYYY format (e.g., 2024)",
			}
		}
		q.YearParsed = year
	}

	if q.BodyWeightParsed, err = parseOptionalPositive("body_weight", q.BodyWeight); err != nil {
		return err
	}
	if q.MaxLoadPctParsed, err = parseOptionalPositive("max_load_pct", q.MaxLoadPct); err != nil {
		return err
	}
	if q.MaxLoadPctParsed > 100 {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "max_load_pct cannot exceed 100",
		}
	}

	return nil
}

// ForecastQuery represents the raw forecast query input
type ForecastQuery struct {
	Backpack string
	Date     string // YYYY-MM-DD, empty means today

	DateParsed time.Time
}

// Validate checks the query and parses Date
func (q *ForecastQuery) Validate(loc *time.Location) error {
	if q.Backpack == "" {
		return &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: "backpack code is required",
		}
	}
	var err error
	q.DateParsed, err = parseOptionalDate("date", q.Date, loc)
	return err
}

func parseOptionalDate(name, s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := utils.ParseDate(s, loc)
	if err != nil {
		return time.Time{}, &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: name + " must be in YYYY-MM-DD format (e.g., 2024-03-10)",
		}
	}
	return t, nil
}

func parseOptionalPositive(name, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, ok := utils.ToFloat64(s)
	if !ok || v <= 0 {
		return 0, &fiber.Error{
			Code:    fiber.StatusBadRequest,
			Message: name + " must be a positive number",
		}
	}
	return v, nil
}
