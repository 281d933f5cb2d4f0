package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/smartbackpack/loadreport/internal/models"
	"github.com/smartbackpack/loadreport/internal/report"
	"github.com/smartbackpack/loadreport/internal/services"
)

// DailyReport handles GET /v1/backpacks/:code/reports/daily?date=YYYY-MM-DD
func (h *Handler) DailyReport(c *fiber.Ctx) error {
	return h.report(c, report.KindDaily)
}

// WeeklyReport handles GET /v1/backpacks/:code/reports/weekly?date=YYYY-MM-DD
func (h *Handler) WeeklyReport(c *fiber.Ctx) error {
	return h.report(c, report.KindWeekly)
}

// PeriodReport handles GET /v1/backpacks/:code/reports/period?start=...&end=...
func (h *Handler) PeriodReport(c *fiber.Ctx) error {
	return h.report(c, report.KindPeriod)
}

// MonthlyReport handles GET /v1/backpacks/:code/reports/monthly?month=YYYY-MM
func (h *Handler) MonthlyReport(c *fiber.Ctx) error {
	return h.report(c, report.KindMonthly)
}

// AnnualReport handles GET /v1/backpacks/:code/reports/annual?year=YYYY
func (h *Handler) AnnualReport(c *fiber.Ctx) error {
	return h.report(c, report.KindAnnual)
}

func (h *Handler) report(c *fiber.Ctx, kind report.Kind) error {
	q := &models.ReportQuery{
		Backpack:   c.Params("code"),
		Kind:       string(kind),
		Date:       c.Query("date"),
		Start:      c.Query("start"),
		End:        c.Query("end"),
		Month:      c.Query("month"),
		Year:       c.Query("year"),
		BodyWeight: c.Query("body_weight"),
		MaxLoadPct: c.Query("max_load_pct"),
	}
	if err := q.Validate(h.loc); err != nil {
		return h.errorResponse(c, err)
	}

	req := &services.ReportRequest{
		Backpack: q.Backpack,
		Kind:     kind,
		Date:     q.DateParsed,
		Start:    q.StartParsed,
		End:      q.EndParsed,
		Year:     q.YearParsed,
		Month:    q.MonthParsed,
		Options: report.Options{
			BodyWeightKg: q.BodyWeightParsed,
			MaxLoadPct:   q.MaxLoadPctParsed,
		},
	}

	resp, err := h.reportService.Execute(c.UserContext(), req)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(resp)
}

// Forecast predicts the load of a day from same-weekday history. A rejected
// forecast is returned with status 200 and accepted=false.
// GET /v1/backpacks/:code/forecast?date=YYYY-MM-DD
func (h *Handler) Forecast(c *fiber.Ctx) error {
	q := &models.ForecastQuery{
		Backpack: c.Params("code"),
		Date:     c.Query("date"),
	}
	if err := q.Validate(h.loc); err != nil {
		return h.errorResponse(c, err)
	}

	resp, err := h.forecastService.Execute(c.UserContext(), &services.ForecastRequest{
		Backpack: q.Backpack,
		Date:     q.DateParsed,
	})
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(resp)
}

// errorResponse maps validation and service errors onto the JSON error envelope
func (h *Handler) errorResponse(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_REQUEST",
				Message: fiberErr.Message,
			},
		})
	}

	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		status := fiber.StatusInternalServerError
		switch svcErr.Code {
		case services.CodeInvalidRequest, services.CodeInvalidPeriod:
			status = fiber.StatusBadRequest
		case services.CodeQueryFailed:
			h.logger.Error("Report query failed",
				"path", c.Path(),
				"details", svcErr.Details)
		}
		return c.Status(status).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    svcErr.Code,
				Message: svcErr.Message,
				Details: svcErr.Details,
			},
		})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: err.Error(),
		},
	})
}

