package services

import (
	"context"
	"time"

	"github.com/smartbackpack/loadreport/internal/analytics/forecast"
	"github.com/smartbackpack/loadreport/internal/ingest"
	"github.com/smartbackpack/loadreport/internal/logging"
	"github.com/smartbackpack/loadreport/internal/report"
	"github.com/smartbackpack/loadreport/internal/storage"
)

// ForecastService predicts the load of a day from same-weekday history
type ForecastService struct {
	logger     *logging.Logger
	source     storage.ReadingSource
	aggregator *report.Aggregator
	predictor  *forecast.WeekdayPredictor
}

// NewForecastService creates a new ForecastService. The aggregator provides
// the clock and locale.
func NewForecastService(
	logger *logging.Logger,
	source storage.ReadingSource,
	aggregator *report.Aggregator,
) *ForecastService {
	return &ForecastService{
		logger:     logger,
		source:     source,
		aggregator: aggregator,
		predictor:  forecast.NewWeekdayPredictor(aggregator.Locale().Loc()),
	}
}

// ForecastRequest represents a forecast request. A zero Date means today.
type ForecastRequest struct {
	Backpack string
	Date     time.Time
}

// ForecastResponse is the forecast of one backpack. A rejected forecast is a
// normal response with Accepted false.
type ForecastResponse struct {
	Backpack string `json:"backpack"`
	*forecast.Result
}

// Execute queries all readings before the target day and runs the predictor
func (s *ForecastService) Execute(ctx context.Context, req *ForecastRequest) (*ForecastResponse, error) {
	if err := ingest.ValidateBackpackCode(req.Backpack); err != nil {
		return nil, NewServiceError(CodeInvalidRequest, err.Error())
	}

	target := req.Date
	if target.IsZero() {
		target = s.aggregator.Now()
	}
	dayStart := s.aggregator.Locale().StartOfDay(target)

	history, err := s.source.Query(ctx, req.Backpack, time.Time{}, dayStart)
	if err != nil {
		return nil, &ServiceError{
			Code:    CodeQueryFailed,
			Message: "Failed to query reading history",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}

	result := s.predictor.Predict(history, dayStart)

	s.logger.Debug("Forecast computed",
		"backpack", req.Backpack,
		"target", result.Target,
		"accepted", result.Accepted,
		"reason", result.Reason,
		"sample_size", result.SampleSize)

	return &ForecastResponse{
		Backpack: req.Backpack,
		Result:   result,
	}, nil
}
