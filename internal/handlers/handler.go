package handlers

import (
	"time"

	"github.com/smartbackpack/loadreport/internal/ingest"
	"github.com/smartbackpack/loadreport/internal/logging"
	"github.com/smartbackpack/loadreport/internal/queue"
	"github.com/smartbackpack/loadreport/internal/report"
	"github.com/smartbackpack/loadreport/internal/services"
	"github.com/smartbackpack/loadreport/internal/storage"
)

// StatsSource is implemented by stores that report runtime statistics
type StatsSource interface {
	GetStats() map[string]interface{}
}

// Handler contains all HTTP handlers
type Handler struct {
	logger         *logging.Logger
	store          storage.ReadingStore
	queuePublisher queue.Publisher // nil writes straight to the store
	ingestHandler  *ingest.Handler // nil when the queue consumer is off
	loc            *time.Location
	// Services
	reportService   *services.ReportService
	forecastService *services.ForecastService
}

// New creates a new handler instance. With a non-nil queuePublisher the
// write endpoint publishes readings instead of storing them.
func New(logger *logging.Logger, store storage.ReadingStore,
	queuePublisher queue.Publisher, aggregator *report.Aggregator,
) *Handler {
	return &Handler{
		logger:          logger,
		store:           store,
		queuePublisher:  queuePublisher,
		loc:             aggregator.Locale().Loc(),
		reportService:   services.NewReportService(logger, store, aggregator),
		forecastService: services.NewForecastService(logger, store, aggregator),
	}
}

// SetReportDefaults sets the body weight and load percentage used when a
// report request does not pass them
func (h *Handler) SetReportDefaults(opts report.Options) {
	h.reportService.SetDefaults(opts)
}

// SetIngestHandler exposes the queue consumer's counters on the stats route
func (h *Handler) SetIngestHandler(ih *ingest.Handler) {
	h.ingestHandler = ih
}
