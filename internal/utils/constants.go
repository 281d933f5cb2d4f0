package utils

import "time"

// HTTP handler timeouts
const (
	// DefaultRequestTimeout bounds report and forecast requests
	DefaultRequestTimeout = 30 * time.Second

	// BatchWriteTimeout bounds a reading write, store or queue
	BatchWriteTimeout = 10 * time.Second

	// ShutdownTimeout bounds graceful shutdown of the HTTP server
	ShutdownTimeout = 10 * time.Second
)

// Calendar layouts accepted in query parameters
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
	YearLayout  = "2006"
)

// Ingestion limits
const (
	// MaxReadingsPerRequest caps one HTTP or queue batch
	MaxReadingsPerRequest = 10000

	// ReadingSubjectPrefix is the subject readings are published under,
	// followed by the backpack code
	ReadingSubjectPrefix = "readings"
)
