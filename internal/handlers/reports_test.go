package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/smartbackpack/loadreport/internal/models"
	"github.com/smartbackpack/loadreport/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reportBody is the subset of the report response the tests inspect
type reportBody struct {
	Backpack string `json:"backpack"`
	Readings int    `json:"readings"`
	Kind     string `json:"kind"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Series   []struct {
		Key   string  `json:"key"`
		Value float64 `json:"value"`
	} `json:"series"`
	Chart   []json.RawMessage `json:"chart"`
	Summary *struct {
		Mean float64 `json:"mean"`
	} `json:"summary"`
	Trend      json.RawMessage `json:"trend"`
	Indicators struct {
		MaxAllowedPerSide float64 `json:"max_allowed_per_side"`
	} `json:"indicators"`
}

func seed(t *testing.T, store *storage.MemoryStore, readings ...models.Reading) {
	t.Helper()
	require.NoError(t, store.Write(context.Background(), readings...))
}

func at(day, hour int, side string, w float64) models.Reading {
	return models.Reading{
		Backpack:  "BP1",
		Timestamp: time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC),
		SideLabel: side,
		Weight:    w,
	}
}

func getReport(t *testing.T, app *fiber.App, target string) reportBody {
	t.Helper()
	resp, body := doRequest(t, app, "GET", target, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	var rb reportBody
	require.NoError(t, json.Unmarshal(body, &rb))
	return rb
}

func TestReports_Kinds(t *testing.T) {
	app, _, store := setupTestApp(t, nil)
	seed(t, store,
		at(18, 8, "Esquerda", 4),
		at(18, 8, "Direita", 2),
		at(19, 9, "ambos", 3),
		at(20, 7, "left", 5),
	)

	tests := []struct {
		name      string
		target    string
		kind      string
		start     string
		end       string
		chartLen  int
		readings  int
		seriesLen int
	}{
		{"daily default today", "/v1/backpacks/BP1/reports/daily", "daily", "2024-03-20", "2024-03-20", 1, 1, 1},
		{"daily explicit", "/v1/backpacks/BP1/reports/daily?date=2024-03-18", "daily", "2024-03-18", "2024-03-18", 1, 2, 1},
		{"weekly", "/v1/backpacks/BP1/reports/weekly?date=2024-03-19", "weekly", "2024-03-17", "2024-03-23", 7, 4, 3},
		{"period", "/v1/backpacks/BP1/reports/period?start=2024-03-18&end=2024-03-19", "period", "2024-03-18", "2024-03-19", 2, 3, 2},
		{"monthly", "/v1/backpacks/BP1/reports/monthly?month=2024-03", "monthly", "2024-03-01", "2024-03-31", 31, 4, 3},
		{"annual", "/v1/backpacks/BP1/reports/annual?year=2024", "annual", "2024-01-01", "2024-12-31", 12, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := getReport(t, app, tt.target)
			assert.Equal(t, "BP1", rb.Backpack)
			assert.Equal(t, tt.kind, rb.Kind)
			assert.Equal(t, tt.start, rb.Start)
			assert.Equal(t, tt.end, rb.End)
			assert.Len(t, rb.Chart, tt.chartLen)
			assert.Equal(t, tt.readings, rb.Readings)
			assert.Len(t, rb.Series, tt.seriesLen)
		})
	}
}

func TestReports_WeeklyValues(t *testing.T) {
	app, _, store := setupTestApp(t, nil)
	seed(t, store,
		at(18, 8, "Esquerda", 4),
		at(18, 8, "Direita", 2),
		at(19, 9, "ambos", 3),
	)

	rb := getReport(t, app, "/v1/backpacks/BP1/reports/weekly?date=2024-03-18")
	require.Len(t, rb.Series, 2)
	assert.Equal(t, "2024-03-18", rb.Series[0].Key)
	assert.Equal(t, 6.0, rb.Series[0].Value)
	assert.Equal(t, 6.0, rb.Series[1].Value)
	require.NotNil(t, rb.Summary)
	assert.Equal(t, 6.0, rb.Summary.Mean)
}

func TestReports_EmptyPeriod(t *testing.T) {
	app, _, _ := setupTestApp(t, nil)

	rb := getReport(t, app, "/v1/backpacks/BP1/reports/monthly?month=2024-02")
	assert.Len(t, rb.Chart, 29)
	assert.Nil(t, rb.Summary)
	assert.Equal(t, "null", string(rb.Trend))
	assert.Empty(t, rb.Series)
}

func TestReports_LimitOptions(t *testing.T) {
	app, _, _ := setupTestApp(t, nil)

	rb := getReport(t, app, "/v1/backpacks/BP1/reports/daily")
	assert.Equal(t, 3.5, rb.Indicators.MaxAllowedPerSide)

	rb = getReport(t, app, "/v1/backpacks/BP1/reports/daily?body_weight=60&max_load_pct=20")
	assert.Equal(t, 6.0, rb.Indicators.MaxAllowedPerSide)
}

func TestReports_Invalid(t *testing.T) {
	app, _, _ := setupTestApp(t, nil)

	tests := []struct {
		name   string
		target string
		code   string
	}{
		{"bad date", "/v1/backpacks/BP1/reports/daily?date=20-03-2024", "INVALID_REQUEST"},
		{"bad month", "/v1/backpacks/BP1/reports/monthly?month=march", "INVALID_REQUEST"},
		{"bad year", "/v1/backpacks/BP1/reports/annual?year=20x4", "INVALID_REQUEST"},
		{"inverted period", "/v1/backpacks/BP1/reports/period?start=2024-03-10&end=2024-03-01", "INVALID_REQUEST"},
		{"end before today", "/v1/backpacks/BP1/reports/period?end=2024-03-01", "INVALID_PERIOD"},
		{"bad weight", "/v1/backpacks/BP1/reports/weekly?body_weight=0", "INVALID_REQUEST"},
		{"bad code", "/v1/backpacks/BP.1/reports/daily", "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, app, "GET", tt.target, "")
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, body).Code)
		})
	}
}

func TestForecast(t *testing.T) {
	app, _, store := setupTestApp(t, nil)
	seed(t, store,
		at(6, 8, "left", 5),
		at(13, 8, "left", 7),
	)

	resp, body := doRequest(t, app, "GET", "/v1/backpacks/BP1/forecast", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fr struct {
		Backpack        string  `json:"backpack"`
		Accepted        bool    `json:"accepted"`
		PredictedWeight float64 `json:"predicted_weight"`
		SampleSize      int     `json:"sample_size"`
		Target          string  `json:"target"`
		Weekday         string  `json:"weekday"`
	}
	require.NoError(t, json.Unmarshal(body, &fr))
	assert.Equal(t, "BP1", fr.Backpack)
	assert.True(t, fr.Accepted)
	assert.Equal(t, 6.0, fr.PredictedWeight)
	assert.Equal(t, 2, fr.SampleSize)
	assert.Equal(t, "2024-03-20", fr.Target)
	assert.Equal(t, "Wednesday", fr.Weekday)
}

func TestForecast_RejectionIsOK(t *testing.T) {
	app, _, _ := setupTestApp(t, nil)

	resp, body := doRequest(t, app, "GET", "/v1/backpacks/BP1/forecast?date=2024-03-27", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fr struct {
		Accepted bool   `json:"accepted"`
		Reason   string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(body, &fr))
	assert.False(t, fr.Accepted)
	assert.Equal(t, "no same-weekday history", fr.Reason)
}

func TestForecast_InvalidDate(t *testing.T) {
	app, _, _ := setupTestApp(t, nil)

	resp, body := doRequest(t, app, "GET", "/v1/backpacks/BP1/forecast?date=soon", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, body).Code)
}
