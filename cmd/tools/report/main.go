package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/smartbackpack/loadreport/internal/analytics/forecast"
	"github.com/smartbackpack/loadreport/internal/config"
	"github.com/smartbackpack/loadreport/internal/ingest"
	"github.com/smartbackpack/loadreport/internal/models"
	"github.com/smartbackpack/loadreport/internal/report"
	"github.com/smartbackpack/loadreport/internal/utils"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

// run parses args, builds one report or forecast from the input file and
// writes it as indented JSON to stdout
func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)

	input := fs.String("input", "", "JSON file of readings (object, array or {\"readings\": [...]})")
	kind := fs.String("kind", "daily", "Report kind (daily, weekly, period, monthly, annual, forecast)")
	date := fs.String("date", "", "Day for daily, weekly and forecast (YYYY-MM-DD), month (YYYY-MM) or year (YYYY)")
	start := fs.String("start", "", "First day of a period report (YYYY-MM-DD)")
	end := fs.String("end", "", "Last day of a period report, inclusive (YYYY-MM-DD)")
	tz := fs.String("tz", "UTC", "Timezone for calendar days (IANA name or offset like -03:00)")
	weekStart := fs.String("week-start", "sunday", "First day of the week")
	backpack := fs.String("backpack", "local", "Backpack code for readings that carry none")
	bodyWeight := fs.Float64("body-weight", report.DefaultBodyWeightKg, "Body weight in kg")
	maxLoadPct := fs.Float64("max-load-pct", report.DefaultMaxLoadPct, "Allowed load as percent of body weight")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("-input parameter is required")
	}

	loc, err := config.ParseTimezone(*tz)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", *tz, err)
	}
	wd, err := config.ParseWeekday(*weekStart)
	if err != nil {
		return fmt.Errorf("invalid week start %q: %w", *weekStart, err)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	reqs, err := ingest.Decode(data)
	if err != nil {
		return err
	}

	// Payload codes are kept; the flag only fills in missing ones
	readings := make([]models.Reading, 0, len(reqs))
	skipped := 0
	for _, req := range reqs {
		if req.Backpack == "" {
			req.Backpack = *backpack
		}
		r, err := ingest.ToReading(req, "", loc)
		if err != nil {
			skipped++
			continue
		}
		readings = append(readings, r)
	}
	if skipped > 0 {
		fmt.Fprintf(stderr, "Warning: skipped %d invalid readings\n", skipped)
	}

	aggregator := report.NewAggregator(report.SystemClock(), report.Locale{Location: loc, WeekStart: wd})
	opts := report.Options{BodyWeightKg: *bodyWeight, MaxLoadPct: *maxLoadPct}

	var out interface{}
	switch report.Kind(*kind) {
	case report.KindDaily, report.KindWeekly:
		day, err := dayOrToday(*date, loc, aggregator)
		if err != nil {
			return err
		}
		if *kind == string(report.KindDaily) {
			out = aggregator.Daily(readings, day, opts)
		} else {
			out = aggregator.Weekly(readings, day, opts)
		}

	case report.KindPeriod:
		first, err := dayOrToday(*start, loc, aggregator)
		if err != nil {
			return err
		}
		last := first
		if *end != "" {
			if last, err = utils.ParseDate(*end, loc); err != nil {
				return err
			}
		}
		if last.Before(first) {
			return errors.New("-end must not be before -start")
		}
		out = aggregator.Range(readings, first, last, opts)

	case report.KindMonthly:
		now := aggregator.Now()
		year, month := now.Year(), now.Month()
		if *date != "" {
			if year, month, err = utils.ParseMonth(*date); err != nil {
				return err
			}
		}
		out = aggregator.Monthly(readings, year, month, opts)

	case report.KindAnnual:
		year := aggregator.Now().Year()
		if *date != "" {
			if year, err = utils.ParseYear(*date); err != nil {
				return err
			}
		}
		out = aggregator.Annual(readings, year, opts)

	case "forecast":
		day, err := dayOrToday(*date, loc, aggregator)
		if err != nil {
			return err
		}
		history := make([]models.Reading, 0, len(readings))
		for _, r := range readings {
			if r.Timestamp.Before(day) {
				history = append(history, r)
			}
		}
		out = forecast.NewWeekdayPredictor(loc).Predict(history, day)

	default:
		return fmt.Errorf("unknown kind %q", *kind)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func dayOrToday(s string, loc *time.Location, a *report.Aggregator) (time.Time, error) {
	if s == "" {
		return a.Locale().StartOfDay(a.Now()), nil
	}
	return utils.ParseDate(s, loc)
}
