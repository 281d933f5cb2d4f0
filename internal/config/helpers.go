package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.Level == "debug" && c.Logging.Format == "console"
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// Location returns the report timezone, UTC if unset or invalid
func (c *ReportConfig) Location() *time.Location {
	loc, err := ParseTimezone(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FirstWeekday returns the configured week start, Sunday if unset or invalid
func (c *ReportConfig) FirstWeekday() time.Weekday {
	wd, err := ParseWeekday(c.WeekStart)
	if err != nil {
		return time.Sunday
	}
	return wd
}

// ParseTimezone accepts IANA names ("America/Sao_Paulo", "UTC") and
// offsets ("+09:00", "-03:00"). Empty means UTC.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}

	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}

	return parseOffsetTimezone(tz)
}

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):(\d{2})$`)

// parseOffsetTimezone parses timezone offset format like "+09:00", "-05:00"
func parseOffsetTimezone(offset string) (*time.Location, error) {
	matches := offsetPattern.FindStringSubmatch(offset)
	if len(matches) != 4 {
		return nil, fmt.Errorf("invalid timezone: %s", offset)
	}

	sign := 1
	if matches[1] == "-" {
		sign = -1
	}

	hours, _ := strconv.Atoi(matches[2])
	minutes, _ := strconv.Atoi(matches[3])
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("invalid offset: %s", offset)
	}

	return time.FixedZone(offset, sign*(hours*3600+minutes*60)), nil
}

var weekdays = map[string]time.Weekday{
	"sunday":  time.Sunday,
	"sun":     time.Sunday,
	"domingo": time.Sunday,
	"monday":  time.Monday,
	"mon":     time.Monday,
	"segunda": time.Monday,
}

// ParseWeekday parses a week start. Only Sunday and Monday are accepted;
// empty means Sunday.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return time.Sunday, nil
	}
	if wd, ok := weekdays[s]; ok {
		return wd, nil
	}
	return time.Sunday, fmt.Errorf("unsupported week start: %s", s)
}
