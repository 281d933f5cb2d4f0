// Package ingest turns raw reading payloads, from the queue or the HTTP write
// endpoint, into validated models.Reading values and stores them.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smartbackpack/loadreport/internal/models"
	"github.com/smartbackpack/loadreport/internal/utils"
)

// ErrInvalidPayload is returned when a payload cannot be decoded at all
var ErrInvalidPayload = errors.New("invalid reading payload")

// Rejection explains why one reading of a batch was not accepted
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Decode parses a payload holding one reading object, an array of readings
// or a {"readings": [...]} envelope. Numbers are kept as json.Number so
// epoch timestamps survive without float rounding.
func Decode(data []byte) ([]models.WriteReadingRequest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var reqs []models.WriteReadingRequest
	switch trimmed[0] {
	case '[':
		if err := dec.Decode(&reqs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if _, ok := raw["readings"]; ok {
			var envelope models.WriteReadingsRequest
			if err := dec.Decode(&envelope); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
			reqs = envelope.Readings
		} else {
			var single models.WriteReadingRequest
			if err := dec.Decode(&single); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
			}
			reqs = []models.WriteReadingRequest{single}
		}
	default:
		return nil, fmt.Errorf("%w: expected a JSON object or array", ErrInvalidPayload)
	}

	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no readings", ErrInvalidPayload)
	}
	if len(reqs) > utils.MaxReadingsPerRequest {
		return nil, fmt.Errorf("%w: %d readings exceed the limit of %d", ErrInvalidPayload, len(reqs), utils.MaxReadingsPerRequest)
	}
	return reqs, nil
}

// ToReading converts one request. backpack, when set, overrides the
// request's own code. Local timestamps are read in loc.
func ToReading(req models.WriteReadingRequest, backpack string, loc *time.Location) (models.Reading, error) {
	code := strings.TrimSpace(backpack)
	if code == "" {
		code = strings.TrimSpace(req.Backpack)
	}
	if err := ValidateBackpackCode(code); err != nil {
		return models.Reading{}, err
	}

	ts, err := parseTimestamp(req.Timestamp, loc)
	if err != nil {
		return models.Reading{}, err
	}

	weight, ok := utils.ToFloat64(req.Weight)
	if !ok {
		return models.Reading{}, fmt.Errorf("weight must be a finite number, got %v", req.Weight)
	}

	return models.Reading{
		Backpack:  code,
		Timestamp: ts,
		SideLabel: strings.TrimSpace(req.Side),
		Weight:    weight,
	}, nil
}

// Convert converts a batch, collecting a Rejection per invalid reading
func Convert(reqs []models.WriteReadingRequest, backpack string, loc *time.Location) ([]models.Reading, []Rejection) {
	readings := make([]models.Reading, 0, len(reqs))
	var rejected []Rejection

	for i, req := range reqs {
		r, err := ToReading(req, backpack, loc)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		readings = append(readings, r)
	}
	return readings, rejected
}

func parseTimestamp(v interface{}, loc *time.Location) (time.Time, error) {
	switch ts := v.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("timestamp is required")
	case string:
		return utils.ParseTimestamp(ts, loc)
	case json.Number:
		if epoch, err := ts.Int64(); err == nil {
			return utils.FromEpoch(epoch), nil
		}
		f, err := ts.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid epoch timestamp %s", ts)
		}
		return utils.FromEpoch(int64(f)), nil
	case float64:
		return utils.FromEpoch(int64(ts)), nil
	default:
		return time.Time{}, fmt.Errorf("timestamp must be a string or epoch number")
	}
}
