package models

import "time"

// Side is the canonical laterality of a reading
type Side int

const (
	SideOther Side = iota
	SideLeft
	SideRight
	SideBoth
)

// String returns the lowercase name used in JSON payloads and logs
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideBoth:
		return "both"
	default:
		return "other"
	}
}

// MarshalText renders the side by name
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Reading is one raw weight observation reported by a backpack sensor.
// Readings are immutable once created.
type Reading struct {
	Backpack  string    `json:"backpack,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	SideLabel string    `json:"side"`
	Weight    float64   `json:"weight"`
}
