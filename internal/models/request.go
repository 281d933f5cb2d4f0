package models

// WriteReadingRequest is one reading as sent by a sensor gateway, over HTTP
// or the queue. Timestamp and Weight are left untyped because sensors report
// them as numbers (epoch, kilograms) or as strings.
type WriteReadingRequest struct {
	Backpack  string      `json:"backpack,omitempty"`
	Timestamp interface{} `json:"timestamp"`
	Side      string      `json:"side"`
	Weight    interface{} `json:"weight"`
}

// WriteReadingsRequest wraps a batch of readings
type WriteReadingsRequest struct {
	Readings []WriteReadingRequest `json:"readings"`
}
