package ingest

import (
	"fmt"
	"strings"

	"github.com/smartbackpack/loadreport/internal/utils"
)

// Subject returns the queue subject readings of a backpack are published on
func Subject(backpack string) string {
	return utils.ReadingSubjectPrefix + "." + backpack
}

// BackpackFromSubject extracts the backpack code following the reading
// prefix. Returns "" when the subject carries no code, as on brokers that
// only keep the prefix.
func BackpackFromSubject(subject string) string {
	rest, ok := strings.CutPrefix(subject, utils.ReadingSubjectPrefix+".")
	if !ok {
		return ""
	}
	return rest
}

// ValidateBackpackCode rejects codes that cannot form a single subject token
func ValidateBackpackCode(code string) error {
	if code == "" {
		return fmt.Errorf("backpack code is required")
	}
	if len(code) > 64 {
		return fmt.Errorf("backpack code exceeds 64 characters")
	}
	if strings.ContainsAny(code, ".*> \t\r\n/") {
		return fmt.Errorf("backpack code %q contains invalid characters", code)
	}
	return nil
}
