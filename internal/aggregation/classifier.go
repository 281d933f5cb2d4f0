package aggregation

import (
	"strings"

	"github.com/smartbackpack/loadreport/internal/models"
)

// Label fragments matched case-insensitively against a reading's side label.
// English and Portuguese spellings are both in use by deployed sensors.
var (
	bothFragments  = []string{"both", "amb", "cent"}
	leftFragments  = []string{"left", "esquer"}
	rightFragments = []string{"right", "direit"}
)

// Classify maps a raw side label to its canonical side.
// The "both" fragments are checked first, so "esquerda e ambos" is SideBoth.
func Classify(label string) models.Side {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return models.SideOther
	}

	switch {
	case containsAny(l, bothFragments):
		return models.SideBoth
	case containsAny(l, leftFragments):
		return models.SideLeft
	case containsAny(l, rightFragments):
		return models.SideRight
	default:
		return models.SideOther
	}
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
