package aggregation

import (
	"testing"

	"github.com/smartbackpack/loadreport/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		label    string
		expected models.Side
	}{
		{"Left", models.SideLeft},
		{"left strap", models.SideLeft},
		{"Esquerda", models.SideLeft},
		{"ESQUERDO", models.SideLeft},
		{"right", models.SideRight},
		{"Direita", models.SideRight},
		{"lado direito", models.SideRight},
		{"both", models.SideBoth},
		{"Ambos", models.SideBoth},
		{"centro", models.SideBoth},
		{"back", models.SideOther},
		{"", models.SideOther},
		{"   ", models.SideOther},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := Classify(tt.label); got != tt.expected {
				t.Errorf("Classify(%q) = %v, want %v", tt.label, got, tt.expected)
			}
		})
	}
}

// A label carrying a laterality word and a "both" word resolves to SideBoth.
func TestClassify_BothTakesPrecedence(t *testing.T) {
	labels := []string{
		"esquerda e ambos",
		"ambos (direita)",
		"left+both",
		"both right",
	}

	for _, label := range labels {
		if got := Classify(label); got != models.SideBoth {
			t.Errorf("Classify(%q) = %v, want both", label, got)
		}
	}
}

func TestClassify_Pure(t *testing.T) {
	for i := 0; i < 3; i++ {
		if Classify("Direita") != models.SideRight {
			t.Fatal("classification must not depend on call history")
		}
	}
}

func TestSideString(t *testing.T) {
	tests := map[models.Side]string{
		models.SideLeft:  "left",
		models.SideRight: "right",
		models.SideBoth:  "both",
		models.SideOther: "other",
	}
	for side, want := range tests {
		if side.String() != want {
			t.Errorf("expected %q, got %q", want, side.String())
		}
	}
}
