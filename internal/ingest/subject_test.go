package ingest

import "testing"

func TestSubject(t *testing.T) {
	if got := Subject("BP1"); got != "readings.BP1" {
		t.Errorf("unexpected subject %q", got)
	}
}

func TestBackpackFromSubject(t *testing.T) {
	tests := map[string]string{
		"readings.BP1":     "BP1",
		"readings.BP-007":  "BP-007",
		"readings":         "",
		"other.BP1":        "",
		"readingsBP1":      "",
		"readings.BP1.raw": "BP1.raw",
	}
	for subject, want := range tests {
		if got := BackpackFromSubject(subject); got != want {
			t.Errorf("BackpackFromSubject(%q) = %q, want %q", subject, got, want)
		}
	}
}

func TestValidateBackpackCode(t *testing.T) {
	valid := []string{"BP1", "mochila-07", "A_b"}
	for _, code := range valid {
		if err := ValidateBackpackCode(code); err != nil {
			t.Errorf("ValidateBackpackCode(%q): unexpected error %v", code, err)
		}
	}

	invalid := []string{"", "BP.1", "BP*", "BP>", "BP 1", "a/b", string(make([]byte, 65))}
	for _, code := range invalid {
		if err := ValidateBackpackCode(code); err == nil {
			t.Errorf("ValidateBackpackCode(%q): expected error", code)
		}
	}
}
