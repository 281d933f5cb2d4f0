package storage

import (
	"testing"
	"time"

	"github.com/smartbackpack/loadreport/internal/models"
)

var sliceBase = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func newEntry(offset time.Duration, side string, weight float64) *entry {
	return &entry{reading: models.Reading{
		Backpack:  "BP1",
		Timestamp: sliceBase.Add(offset),
		SideLabel: side,
		Weight:    weight,
	}}
}

func timestamps(entries []*entry) []time.Duration {
	out := make([]time.Duration, len(entries))
	for i, e := range entries {
		out[i] = e.reading.Timestamp.Sub(sliceBase)
	}
	return out
}

func TestOrderedSlice_AddKeepsOrder(t *testing.T) {
	os := NewOrderedSlice(4)
	for _, off := range []time.Duration{3 * time.Second, 1 * time.Second, 5 * time.Second, 2 * time.Second} {
		os.Add(newEntry(off, "left", 1))
	}

	got := timestamps(os.entries)
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 5 * time.Second}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	if !os.MinTime().Equal(sliceBase.Add(time.Second)) || !os.MaxTime().Equal(sliceBase.Add(5*time.Second)) {
		t.Errorf("unexpected bounds %v..%v", os.MinTime(), os.MaxTime())
	}
}

func TestOrderedSlice_SameTimestampDifferentSides(t *testing.T) {
	os := NewOrderedSlice(4)
	if os.Add(newEntry(0, "left", 1)) {
		t.Error("first add must not report a replacement")
	}
	if os.Add(newEntry(0, "right", 2)) {
		t.Error("different side at the same time must be kept")
	}
	if os.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", os.Len())
	}
	if os.entries[0].reading.SideLabel != "left" || os.entries[1].reading.SideLabel != "right" {
		t.Error("ties must keep arrival order")
	}
}

func TestOrderedSlice_DuplicateReplaces(t *testing.T) {
	os := NewOrderedSlice(4)
	os.Add(newEntry(0, "left", 1))
	os.Add(newEntry(time.Second, "left", 1))

	if !os.Add(newEntry(0, "left", 9)) {
		t.Fatal("expected replacement of identical timestamp and side")
	}
	if os.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", os.Len())
	}
	if os.entries[0].reading.Weight != 9 {
		t.Errorf("expected last write to win, got %v", os.entries[0].reading.Weight)
	}
}

func TestOrderedSlice_Query(t *testing.T) {
	os := NewOrderedSlice(8)
	for i := 0; i < 5; i++ {
		os.Add(newEntry(time.Duration(i)*time.Minute, "left", float64(i)))
	}

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"half open", sliceBase.Add(time.Minute), sliceBase.Add(3 * time.Minute), 2},
		{"open end", sliceBase.Add(2 * time.Minute), time.Time{}, 3},
		{"everything", time.Time{}, time.Time{}, 5},
		{"before data", sliceBase.Add(-time.Hour), sliceBase, 0},
		{"after data", sliceBase.Add(time.Hour), time.Time{}, 0},
		{"inverted", sliceBase.Add(3 * time.Minute), sliceBase.Add(time.Minute), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(os.Query(tt.start, tt.end)); got != tt.want {
				t.Errorf("expected %d entries, got %d", tt.want, got)
			}
		})
	}
}

func TestOrderedSlice_QueryEmpty(t *testing.T) {
	if got := NewOrderedSlice(0).Query(time.Time{}, time.Time{}); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestOrderedSlice_RemoveBefore(t *testing.T) {
	os := NewOrderedSlice(8)
	for i := 0; i < 5; i++ {
		os.Add(newEntry(time.Duration(i)*time.Minute, "left", 1))
	}

	if n := os.RemoveBefore(sliceBase.Add(2 * time.Minute)); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if !os.MinTime().Equal(sliceBase.Add(2 * time.Minute)) {
		t.Errorf("min time not rebuilt, got %v", os.MinTime())
	}
	if n := os.RemoveBefore(sliceBase); n != 0 {
		t.Errorf("expected nothing removed, got %d", n)
	}
}

func TestOrderedSlice_RemoveOldest(t *testing.T) {
	os := NewOrderedSlice(4)
	os.Add(newEntry(0, "left", 1))
	os.Add(newEntry(time.Minute, "left", 1))

	if n := os.RemoveOldest(5); n != 2 {
		t.Errorf("expected removal capped at 2, got %d", n)
	}
	if os.Len() != 0 || !os.MinTime().IsZero() || !os.MaxTime().IsZero() {
		t.Error("expected empty slice with zero bounds")
	}
	if n := os.RemoveOldest(1); n != 0 {
		t.Errorf("expected 0 from empty slice, got %d", n)
	}
}

func TestOrderedSlice_Overlaps(t *testing.T) {
	os := NewOrderedSlice(4)
	if os.Overlaps(time.Time{}, time.Time{}) {
		t.Error("empty slice overlaps nothing")
	}

	os.Add(newEntry(time.Hour, "left", 1))
	os.Add(newEntry(2*time.Hour, "left", 1))

	if !os.Overlaps(sliceBase, time.Time{}) {
		t.Error("open range should overlap")
	}
	if os.Overlaps(sliceBase, sliceBase.Add(time.Hour)) {
		t.Error("range ending at min time is exclusive")
	}
	if os.Overlaps(sliceBase.Add(3*time.Hour), time.Time{}) {
		t.Error("range after max time should not overlap")
	}
}
