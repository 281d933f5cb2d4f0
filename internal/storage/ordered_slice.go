package storage

import (
	"sort"
	"time"
)

// OrderedSlice keeps the entries of one backpack sorted by reading time.
// It is optimized for the append pattern of live sensors and for range
// queries.
//
// NOT THREAD-SAFE: synchronization is handled by the owning MemoryStore shard.
type OrderedSlice struct {
	entries []*entry
	minTime time.Time // cached earliest time, updated on Add/Remove
	maxTime time.Time // cached latest time, updated on Add/Remove
}

// NewOrderedSlice creates a new ordered slice with initial capacity
func NewOrderedSlice(capacity int) *OrderedSlice {
	return &OrderedSlice{
		entries: make([]*entry, 0, capacity),
	}
}

// Add inserts e in time order. Several readings may share a timestamp
// (left and right straps sample together); a reading with the same
// timestamp and side label as an existing one replaces it (last write wins).
// Returns true when an existing entry was replaced.
func (os *OrderedSlice) Add(e *entry) bool {
	t := e.reading.Timestamp

	if len(os.entries) == 0 {
		os.entries = append(os.entries, e)
		os.minTime = t
		os.maxTime = t
		return false
	}

	// Fast path: strictly newer than everything stored
	if t.After(os.maxTime) {
		os.entries = append(os.entries, e)
		os.maxTime = t
		return false
	}

	idx := sort.Search(len(os.entries), func(i int) bool {
		return !os.entries[i].reading.Timestamp.Before(t)
	})

	// Scan the run of equal timestamps for a duplicate
	end := idx
	for end < len(os.entries) && os.entries[end].reading.Timestamp.Equal(t) {
		if os.entries[end].reading.SideLabel == e.reading.SideLabel {
			os.entries[end] = e
			return true
		}
		end++
	}

	// Insert after the equal run to keep arrival order among ties
	os.entries = append(os.entries, nil)
	copy(os.entries[end+1:], os.entries[end:])
	os.entries[end] = e

	if t.Before(os.minTime) {
		os.minTime = t
	}
	return false
}

// Query returns the entries with time in [start, end). A zero end means no
// upper bound. The returned slice references internal data.
func (os *OrderedSlice) Query(start, end time.Time) []*entry {
	if len(os.entries) == 0 {
		return nil
	}

	startIdx := sort.Search(len(os.entries), func(i int) bool {
		return !os.entries[i].reading.Timestamp.Before(start)
	})

	endIdx := len(os.entries)
	if !end.IsZero() {
		endIdx = sort.Search(len(os.entries), func(i int) bool {
			return !os.entries[i].reading.Timestamp.Before(end)
		})
	}

	if startIdx >= endIdx {
		return nil
	}
	return os.entries[startIdx:endIdx]
}

// Len returns the number of entries
func (os *OrderedSlice) Len() int {
	return len(os.entries)
}

// RemoveBefore removes all entries older than cutoff and returns how many
// were removed
func (os *OrderedSlice) RemoveBefore(cutoff time.Time) int {
	idx := sort.Search(len(os.entries), func(i int) bool {
		return !os.entries[i].reading.Timestamp.Before(cutoff)
	})
	return os.RemoveOldest(idx)
}

// RemoveOldest removes up to n entries from the old end
func (os *OrderedSlice) RemoveOldest(n int) int {
	if n <= 0 || len(os.entries) == 0 {
		return 0
	}
	if n > len(os.entries) {
		n = len(os.entries)
	}

	// Clear references so removed entries can be collected
	for i := 0; i < n; i++ {
		os.entries[i] = nil
	}
	os.entries = os.entries[n:]
	os.rebuildTimeBounds()
	return n
}

// Overlaps returns true if this slice's time range intersects [start, end).
// A zero end means no upper bound.
func (os *OrderedSlice) Overlaps(start, end time.Time) bool {
	if len(os.entries) == 0 {
		return false
	}
	if os.maxTime.Before(start) {
		return false
	}
	return end.IsZero() || os.minTime.Before(end)
}

// MinTime returns the cached minimum time. Zero if empty.
func (os *OrderedSlice) MinTime() time.Time { return os.minTime }

// MaxTime returns the cached maximum time. Zero if empty.
func (os *OrderedSlice) MaxTime() time.Time { return os.maxTime }

func (os *OrderedSlice) rebuildTimeBounds() {
	if len(os.entries) == 0 {
		os.minTime = time.Time{}
		os.maxTime = time.Time{}
		return
	}
	os.minTime = os.entries[0].reading.Timestamp
	os.maxTime = os.entries[len(os.entries)-1].reading.Timestamp
}
