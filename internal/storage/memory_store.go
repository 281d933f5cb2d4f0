package storage

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/smartbackpack/loadreport/internal/logging"
	"github.com/smartbackpack/loadreport/internal/models"
)

// entry is one stored reading
type entry struct {
	reading    models.Reading
	insertedAt time.Time
}

// numShards is the number of lock shards. Writes for different backpacks
// hashing to different shards never contend.
const numShards = 64

// shard is one partition of the MemoryStore's data, with its own mutex
type shard struct {
	mu   sync.RWMutex
	data map[string]*OrderedSlice // backpack code -> readings
}

// MemoryStore is an in-memory reading store with sharded locking.
// Readings older than maxAge are dropped by a background loop, and the
// oldest readings are evicted once more than maxSize are held.
type MemoryStore struct {
	shards [numShards]shard

	maxAge  time.Duration
	maxSize int
	logger  *logging.Logger
	now     func() time.Time

	globalMu   sync.Mutex
	totalCount int64
	evicting   bool

	evictionCh   chan struct{}
	stopCh       chan struct{}
	cleanupDone  chan struct{}
	evictionDone chan struct{}
	closeOnce    sync.Once
}

// getShard returns the shard index of a backpack code using FNV-1a
func getShard(backpack string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(backpack))
	return h.Sum32() % numShards
}

// NewMemoryStore creates a store. Zero maxAge keeps readings forever; zero
// maxSize disables eviction.
func NewMemoryStore(maxAge time.Duration, maxSize int, logger *logging.Logger) *MemoryStore {
	ms := &MemoryStore{
		maxAge:       maxAge,
		maxSize:      maxSize,
		logger:       logger,
		now:          time.Now,
		evictionCh:   make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
		cleanupDone:  make(chan struct{}),
		evictionDone: make(chan struct{}),
	}

	for i := range ms.shards {
		ms.shards[i].data = make(map[string]*OrderedSlice)
	}

	go ms.cleanupLoop()
	go ms.evictionLoop()

	logger.Info("Memory store initialized",
		"max_age", maxAge,
		"max_size", maxSize,
		"num_shards", numShards)

	return ms
}

// validate normalizes r and rejects readings the pipeline cannot bucket
func validate(r *models.Reading) error {
	r.Backpack = strings.TrimSpace(r.Backpack)
	if r.Backpack == "" {
		return fmt.Errorf("%w: missing backpack code", ErrInvalidReading)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidReading)
	}
	if math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) {
		return fmt.Errorf("%w: weight must be a finite number", ErrInvalidReading)
	}
	return nil
}

// Write validates every reading first and stores them only if all are valid.
// Only the shard of each backpack is locked.
func (ms *MemoryStore) Write(ctx context.Context, readings ...models.Reading) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make([]models.Reading, len(readings))
	copy(batch, readings)
	for i := range batch {
		if err := validate(&batch[i]); err != nil {
			return fmt.Errorf("reading %d: %w", i, err)
		}
	}

	now := ms.now()
	added := int64(0)
	for _, r := range batch {
		s := &ms.shards[getShard(r.Backpack)]

		s.mu.Lock()
		slice, exists := s.data[r.Backpack]
		if !exists {
			slice = NewOrderedSlice(128)
			s.data[r.Backpack] = slice
		}
		if !slice.Add(&entry{reading: r, insertedAt: now}) {
			added++
		}
		s.mu.Unlock()
	}

	ms.globalMu.Lock()
	ms.totalCount += added
	needEviction := ms.maxSize > 0 && ms.totalCount > int64(ms.maxSize)
	ms.globalMu.Unlock()

	if needEviction {
		select {
		case ms.evictionCh <- struct{}{}:
		default:
		}
	}

	return nil
}

// Query implements ReadingSource. The result is a copy.
func (ms *MemoryStore) Query(ctx context.Context, backpack string, start, end time.Time) ([]models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &ms.shards[getShard(backpack)]
	s.mu.RLock()
	defer s.mu.RUnlock()

	slice, exists := s.data[backpack]
	if !exists || !slice.Overlaps(start, end) {
		return make([]models.Reading, 0), nil
	}

	entries := slice.Query(start, end)
	result := make([]models.Reading, len(entries))
	for i, e := range entries {
		result[i] = e.reading
	}
	return result, nil
}

// Backpacks returns the codes of all backpacks with stored readings, sorted
func (ms *MemoryStore) Backpacks() []string {
	var codes []string
	for i := range ms.shards {
		s := &ms.shards[i]
		s.mu.RLock()
		for code := range s.data {
			codes = append(codes, code)
		}
		s.mu.RUnlock()
	}
	sort.Strings(codes)
	return codes
}

// Count returns the total number of stored readings
func (ms *MemoryStore) Count() int64 {
	ms.globalMu.Lock()
	v := ms.totalCount
	ms.globalMu.Unlock()
	return v
}

// GetStats returns memory store statistics
func (ms *MemoryStore) GetStats() map[string]interface{} {
	backpacks := 0
	for i := range ms.shards {
		s := &ms.shards[i]
		s.mu.RLock()
		backpacks += len(s.data)
		s.mu.RUnlock()
	}

	return map[string]interface{}{
		"total_count":    ms.Count(),
		"backpack_count": backpacks,
		"max_age":        ms.maxAge.String(),
		"max_size":       ms.maxSize,
	}
}

// cleanupLoop periodically removes expired readings
func (ms *MemoryStore) cleanupLoop() {
	defer close(ms.cleanupDone)

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stopCh:
			ms.logger.Debug("Cleanup goroutine stopping")
			return
		case <-ticker.C:
			ms.cleanup()
		}
	}
}

// evictionLoop handles eviction triggered by Write
func (ms *MemoryStore) evictionLoop() {
	defer close(ms.evictionDone)

	for {
		select {
		case <-ms.stopCh:
			ms.logger.Debug("Eviction goroutine stopping")
			return
		case <-ms.evictionCh:
			ms.evictOldest()
		}
	}
}

// cleanup removes readings older than maxAge across all shards
func (ms *MemoryStore) cleanup() {
	if ms.maxAge == 0 {
		return
	}

	cutoff := ms.now().Add(-ms.maxAge)
	removed := int64(0)

	for i := range ms.shards {
		s := &ms.shards[i]
		s.mu.Lock()
		for code, slice := range s.data {
			removed += int64(slice.RemoveBefore(cutoff))
			if slice.Len() == 0 {
				delete(s.data, code)
			}
		}
		s.mu.Unlock()
	}

	if removed > 0 {
		ms.globalMu.Lock()
		ms.totalCount -= removed
		ms.globalMu.Unlock()

		ms.logger.Debug("Cleaned up expired readings",
			"removed_count", removed,
			"cutoff", cutoff)
	}
}

// evictOldest removes the globally oldest readings until the store is back
// to maxSize. Since every backpack slice is sorted, the oldest N readings
// overall are a prefix of each slice; only the per-slice counts are needed.
func (ms *MemoryStore) evictOldest() {
	ms.globalMu.Lock()
	if ms.evicting {
		ms.globalMu.Unlock()
		return
	}
	toRemove := ms.totalCount - int64(ms.maxSize)
	if toRemove <= 0 {
		ms.globalMu.Unlock()
		return
	}
	ms.evicting = true
	ms.globalMu.Unlock()

	defer func() {
		ms.globalMu.Lock()
		ms.evicting = false
		ms.globalMu.Unlock()
	}()

	ms.logger.Warn("Memory store size limit reached, evicting oldest readings",
		"to_remove", toRemove)

	type candidate struct {
		ts       time.Time
		shardIdx int
		backpack string
	}

	candidates := make([]candidate, 0, toRemove*2)
	for i := range ms.shards {
		s := &ms.shards[i]
		s.mu.RLock()
		for code, slice := range s.data {
			// At most toRemove entries of one slice can be among the oldest
			for j, e := range slice.entries {
				if int64(j) >= toRemove {
					break
				}
				candidates = append(candidates, candidate{e.reading.Timestamp, i, code})
			}
		}
		s.mu.RUnlock()
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ts.Before(candidates[j].ts)
	})
	if int64(len(candidates)) > toRemove {
		candidates = candidates[:toRemove]
	}

	perShard := make([]map[string]int, numShards)
	for _, c := range candidates {
		if perShard[c.shardIdx] == nil {
			perShard[c.shardIdx] = make(map[string]int)
		}
		perShard[c.shardIdx][c.backpack]++
	}

	removed := int64(0)
	for i := range ms.shards {
		if perShard[i] == nil {
			continue
		}
		s := &ms.shards[i]
		s.mu.Lock()
		for code, n := range perShard[i] {
			slice := s.data[code]
			if slice == nil {
				continue
			}
			removed += int64(slice.RemoveOldest(n))
			if slice.Len() == 0 {
				delete(s.data, code)
			}
		}
		s.mu.Unlock()
	}

	ms.globalMu.Lock()
	ms.totalCount -= removed
	ms.globalMu.Unlock()

	ms.logger.Info("Evicted oldest readings",
		"removed_count", removed)
}

// Close stops the cleanup and eviction goroutines. Safe to call twice.
func (ms *MemoryStore) Close() error {
	ms.closeOnce.Do(func() {
		close(ms.stopCh)
		<-ms.cleanupDone
		<-ms.evictionDone

		ms.logger.Info("Memory store closed",
			"final_count", ms.Count())
	})
	return nil
}

// GetMaxAge returns the retention of the store
func (ms *MemoryStore) GetMaxAge() time.Duration {
	return ms.maxAge
}
