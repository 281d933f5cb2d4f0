package aggregation

import (
	"math"
	"sort"
	"time"

	"github.com/smartbackpack/loadreport/internal/models"
)

// Bucket groups the readings whose timestamps map to the same key
type Bucket struct {
	Key      string
	Readings []models.Reading
}

// BucketLoad is the scalar reduction of one bucket
type BucketLoad struct {
	Key      string    `json:"key"`
	Start    time.Time `json:"start"`
	LeftAvg  float64   `json:"left_avg"`
	RightAvg float64   `json:"right_avg"`
	Load     float64   `json:"load"`
	Count    int       `json:"count"`
}

// sidePool accumulates the weights of one side of a bucket
type sidePool struct {
	sum   float64
	count int
}

func (p *sidePool) add(w float64) {
	p.sum += w
	p.count++
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// avg returns 0 for an empty pool
func (p *sidePool) avg() float64 {
	if p.count == 0 {
		return 0
	}
	return p.sum / float64(p.count)
}

// GroupBy partitions readings by key. Readings rejected by keyFn are skipped.
func GroupBy(readings []models.Reading, keyFn KeyFunc) map[string]*Bucket {
	buckets := make(map[string]*Bucket)
	for _, r := range readings {
		key, ok := keyFn(r.Timestamp)
		if !ok {
			continue
		}
		b, exists := buckets[key]
		if !exists {
			b = &Bucket{Key: key}
			buckets[key] = b
		}
		b.Readings = append(b.Readings, r)
	}
	return buckets
}

// Reduce computes the load of a bucket. A SideBoth reading is added once to
// each side pool; SideOther readings are ignored. A non-finite side average
// or load becomes 0.
func (b *Bucket) Reduce() BucketLoad {
	var left, right sidePool
	for _, r := range b.Readings {
		switch Classify(r.SideLabel) {
		case models.SideLeft:
			left.add(r.Weight)
		case models.SideRight:
			right.add(r.Weight)
		case models.SideBoth:
			left.add(r.Weight)
			right.add(r.Weight)
		}
	}

	leftAvg, rightAvg := finiteOrZero(left.avg()), finiteOrZero(right.avg())
	load := finiteOrZero(leftAvg + rightAvg)

	return BucketLoad{
		Key:      b.Key,
		LeftAvg:  leftAvg,
		RightAvg: rightAvg,
		Load:     load,
		Count:    len(b.Readings),
	}
}

// Aggregate groups readings into buckets of granularity g evaluated in loc and
// reduces each bucket. The map holds one entry per observed key.
func Aggregate(readings []models.Reading, g Granularity, loc *time.Location) map[string]BucketLoad {
	if loc == nil {
		loc = time.UTC
	}
	buckets := GroupBy(readings, g.KeyFunc(loc))
	loads := make(map[string]BucketLoad, len(buckets))
	for key, b := range buckets {
		bl := b.Reduce()
		if start, err := time.ParseInLocation(g.KeyLayout(), key, loc); err == nil {
			bl.Start = start
		}
		loads[key] = bl
	}
	return loads
}

// Sorted returns the loads ordered by key, which is chronological order
func Sorted(loads map[string]BucketLoad) []BucketLoad {
	out := make([]BucketLoad, 0, len(loads))
	for _, bl := range loads {
		out = append(out, bl)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
