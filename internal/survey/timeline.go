package survey

import (
	"slices"
	"sort"
	"time"
)

// DefaultBuckets is the sparkline resolution.
const DefaultBuckets = 50

// Cutoff maps a scrubber fraction to a capture time. f is clamped to [0, 1].
func (s Sequence) Cutoff(f float64) time.Time {
	r := s.TimeRange()
	switch {
	case f <= 0:
		return r.Min
	case f >= 1:
		return r.Max
	}
	return r.Min.Add(time.Duration(f * float64(r.Span())))
}

// Visible returns every point captured at or before the cutoff for f.
func Visible(seq Sequence, f float64) []Point {
	if seq.Len() == 0 {
		return []Point{}
	}
	cutoff := seq.Cutoff(f)
	n := sort.Search(seq.Len(), func(i int) bool {
		return seq.points[i].CollectedAt.After(cutoff)
	})
	return slices.Clone(seq.points[:n])
}

// Density is a fixed-width histogram over a time range. Counts always has one
// entry per bucket, in time order.
type Density struct {
	Range  TimeRange `json:"range"`
	Counts []int     `json:"counts"`
	Peak   int       `json:"peak"`
}

// BucketStart returns the start time of bucket i.
func (d Density) BucketStart(i int) time.Time {
	if len(d.Counts) == 0 {
		return d.Range.Min
	}
	width := float64(d.Range.Span()) / float64(len(d.Counts))
	return d.Range.Min.Add(time.Duration(width * float64(i)))
}

// Histogram counts points per equal-width bucket across the sequence's time
// range. buckets < 1 falls back to DefaultBuckets.
func Histogram(seq Sequence, buckets int) Density {
	if buckets < 1 {
		buckets = DefaultBuckets
	}
	r := seq.TimeRange()
	d := Density{Range: r, Counts: make([]int, buckets)}

	span := float64(r.Span())
	for _, p := range seq.points {
		idx := 0
		if span > 0 {
			idx = int(float64(p.CollectedAt.Sub(r.Min)) / span * float64(buckets))
		}
		idx = min(max(idx, 0), buckets-1)
		d.Counts[idx]++
	}
	for _, c := range d.Counts {
		d.Peak = max(d.Peak, c)
	}
	return d
}
