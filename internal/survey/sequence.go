package survey

import (
	"slices"
	"sort"
	"time"
)

// Sequence is an immutable, ascending-by-CollectedAt view of a point
// collection. Equal timestamps keep their input order.
type Sequence struct {
	points []Point
}

// TimeRange is the closed interval covered by a sequence.
type TimeRange struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}

// Span is Max - Min.
func (r TimeRange) Span() time.Duration {
	return r.Max.Sub(r.Min)
}

// emptyRange keeps downstream divisions defined for empty collections.
var emptyRange = TimeRange{Min: time.UnixMilli(0).UTC(), Max: time.UnixMilli(1).UTC()}

// Index sorts a copy of points by capture time. The input is not modified.
func Index(points []Point) Sequence {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b Point) int {
		return a.CollectedAt.Compare(b.CollectedAt)
	})
	return Sequence{points: sorted}
}

func (s Sequence) Len() int { return len(s.points) }

// Points returns a copy of the sorted points.
func (s Sequence) Points() []Point {
	return slices.Clone(s.points)
}

// At returns the i-th point in time order.
func (s Sequence) At(i int) Point {
	return s.points[i]
}

func (s Sequence) TimeRange() TimeRange {
	if len(s.points) == 0 {
		return emptyRange
	}
	return TimeRange{
		Min: s.points[0].CollectedAt,
		Max: s.points[len(s.points)-1].CollectedAt,
	}
}

// Between returns the points captured in [from, to], in time order.
func (s Sequence) Between(from, to time.Time) []Point {
	if to.Before(from) {
		return nil
	}
	lo := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].CollectedAt.Before(from)
	})
	hi := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].CollectedAt.After(to)
	})
	return slices.Clone(s.points[lo:hi])
}
