// Package viewport maps planar survey coordinates into a fixed-size screen
// rectangle. Pan and zoom are applied after projection so the bounds never
// depend on the interactive transform.
package viewport

import (
	"math"

	"github.com/landmark-survey/fieldview/internal/survey"
)

const (
	padFraction = 0.12
	minPad      = 10.0
	// minRange replaces a zero-width axis before dividing.
	minRange = 1.0
)

// DefaultBounds is used when nothing is mappable.
var DefaultBounds = Bounds{MinN: 0, MaxN: 100, MinE: 0, MaxE: 100}

// Bounds is a world-space box in northing/easting.
type Bounds struct {
	MinN float64 `json:"minN"`
	MaxN float64 `json:"maxN"`
	MinE float64 `json:"minE"`
	MaxE float64 `json:"maxE"`
}

// BoundsOf returns the padded bounding box of the mappable points. Each axis
// grows by max(12% of its range, 10) on both sides.
func BoundsOf(points []survey.Point) Bounds {
	b := Bounds{
		MinN: math.Inf(1), MaxN: math.Inf(-1),
		MinE: math.Inf(1), MaxE: math.Inf(-1),
	}
	n := 0
	for _, p := range points {
		if !p.Mappable() {
			continue
		}
		n++
		b.MinN = math.Min(b.MinN, *p.Northing)
		b.MaxN = math.Max(b.MaxN, *p.Northing)
		b.MinE = math.Min(b.MinE, *p.Easting)
		b.MaxE = math.Max(b.MaxE, *p.Easting)
	}
	if n == 0 {
		return DefaultBounds
	}

	padN := math.Max(padFraction*(b.MaxN-b.MinN), minPad)
	padE := math.Max(padFraction*(b.MaxE-b.MinE), minPad)
	return Bounds{
		MinN: b.MinN - padN, MaxN: b.MaxN + padN,
		MinE: b.MinE - padE, MaxE: b.MaxE + padE,
	}
}

func (b Bounds) rangeN() float64 { return math.Max(b.MaxN-b.MinN, minRange) }
func (b Bounds) rangeE() float64 { return math.Max(b.MaxE-b.MinE, minRange) }

// Size is the viewport in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
