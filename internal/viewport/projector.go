package viewport

import (
	"math"
	"slices"

	"github.com/landmark-survey/fieldview/internal/survey"
)

// ViewState is the presentation layer's interactive state. It is plain data
// so it can round-trip through URLs and JSON.
type ViewState struct {
	SelectedID string   `json:"selectedId,omitempty"`
	Zoom       float64  `json:"zoom"`
	PanX       float64  `json:"panX"`
	PanY       float64  `json:"panY"`
	Labels     []string `json:"labels,omitempty"`
}

// scale returns the zoom factor, treating non-positive values as 1.
func (v ViewState) scale() float64 {
	if v.Zoom <= 0 || math.IsNaN(v.Zoom) || math.IsInf(v.Zoom, 0) {
		return 1
	}
	return v.Zoom
}

func (v ViewState) showLabel(id string) bool {
	return id == v.SelectedID || slices.Contains(v.Labels, id)
}

type Projector struct {
	bounds Bounds
	size   Size
}

func New(bounds Bounds, size Size) Projector {
	return Projector{bounds: bounds, size: size}
}

// For builds a projector fitted to the mappable points.
func For(points []survey.Point, size Size) Projector {
	return New(BoundsOf(points), size)
}

func (p Projector) Bounds() Bounds { return p.bounds }
func (p Projector) Size() Size     { return p.size }

// Project maps world coordinates to untransformed viewport pixels. Northing
// grows upward in the world and downward on screen, so Y is inverted.
func (p Projector) Project(northing, easting float64) (x, y float64) {
	x = (easting - p.bounds.MinE) / p.bounds.rangeE() * p.size.Width
	y = p.size.Height - (northing-p.bounds.MinN)/p.bounds.rangeN()*p.size.Height
	return x, y
}

// Transform applies zoom, then pan, to viewport pixels.
func (p Projector) Transform(x, y float64, view ViewState) (float64, float64) {
	k := view.scale()
	return x*k + view.PanX, y*k + view.PanY
}

// Unproject inverts Transform and Project, returning world coordinates for a
// screen position.
func (p Projector) Unproject(sx, sy float64, view ViewState) (northing, easting float64) {
	k := view.scale()
	x := (sx - view.PanX) / k
	y := (sy - view.PanY) / k
	if p.size.Width > 0 {
		easting = p.bounds.MinE + x/p.size.Width*p.bounds.rangeE()
	}
	if p.size.Height > 0 {
		northing = p.bounds.MinN + (p.size.Height-y)/p.size.Height*p.bounds.rangeN()
	}
	return northing, easting
}

// Placed is a point positioned on screen.
type Placed struct {
	ID        string          `json:"id"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Label     string          `json:"label,omitempty"`
	Color     string          `json:"color"`
	DataType  survey.DataType `json:"dataType"`
	Selected  bool            `json:"selected,omitempty"`
	ShowLabel bool            `json:"showLabel,omitempty"`
}

// Place projects every mappable point and applies the view transform.
// Unmappable points are skipped.
func (p Projector) Place(points []survey.Point, view ViewState) []Placed {
	out := make([]Placed, 0, len(points))
	for _, pt := range points {
		if !pt.Mappable() {
			continue
		}
		x, y := p.Project(*pt.Northing, *pt.Easting)
		x, y = p.Transform(x, y, view)
		out = append(out, Placed{
			ID:        pt.ID,
			X:         x,
			Y:         y,
			Label:     pt.Label(),
			Color:     pt.DataType.Color(),
			DataType:  pt.DataType,
			Selected:  pt.ID != "" && pt.ID == view.SelectedID,
			ShowLabel: pt.ID != "" && view.showLabel(pt.ID),
		})
	}
	return out
}

// Nearest returns the placed point closest to (sx, sy) within radius pixels.
func Nearest(placed []Placed, sx, sy, radius float64) (Placed, bool) {
	best, bestD := Placed{}, math.Inf(1)
	for _, pl := range placed {
		d := math.Hypot(pl.X-sx, pl.Y-sy)
		if d <= radius && d < bestD {
			best, bestD = pl, d
		}
	}
	return best, !math.IsInf(bestD, 1)
}
