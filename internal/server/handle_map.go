package server

import (
	"net/http"

	"github.com/landmark-survey/fieldview/internal/survey"
	"github.com/landmark-survey/fieldview/internal/viewport"
)

const defaultPickRadius = 12

// MapQuery is the query for GET /api/jobs/{job}/map. The view fields mirror
// viewport.ViewState; pickX/pickY optionally locate a screen position.
type MapQuery struct {
	Width    float64  `query:"width" validate:"gt=0,lte=20000"`
	Height   float64  `query:"height" validate:"gt=0,lte=20000"`
	Zoom     float64  `query:"zoom" validate:"gt=0,lte=1000"`
	PanX     float64  `query:"panX"`
	PanY     float64  `query:"panY"`
	Selected string   `query:"selected" validate:"max=128"`
	Labels   []string `query:"labels" validate:"max=500"`
	F        float64  `query:"f" validate:"gte=0,lte=1"`
	Radius   float64  `query:"radius" validate:"gt=0"`
	PickX    *float64 `query:"pickX"`
	PickY    *float64 `query:"pickY" validate:"required_with=PickX"`
}

// MapPick answers "what is under this screen position".
type MapPick struct {
	Northing float64          `json:"northing"`
	Easting  float64          `json:"easting"`
	Nearest  *viewport.Placed `json:"nearest,omitempty"`
}

type MapResponse struct {
	Bounds viewport.Bounds    `json:"bounds"`
	Size   viewport.Size      `json:"size"`
	View   viewport.ViewState `json:"view"`
	Points []viewport.Placed  `json:"points"`
	// Unmapped counts visible points without planar coordinates.
	Unmapped int      `json:"unmapped"`
	Pick     *MapPick `json:"pick,omitempty"`
}

func handleMap(settings Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parseQuery(r.URL)
		q := MapQuery{
			Width:    p.number("width", settings.ViewportWidth),
			Height:   p.number("height", settings.ViewportHeight),
			Zoom:     p.number("zoom", 1),
			PanX:     p.number("panX", 0),
			PanY:     p.number("panY", 0),
			Selected: p.text("selected"),
			Labels:   p.list("labels"),
			F:        p.number("f", 1),
			Radius:   p.number("radius", defaultPickRadius),
		}
		if p.text("pickX") != "" {
			x := p.number("pickX", 0)
			q.PickX = &x
		}
		if p.text("pickY") != "" {
			y := p.number("pickY", 0)
			q.PickY = &y
		}
		if err := p.done(q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		seq := jobStore(r).Snapshot()
		view := viewport.ViewState{
			SelectedID: q.Selected,
			Zoom:       q.Zoom,
			PanX:       q.PanX,
			PanY:       q.PanY,
			Labels:     q.Labels,
		}

		// Bounds cover the whole job so scrubbing the timeline does not
		// rescale the map.
		proj := viewport.For(seq.Points(), viewport.Size{Width: q.Width, Height: q.Height})
		visible := survey.Visible(seq, q.F)
		placed := proj.Place(visible, view)

		resp := MapResponse{
			Bounds:   proj.Bounds(),
			Size:     proj.Size(),
			View:     view,
			Points:   placed,
			Unmapped: len(visible) - len(placed),
		}
		if q.PickX != nil && q.PickY != nil {
			n, e := proj.Unproject(*q.PickX, *q.PickY, view)
			pick := &MapPick{Northing: n, Easting: e}
			if near, ok := viewport.Nearest(placed, *q.PickX, *q.PickY, q.Radius); ok {
				pick.Nearest = &near
			}
			resp.Pick = pick
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
