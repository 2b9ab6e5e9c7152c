package server

import (
	"net/http"
	"time"

	"github.com/landmark-survey/fieldview/internal/survey"
)

// SessionsQuery is the query for GET /api/jobs/{job}/sessions.
type SessionsQuery struct {
	GapMinutes float64 `query:"gapMinutes" validate:"gt=0,lte=10080"`
}

type SessionsResponse struct {
	GapMinutes float64          `json:"gapMinutes"`
	Count      int              `json:"count"`
	Markers    []survey.Marker  `json:"markers"`
	Sessions   []survey.Session `json:"sessions"`
}

func handleSessions(settings Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parseQuery(r.URL)
		q := SessionsQuery{GapMinutes: p.number("gapMinutes", settings.SessionGap.Minutes())}
		if err := p.done(q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		gap := time.Duration(q.GapMinutes * float64(time.Minute))
		seg := survey.Segment(jobStore(r).Snapshot(), gap)
		writeJSON(w, http.StatusOK, SessionsResponse{
			GapMinutes: q.GapMinutes,
			Count:      seg.Count(),
			Markers:    seg.Markers,
			Sessions:   seg.Sessions,
		})
	}
}
