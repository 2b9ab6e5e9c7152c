package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/landmark-survey/fieldview/internal/survey"
)

const maxCaptureBatch = 10000

// PointsQuery filters GET /api/jobs/{job}/points.
type PointsQuery struct {
	// F is the timeline fraction; points after the cutoff are hidden.
	F float64 `query:"f" validate:"gte=0,lte=1"`
}

// PointsResponse lists a job's points in capture order.
type PointsResponse struct {
	Version uint64         `json:"version"`
	Total   int            `json:"total"`
	Cutoff  time.Time      `json:"cutoff"`
	Points  []survey.Point `json:"points"`
}

// CaptureRequest is the body for POST /api/jobs/{job}/points.
type CaptureRequest struct {
	Points []survey.Point `json:"points" validate:"required,min=1,max=10000"`
}

// CaptureResponse reports what a capture, demo seed or import added.
type CaptureResponse struct {
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
	Total   int    `json:"total"`
	Version uint64 `json:"version"`
}

func handleListPoints() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parseQuery(r.URL)
		q := PointsQuery{F: p.number("f", 1)}
		if err := p.done(q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		seq, version := jobStore(r).View()
		writeJSON(w, http.StatusOK, PointsResponse{
			Version: version,
			Total:   seq.Len(),
			Cutoff:  seq.Cutoff(q.F),
			Points:  survey.Visible(seq, q.F),
		})
	}
}

func handleCapture(logger *slog.Logger, broker *Broker, m *metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CaptureRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		batch := normalizeCaptured(req.Points, adminFrom(r).Email, time.Now().UTC())
		resp, err := appendPoints(r.Context(), jobFrom(r).Slug, jobStore(r), batch, "capture", broker, m)
		if err != nil {
			logger.Error("capturing points", "job", jobFrom(r).Slug, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// normalizeCaptured fills what a field device may leave out and coerces
// enum fields into their closed sets.
func normalizeCaptured(points []survey.Point, collector string, now time.Time) []survey.Point {
	out := make([]survey.Point, len(points))
	for i, p := range points {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CollectedAt.IsZero() {
			p.CollectedAt = now
		}
		if !p.DataType.Valid() {
			p.DataType = survey.ParseDataType(string(p.DataType))
		}
		if p.Quality.RTKStatus != "" && !p.Quality.RTKStatus.Valid() {
			p.Quality.RTKStatus = survey.ParseRTKStatus(string(p.Quality.RTKStatus))
		}
		if p.CollectedBy == "" {
			p.CollectedBy = collector
		}
		out[i] = p
	}
	return out
}

// appendPoints persists a batch, then tells live viewers about the points
// that were actually new.
func appendPoints(ctx context.Context, job string, store PointStore, batch []survey.Point, source string, broker *Broker, m *metrics) (CaptureResponse, error) {
	added, err := store.Append(ctx, batch)
	if err != nil {
		return CaptureResponse{}, err
	}
	seq, version := store.View()
	resp := CaptureResponse{
		Added:   len(added),
		Skipped: len(batch) - len(added),
		Total:   seq.Len(),
		Version: version,
	}
	if len(added) == 0 {
		return resp, nil
	}

	m.pointsAdded.WithLabelValues(source).Add(float64(len(added)))
	broker.Publish(job, PointsEvent{
		Type:    "points",
		Source:  source,
		Points:  added,
		Total:   resp.Total,
		Version: resp.Version,
	})
	return resp, nil
}
