package server

import (
	"net/http"
	"time"

	"github.com/landmark-survey/fieldview/internal/survey"
)

// TimelineQuery is the query for GET /api/jobs/{job}/timeline.
type TimelineQuery struct {
	F       float64 `query:"f" validate:"gte=0,lte=1"`
	Buckets int     `query:"buckets" validate:"gte=1,lte=1000"`
}

type TimelineBucket struct {
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

type TimelineResponse struct {
	Range   survey.TimeRange `json:"range"`
	Cutoff  time.Time        `json:"cutoff"`
	Visible int              `json:"visible"`
	Total   int              `json:"total"`
	Peak    int              `json:"peak"`
	Buckets []TimelineBucket `json:"buckets"`
}

func handleTimeline(settings Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parseQuery(r.URL)
		q := TimelineQuery{
			F:       p.number("f", 1),
			Buckets: p.integer("buckets", settings.HistogramBuckets),
		}
		if err := p.done(q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		seq := jobStore(r).Snapshot()
		density := survey.Histogram(seq, q.Buckets)

		buckets := make([]TimelineBucket, len(density.Counts))
		for i, c := range density.Counts {
			buckets[i] = TimelineBucket{Start: density.BucketStart(i), Count: c}
		}
		writeJSON(w, http.StatusOK, TimelineResponse{
			Range:   density.Range,
			Cutoff:  seq.Cutoff(q.F),
			Visible: len(survey.Visible(seq, q.F)),
			Total:   seq.Len(),
			Peak:    density.Peak,
			Buckets: buckets,
		})
	}
}
