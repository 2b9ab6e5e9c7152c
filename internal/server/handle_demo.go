package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/landmark-survey/fieldview/internal/survey"
)

const defaultDemoSeed = 1

// DemoQuery is the query for POST /api/jobs/{job}/demo.
type DemoQuery struct {
	Seed int `query:"seed"`
	// Day is the first field day, YYYY-MM-DD. Defaults to today (UTC).
	Day string `query:"day" validate:"omitempty,datetime=2006-01-02"`
}

// handleDemo fills a job with the seeded three-session demo narrative. The
// same seed yields the same ids, so seeding twice adds nothing.
func handleDemo(logger *slog.Logger, broker *Broker, m *metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := parseQuery(r.URL)
		q := DemoQuery{
			Seed: p.integer("seed", defaultDemoSeed),
			Day:  p.text("day"),
		}
		if err := p.done(q); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		day := time.Now().UTC()
		if q.Day != "" {
			day, _ = time.Parse(time.DateOnly, q.Day)
		}

		job := jobFrom(r)
		resp, err := appendPoints(r.Context(), job.Slug, jobStore(r), survey.Demo(int64(q.Seed), day), "demo", broker, m)
		if err != nil {
			logger.Error("seeding demo points", "job", job.Slug, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		logger.Info("demo points seeded", "job", job.Slug, "seed", q.Seed, "added", resp.Added)
		writeJSON(w, http.StatusOK, resp)
	}
}
