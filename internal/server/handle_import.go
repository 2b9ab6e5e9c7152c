package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/landmark-survey/fieldview/internal/interchange"
)

const maxImportBody = 32 << 20

// ImportResponse reports the parse outcome and what was added.
type ImportResponse struct {
	Format  interchange.Format `json:"format"`
	Parsed  int                `json:"parsed"`
	Dropped int                `json:"dropped"`
	CaptureResponse
}

// handleImport parses a PNEZD or CSV body. Unknown format hints fall back to
// detection rather than being rejected.
func handleImport(logger *slog.Logger, broker *Broker, m *metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hint, err := interchange.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			hint = interchange.FormatAuto
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "import file too large")
				return
			}
			writeError(w, http.StatusBadRequest, "reading request body")
			return
		}

		res, err := interchange.Import(body, hint, interchange.ImportOptions{
			Now:   time.Now().UTC(),
			NewID: uuid.NewString,
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		m.importsDropped.Add(float64(res.Dropped))

		job := jobFrom(r)
		batch := normalizeCaptured(res.Points, adminFrom(r).Email, time.Now().UTC())
		added, err := appendPoints(r.Context(), job.Slug, jobStore(r), batch, "import", broker, m)
		if err != nil {
			logger.Error("importing points", "job", job.Slug, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		logger.Info("points imported",
			"job", job.Slug,
			"format", res.Format,
			"parsed", len(res.Points),
			"dropped", res.Dropped,
			"added", added.Added,
		)
		writeJSON(w, http.StatusOK, ImportResponse{
			Format:          res.Format,
			Parsed:          len(res.Points),
			Dropped:         res.Dropped,
			CaptureResponse: added,
		})
	}
}
