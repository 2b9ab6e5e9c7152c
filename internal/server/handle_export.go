package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/landmark-survey/fieldview/internal/exportcache"
	"github.com/landmark-survey/fieldview/internal/interchange"
)

// ExportCache stores rendered export files. *exportcache.Cache satisfies it.
type ExportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

func handleExport(logger *slog.Logger, cache ExportCache, m *metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := interchange.ParseFormat(chi.URLParam(r, "format"))
		if err != nil || !slices.Contains(interchange.ExportFormats(), format) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", chi.URLParam(r, "format")))
			return
		}

		job := jobFrom(r)
		seq, version := jobStore(r).View()
		key := exportcache.Key(job.Slug, version, string(format))

		data, outcome, err := renderExport(r.Context(), logger, cache, key, func() ([]byte, error) {
			return interchange.Export(seq.Points(), format, interchange.Options{DocumentName: job.Name})
		})
		if errors.Is(err, interchange.ErrUnknownFormat) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			logger.Error("exporting points", "job", job.Slug, "format", format, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		m.exports.WithLabelValues(string(format), outcome).Inc()

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, job.Slug, format.Extension()))
		w.Header().Set("ETag", fmt.Sprintf(`"%s-%d-%s"`, job.Slug, version, format))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// renderExport serves from cache when it can. Cache failures are logged and
// fall through to rendering.
func renderExport(ctx context.Context, logger *slog.Logger, cache ExportCache, key string, render func() ([]byte, error)) ([]byte, string, error) {
	if cache == nil {
		data, err := render()
		return data, "disabled", err
	}

	data, ok, err := cache.Get(ctx, key)
	if err != nil {
		logger.Warn("export cache get failed", "key", key, "error", err)
	}
	if ok {
		return data, "hit", nil
	}

	data, err = render()
	if err != nil {
		return nil, "miss", err
	}
	if err := cache.Set(ctx, key, data); err != nil {
		logger.Warn("export cache set failed", "key", key, "error", err)
	}
	return data, "miss", nil
}
