package server

import (
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/swaggest/swgui/v5emb"

	"github.com/landmark-survey/fieldview/internal/handler/health"
)

const (
	importRateLimit  = 20
	importRateWindow = time.Minute
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps, m *metrics) {
	admin, broker := deps.Admin, deps.Broker

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Fieldview API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks).Routes())
	r.Handle("/metrics", m.handler())

	r.Post("/api/admin/login", handleAdminLogin(logger, admin))
	r.Post("/api/admin/logout", handleAdminLogout(admin))
	r.Get("/api/admin/me", handleAdminMe(admin))

	r.Get("/api/jobs", handleListJobs(logger, admin, deps.Jobs))
	r.With(adminAuthMiddleware(admin)).Post("/api/jobs", handleCreateJob(logger, admin, deps.Jobs))

	r.Route("/api/jobs/{job}", func(r chi.Router) {
		r.Use(jobMiddleware(logger, admin, deps.Jobs))

		r.Get("/points", handleListPoints())
		r.Get("/sessions", handleSessions(deps.Settings))
		r.Get("/timeline", handleTimeline(deps.Settings))
		r.Get("/map", handleMap(deps.Settings))
		r.Get("/export/{format}", handleExport(logger, deps.Cache, m))
		r.Get("/events", handleEvents(broker, m))

		r.Group(func(r chi.Router) {
			r.Use(adminAuthMiddleware(admin))
			r.Post("/points", handleCapture(logger, broker, m))
			r.Post("/demo", handleDemo(logger, broker, m))
			r.Get("/capture", handleCaptureSocket(logger, broker, m, captureOriginPatterns(deps.CORSOrigins)))
			r.With(httprate.LimitByIP(importRateLimit, importRateWindow)).
				Post("/import", handleImport(logger, broker, m))
		})
	})

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
