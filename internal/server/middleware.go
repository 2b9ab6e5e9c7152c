package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ctxKey int

const (
	ctxKeyJob ctxKey = iota
	ctxKeyStore
	ctxKeyAdmin
)

// jobMiddleware resolves {job} against the job list and opens its store.
func jobMiddleware(logger *slog.Logger, admin AdminStore, jobs *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, "job")
			job, err := admin.JobBySlug(r.Context(), slug)
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "job not found")
				return
			}
			if err != nil {
				logger.Error("looking up job", "job", slug, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			store, err := jobs.Get(r.Context(), job.Slug)
			if err != nil {
				logger.Error("opening job store", "job", slug, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyJob, job)
			ctx = context.WithValue(ctx, ctxKeyStore, PointStore(store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminAuthMiddleware(admin AdminStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := adminFromRequest(r, admin)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyAdmin, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func jobFrom(r *http.Request) Job {
	return r.Context().Value(ctxKeyJob).(Job)
}

func jobStore(r *http.Request) PointStore {
	return r.Context().Value(ctxKeyStore).(PointStore)
}

func adminFrom(r *http.Request) adminSession {
	return r.Context().Value(ctxKeyAdmin).(adminSession)
}
