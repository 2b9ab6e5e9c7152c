package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// CreateJobRequest is the request body for POST /api/jobs.
type CreateJobRequest struct {
	Slug        string `json:"slug" validate:"required,max=64,slug"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// JobSummary is one entry of GET /api/jobs.
type JobSummary struct {
	Job
	Points int `json:"points"`
}

func handleListJobs(logger *slog.Logger, admin AdminStore, jobs *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := admin.ListJobs(r.Context())
		if err != nil {
			logger.Error("listing jobs", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]JobSummary, 0, len(list))
		for _, job := range list {
			store, err := jobs.Get(r.Context(), job.Slug)
			if err != nil {
				logger.Error("opening job store", "job", job.Slug, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			out = append(out, JobSummary{Job: job, Points: store.Snapshot().Len()})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleCreateJob(logger *slog.Logger, admin AdminStore, jobs *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateJobRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Slug = strings.TrimSpace(strings.ToLower(req.Slug))
		req.Name = strings.TrimSpace(req.Name)
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		job, err := admin.CreateJob(r.Context(), Job{
			Slug:        req.Slug,
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
		})
		if errors.Is(err, ErrConflict) {
			writeError(w, http.StatusConflict, "job slug already taken")
			return
		}
		if err != nil {
			logger.Error("creating job", "job", req.Slug, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		store, err := jobs.Get(r.Context(), job.Slug)
		if err != nil {
			logger.Error("opening job store", "job", job.Slug, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		logger.Info("job created", "job", job.Slug, "by", adminFrom(r).Email)
		writeJSON(w, http.StatusCreated, JobSummary{Job: job, Points: store.Snapshot().Len()})
	}
}
