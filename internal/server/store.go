package server

import (
	"context"
	"errors"
	"time"

	"github.com/landmark-survey/fieldview/internal/survey"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// Job is one survey project. Each job owns its own point database.
type Job struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AdminStore is the shared database: admin accounts, their sessions and the
// job list.
type AdminStore interface {
	EnsureAdmin(ctx context.Context, email, password string) error
	AdminByEmail(ctx context.Context, email string) (adminID, passwordHash string, err error)
	CreateAdminSession(ctx context.Context, adminID string) (sessionID string, err error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)

	ListJobs(ctx context.Context) ([]Job, error)
	CreateJob(ctx context.Context, job Job) (Job, error)
	JobBySlug(ctx context.Context, slug string) (Job, error)
}

// PointStore is one job's point collection.
type PointStore interface {
	// Snapshot returns the current sorted, immutable sequence.
	Snapshot() survey.Sequence
	// Version increases every time the snapshot changes.
	Version() uint64
	// View returns a snapshot together with the version it was published at.
	View() (survey.Sequence, uint64)
	// Append persists the points whose ids are new and returns them.
	Append(ctx context.Context, batch []survey.Point) ([]survey.Point, error)
}
