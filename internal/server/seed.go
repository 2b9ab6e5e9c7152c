package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/landmark-survey/fieldview/internal/survey"
)

const demoJobSlug = "demo"

// SeedDemo creates the demo job with the seeded demo points if no jobs
// exist. Idempotent: does nothing once any job exists.
func SeedDemo(ctx context.Context, logger *slog.Logger, admin AdminStore, jobs *Registry, day time.Time) error {
	existing, err := admin.ListJobs(ctx)
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	_, err = admin.CreateJob(ctx, Job{
		Slug:        demoJobSlug,
		Name:        "Demo Site Survey",
		Description: "GNSS control, a total station traverse and a stakeout across two days.",
	})
	if err != nil && !errors.Is(err, ErrConflict) {
		return fmt.Errorf("creating demo job: %w", err)
	}

	store, err := jobs.Get(ctx, demoJobSlug)
	if err != nil {
		return err
	}
	added, err := store.Append(ctx, survey.Demo(defaultDemoSeed, day))
	if err != nil {
		return fmt.Errorf("seeding demo points: %w", err)
	}

	logger.Info("demo job created and seeded", "job", demoJobSlug, "points", len(added))
	return nil
}
