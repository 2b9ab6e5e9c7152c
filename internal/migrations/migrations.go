package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed admin/*.sql job/*.sql
var embedded embed.FS

// Run applies pending migrations for the shared admin database: admins,
// their sessions, and the job list.
func Run(ctx context.Context, db *sql.DB) error {
	return up(ctx, db, "admin")
}

// RunJob applies pending migrations for one job's point database.
func RunJob(ctx context.Context, db *sql.DB) error {
	return up(ctx, db, "job")
}

// up uses a goose Provider rather than the package-level API so job
// databases can be migrated concurrently.
func up(ctx context.Context, db *sql.DB, dir string) error {
	sub, err := fs.Sub(embedded, dir)
	if err != nil {
		return fmt.Errorf("opening %s migrations: %w", dir, err)
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, db, sub)
	if err != nil {
		return fmt.Errorf("creating migration provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("running %s migrations: %w", dir, err)
	}
	return nil
}
