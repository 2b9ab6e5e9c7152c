package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/landmark-survey/fieldview/internal/database"
	"github.com/landmark-survey/fieldview/internal/migrations"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func assertTables(t *testing.T, db *sql.DB, want ...string) {
	t.Helper()
	for _, table := range want {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		name   string
		run    func(context.Context, *sql.DB) error
		tables []string
	}{
		{"admin", migrations.Run, []string{"admins", "admin_sessions", "jobs"}},
		{"job", migrations.RunJob, []string{"points"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openMemory(t)
			if err := tt.run(context.Background(), db); err != nil {
				t.Fatalf("running migrations: %v", err)
			}
			assertTables(t, db, tt.tables...)
		})
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
}

func TestPointsIDUnique(t *testing.T) {
	db := openMemory(t)
	if err := migrations.RunJob(context.Background(), db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	insert := `INSERT INTO points (id, collected_at, data) VALUES (?, ?, jsonb(?))`
	if _, err := db.Exec(insert, "a", 1, `{}`); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.Exec(insert, "a", 2, `{}`); err == nil {
		t.Error("duplicate id accepted")
	}
}
