package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/landmark-survey/fieldview/internal/database"
	"github.com/landmark-survey/fieldview/internal/migrations"
	"github.com/landmark-survey/fieldview/internal/survey"
)

func openJobDB(t *testing.T, path string) *SQLPointStore {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := migrations.RunJob(ctx, db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	s, err := NewSQLPointStore(ctx, db)
	if err != nil {
		db.Close()
		t.Fatalf("store: %v", err)
	}
	return s
}

func TestSQLPointStoreAppendAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "job.db")

	s := openJobDB(t, path)
	if s.Snapshot().Len() != 0 {
		t.Fatalf("new store has %d points", s.Snapshot().Len())
	}
	v0 := s.Version()

	at := testDay.Add(10 * time.Hour)
	batch := []survey.Point{
		{ID: "b", Name: "B", DataType: survey.TypePoint, Northing: survey.Float(2), Easting: survey.Float(2), CollectedAt: at.Add(time.Minute)},
		{ID: "a", Name: "A", DataType: survey.TypeGPSPosition, Northing: survey.Float(1), Easting: survey.Float(1), CollectedAt: at,
			Quality: survey.Quality{Accuracy: survey.Float(0.012), RTKStatus: survey.RTKFixed, Satellites: survey.Int(14)}},
	}
	added, err := s.Append(ctx, batch)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(added) != 2 || s.Version() != v0+1 {
		t.Fatalf("added %d, version %d", len(added), s.Version())
	}
	if got := s.Snapshot().At(0).ID; got != "a" {
		t.Errorf("first point = %q, want a", got)
	}

	added, err = s.Append(ctx, batch[:1])
	if err != nil {
		t.Fatalf("re-append: %v", err)
	}
	if len(added) != 0 || s.Version() != v0+1 {
		t.Errorf("duplicate append added %d and moved version to %d", len(added), s.Version())
	}
	s.Close()

	reopened := openJobDB(t, path)
	defer reopened.Close()
	seq := reopened.Snapshot()
	if seq.Len() != 2 {
		t.Fatalf("reloaded %d points, want 2", seq.Len())
	}
	a := seq.At(0)
	if a.ID != "a" || !a.CollectedAt.Equal(at) || a.Quality.RTKStatus != survey.RTKFixed || *a.Quality.Satellites != 14 {
		t.Errorf("reloaded point = %+v", a)
	}
}

func TestSQLPointStoreViewIsConsistent(t *testing.T) {
	ctx := context.Background()
	s := openJobDB(t, filepath.Join(t.TempDir(), "job.db"))
	defer s.Close()

	const appends = 50
	done := make(chan error, 1)
	go func() {
		at := testDay.Add(8 * time.Hour)
		for i := range appends {
			p := survey.Point{
				ID: fmt.Sprintf("p%02d", i), Name: fmt.Sprintf("P%d", i), DataType: survey.TypePoint,
				Northing: survey.Float(float64(i)), Easting: survey.Float(1), CollectedAt: at.Add(time.Duration(i) * time.Second),
			}
			if _, err := s.Append(ctx, []survey.Point{p}); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for {
		seq, version := s.View()
		// Every append adds one point and bumps the version once.
		if seq.Len() != int(version-1) {
			t.Fatalf("view has %d points at version %d", seq.Len(), version)
		}
		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("append: %v", err)
			}
			seq, version = s.View()
			if seq.Len() != appends || version != appends+1 {
				t.Errorf("final view has %d points at version %d", seq.Len(), version)
			}
			return
		default:
		}
	}
}

func TestAdminStoreJobs(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, database.Memory)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := NewSQLAdminStore(db)

	if _, err := s.JobBySlug(ctx, "none"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("JobBySlug missing: err = %v, want ErrNotFound", err)
	}
	job, err := s.CreateJob(ctx, Job{Slug: "north", Name: "North"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.CreatedAt.IsZero() {
		t.Error("created job has no timestamp")
	}
	if _, err := s.CreateJob(ctx, Job{Slug: "north", Name: "Dup"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate: err = %v, want ErrConflict", err)
	}
	got, err := s.JobBySlug(ctx, "north")
	if err != nil || got.Name != "North" {
		t.Errorf("JobBySlug = %+v, %v", got, err)
	}

	// EnsureAdmin leaves an existing password alone.
	if err := s.EnsureAdmin(ctx, "a@b.c", "first"); err != nil {
		t.Fatal(err)
	}
	if err := s.EnsureAdmin(ctx, "A@B.C", "second"); err != nil {
		t.Fatal(err)
	}
	id, hash, err := s.AdminByEmail(ctx, "a@b.c")
	if err != nil || id == "" || hash == "" {
		t.Fatalf("AdminByEmail = %q, %q, %v", id, hash, err)
	}
	sid, err := s.CreateAdminSession(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	sess, err := s.AdminFromSession(ctx, sid)
	if err != nil || sess.Email != "a@b.c" {
		t.Errorf("AdminFromSession = %+v, %v", sess, err)
	}
	if err := s.DeleteAdminSession(ctx, sid); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AdminFromSession(ctx, sid); err == nil {
		t.Error("session still valid after delete")
	}
}

func TestSeedDemo(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := SeedDemo(ctx, logger, e.admin, e.jobs, testDay); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store, err := e.jobs.Get(ctx, demoJobSlug)
	if err != nil {
		t.Fatal(err)
	}
	n := store.Snapshot().Len()
	if n == 0 {
		t.Fatal("demo job is empty")
	}

	if err := SeedDemo(ctx, logger, e.admin, e.jobs, testDay); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if got := store.Snapshot().Len(); got != n {
		t.Errorf("second seed changed point count %d -> %d", n, got)
	}
	jobs, _ := e.admin.ListJobs(ctx)
	if len(jobs) != 1 {
		t.Errorf("jobs = %d, want 1", len(jobs))
	}
}

func TestSeedDemoSkipsWhenJobsExist(t *testing.T) {
	e := newTestEnv(t, nil)
	ctx := context.Background()
	if _, err := e.admin.CreateJob(ctx, Job{Slug: "real", Name: "Real"}); err != nil {
		t.Fatal(err)
	}
	if err := SeedDemo(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), e.admin, e.jobs, testDay); err != nil {
		t.Fatal(err)
	}
	if _, err := e.admin.JobBySlug(ctx, demoJobSlug); !errors.Is(err, ErrNotFound) {
		t.Errorf("demo job created alongside existing jobs: %v", err)
	}
}

func TestBroker(t *testing.T) {
	b := NewBroker()
	a1 := b.Subscribe("a")
	a2 := b.Subscribe("a")
	other := b.Subscribe("b")
	if b.Subscribers("a") != 2 {
		t.Fatalf("subscribers = %d, want 2", b.Subscribers("a"))
	}

	b.Publish("a", PointsEvent{Type: "points", Total: 1})
	for i, ch := range []chan []byte{a1, a2} {
		select {
		case <-ch:
		default:
			t.Errorf("subscriber %d got nothing", i)
		}
	}
	select {
	case <-other:
		t.Error("event leaked to another job")
	default:
	}

	// A full subscriber is skipped, not blocked on.
	for range cap(a1) + 5 {
		b.Publish("a", PointsEvent{Type: "points"})
	}

	b.Unsubscribe("a", a1)
	b.Unsubscribe("a", a2)
	if b.Subscribers("a") != 0 {
		t.Errorf("subscribers after unsubscribe = %d", b.Subscribers("a"))
	}
}
