package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/landmark-survey/fieldview/internal/config"
	"github.com/landmark-survey/fieldview/internal/database"
	"github.com/landmark-survey/fieldview/internal/exportcache"
	"github.com/landmark-survey/fieldview/internal/handler/health"
	"github.com/landmark-survey/fieldview/internal/migrations"
	"github.com/landmark-survey/fieldview/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	if err := os.MkdirAll(cfg.DBDir, 0o755); err != nil {
		return fmt.Errorf("creating db dir: %w", err)
	}
	adminPath := filepath.Join(cfg.DBDir, "admin.db")
	db, err := database.Open(ctx, adminPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", adminPath)

	admin := server.NewSQLAdminStore(db)
	if err := admin.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("ensuring admin: %w", err)
	}

	jobs := server.NewRegistry(cfg.DBDir)
	defer jobs.Close()

	checks := map[string]health.Checker{
		"sqlite": dbChecker{db},
		"jobs":   health.CheckFunc(jobs.Ping),
	}

	// --- Redis ---
	var cache server.ExportCache
	if cfg.RedisURL != "" {
		rdb, err := exportcache.Open(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()

		c := exportcache.New(rdb, cfg.ExportCacheTTL)
		cache = c
		checks["redis"] = health.CheckFunc(c.Check)
		logger.Info("export cache enabled", "ttl", cfg.ExportCacheTTL)
	}

	if cfg.SeedDemo {
		if err := server.SeedDemo(ctx, logger, admin, jobs, time.Now().UTC()); err != nil {
			return fmt.Errorf("seeding demo job: %w", err)
		}
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Admin:  admin,
		Jobs:   jobs,
		Broker: server.NewBroker(),
		Cache:  cache,
		Checks: checks,
		Settings: server.Settings{
			SessionGap:       cfg.SessionGap,
			HistogramBuckets: cfg.HistogramBuckets,
			ViewportWidth:    cfg.ViewportWidth,
			ViewportHeight:   cfg.ViewportHeight,
		},
		SPADir:      cfg.SPADir,
		CORSOrigins: cfg.CORSOrigins,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }
