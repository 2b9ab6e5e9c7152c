package server

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/landmark-survey/fieldview/internal/database"
	"github.com/landmark-survey/fieldview/internal/migrations"
)

// Registry opens one point database per job under dir, lazily, and keeps
// the stores open for the life of the process.
type Registry struct {
	dir    string
	mu     sync.RWMutex
	stores map[string]*SQLPointStore
}

func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:    dir,
		stores: make(map[string]*SQLPointStore),
	}
}

// Get returns the store for slug, opening (and migrating) it on first use.
// Callers check that the job exists first.
func (r *Registry) Get(ctx context.Context, slug string) (*SQLPointStore, error) {
	r.mu.RLock()
	s, ok := r.stores[slug]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock.
	if s, ok := r.stores[slug]; ok {
		return s, nil
	}

	s, err := r.open(ctx, slug)
	if err != nil {
		return nil, err
	}
	r.stores[slug] = s
	return s, nil
}

func (r *Registry) open(ctx context.Context, slug string) (*SQLPointStore, error) {
	db, err := database.Open(ctx, filepath.Join(r.dir, slug+".db"))
	if err != nil {
		return nil, fmt.Errorf("opening job db %q: %w", slug, err)
	}
	if err := migrations.RunJob(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating job db %q: %w", slug, err)
	}
	store, err := NewSQLPointStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("loading job store %q: %w", slug, err)
	}
	return store, nil
}

// Ping checks every open job database, for the health endpoint.
func (r *Registry) Ping(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for slug, s := range r.stores {
		if err := s.db.PingContext(ctx); err != nil {
			return fmt.Errorf("job %q: %w", slug, err)
		}
	}
	return nil
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for slug, s := range r.stores {
		s.Close()
		delete(r.stores, slug)
	}
	return nil
}
