package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/landmark-survey/fieldview/internal/survey"
)

// SQLPointStore keeps one job's points as JSONB documents and serves reads
// from an in-memory snapshot. Writers persist first, then swap in the merged
// sequence, so readers never see a partial batch.
type SQLPointStore struct {
	db *sql.DB

	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[pointSnapshot]
}

// pointSnapshot pairs a sequence with its version so both swap together.
type pointSnapshot struct {
	seq     survey.Sequence
	version uint64
}

// NewSQLPointStore loads every stored point into the initial snapshot.
// db must already carry the job schema.
func NewSQLPointStore(ctx context.Context, db *sql.DB) (*SQLPointStore, error) {
	s := &SQLPointStore{db: db}

	points, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.snap.Store(&pointSnapshot{seq: survey.Index(points), version: 1})
	return s, nil
}

func (s *SQLPointStore) load(ctx context.Context) ([]survey.Point, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT json(data) FROM points ORDER BY collected_at, seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("loading points: %w", err)
	}
	defer rows.Close()

	var points []survey.Point
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var p survey.Point
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("decoding point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (s *SQLPointStore) Snapshot() survey.Sequence {
	return s.snap.Load().seq
}

func (s *SQLPointStore) Version() uint64 {
	return s.snap.Load().version
}

func (s *SQLPointStore) View() (survey.Sequence, uint64) {
	cur := s.snap.Load()
	return cur.seq, cur.version
}

func (s *SQLPointStore) Append(ctx context.Context, batch []survey.Point) ([]survey.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO points (id, collected_at, data) VALUES (?, ?, jsonb(?))
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	added := make([]survey.Point, 0, len(batch))
	for _, p := range batch {
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encoding point %s: %w", p.ID, err)
		}
		res, err := stmt.ExecContext(ctx, p.ID, p.CollectedAt.UnixMilli(), string(data))
		if err != nil {
			return nil, fmt.Errorf("inserting point %s: %w", p.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added = append(added, p)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing points: %w", err)
	}

	if len(added) > 0 {
		cur := s.snap.Load()
		s.snap.Store(&pointSnapshot{seq: cur.seq.Append(added), version: cur.version + 1})
	}
	return added, nil
}

func (s *SQLPointStore) Close() error {
	return s.db.Close()
}

var _ PointStore = (*SQLPointStore)(nil)
