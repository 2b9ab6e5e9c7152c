package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sqliteTime = "2006-01-02T15:04:05.000Z"

type SQLAdminStore struct {
	db *sql.DB
}

// NewSQLAdminStore expects db to be migrated already.
func NewSQLAdminStore(db *sql.DB) *SQLAdminStore {
	return &SQLAdminStore{db: db}
}

// EnsureAdmin creates the admin account if no admin with that email exists.
// An existing account keeps its password.
func (s *SQLAdminStore) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return errors.New("admin email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO admins (id, email, password_hash) VALUES (?, ?, ?)
		ON CONFLICT(email) DO NOTHING
	`, uuid.NewString(), email, string(hash))
	if err != nil {
		return fmt.Errorf("inserting admin: %w", err)
	}
	return nil
}

func (s *SQLAdminStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM admins WHERE email = ?`, normalizeEmail(email),
	).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return id, hash, err
}

func (s *SQLAdminStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	sessionID := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_sessions (id, admin_id) VALUES (?, ?)`, sessionID, adminID,
	)
	if err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}
	return sessionID, nil
}

func (s *SQLAdminStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *SQLAdminStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}

func (s *SQLAdminStore) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, name, description, created_at FROM jobs ORDER BY created_at, slug`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *SQLAdminStore) CreateJob(ctx context.Context, job Job) (Job, error) {
	job.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (slug, name, description, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(slug) DO NOTHING
	`, job.Slug, job.Name, job.Description, job.CreatedAt.Format(sqliteTime))
	if err != nil {
		return Job{}, fmt.Errorf("inserting job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Job{}, ErrConflict
	}
	return job, nil
}

func (s *SQLAdminStore) JobBySlug(ctx context.Context, slug string) (Job, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx,
		`SELECT slug, name, description, created_at FROM jobs WHERE slug = ?`, slug,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return j, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var j Job
	var created string
	if err := row.Scan(&j.Slug, &j.Name, &j.Description, &created); err != nil {
		return Job{}, err
	}
	t, err := time.Parse(sqliteTime, created)
	if err != nil {
		return Job{}, fmt.Errorf("parsing job created_at %q: %w", created, err)
	}
	j.CreatedAt = t
	return j, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

var _ AdminStore = (*SQLAdminStore)(nil)
