// Package storage persists users, categories and transactions in a
// relational database. SQLite (file-backed) is the default; PostgreSQL is
// selectable via configuration. All queries use $N placeholders and
// RETURNING clauses, which both engines accept.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type Repository struct {
	db      *sql.DB
	backend string
}

// Open connects to the configured backend, runs migrations and returns a
// ready repository. For SQLite, dsn is the database file path.
func Open(backend, dsn string) (*Repository, error) {
	var db *sql.DB
	var err error

	switch backend {
	case BackendSQLite:
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		// Foreign keys are off by default in SQLite; the schema relies on
		// ON DELETE CASCADE / SET NULL.
		dsn = "file:" + dsn + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
		db, err = sql.Open("sqlite", dsn)
	case BackendPostgres:
		db, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", backend, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(backend, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, backend: backend}, nil
}

// Ping verifies connectivity, used by readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func driverName(backend string) string {
	if backend == BackendPostgres {
		return "pgx"
	}
	return "sqlite"
}

// isUniqueViolation detects unique-constraint failures from either driver.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// timestamps are stored as RFC 3339 TEXT so both engines scan identically.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
