package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moneta/internal/core"
)

// CreateUser inserts a new user. Returns ErrConflict when the email is taken.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string) (core.User, error) {
	now := time.Now().UTC()

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES ($1, $2, $3) RETURNING id`,
		email, passwordHash, formatTime(now),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("create user %q: %w", email, ErrConflict)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	return core.User{ID: id, Email: email, PasswordHash: passwordHash, CreatedAt: now}, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.getUser(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	return r.getUser(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (r *Repository) getUser(ctx context.Context, query string, arg any) (core.User, error) {
	var u core.User
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, fmt.Errorf("get user: %w", ErrNotFound)
		}
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

// DeleteUser removes a user; categories and transactions cascade.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete user %d: %w", id, ErrNotFound)
	}
	return nil
}
