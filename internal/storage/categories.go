package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moneta/internal/core"
)

// CreateCategory inserts a category for the user. Returns ErrConflict when
// the user already has a category with the same name.
func (r *Repository) CreateCategory(ctx context.Context, userID int64, name string, budgetCents *int64) (core.Category, error) {
	now := time.Now().UTC()

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (user_id, name, budget_cents, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		userID, name, nullInt64(budgetCents), formatTime(now),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("create category %q: %w", name, ErrConflict)
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	return core.Category{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Budget:    budgetMoney(budgetCents),
		CreatedAt: now,
	}, nil
}

func (r *Repository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, budget_cents, created_at
		 FROM categories WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// GetCategory fetches a category owned by the user. A category belonging to
// another user is indistinguishable from a missing one: both are ErrNotFound.
func (r *Repository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, budget_cents, created_at
		 FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, fmt.Errorf("get category %d: %w", id, ErrNotFound)
		}
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, userID, id int64, name string, budgetCents *int64) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = $1, budget_cents = $2 WHERE id = $3 AND user_id = $4`,
		name, nullInt64(budgetCents), id, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("update category %d: %w", id, ErrConflict)
		}
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Category{}, fmt.Errorf("update category rows affected: %w", err)
	}
	if n == 0 {
		return core.Category{}, fmt.Errorf("update category %d: %w", id, ErrNotFound)
	}
	return r.GetCategory(ctx, userID, id)
}

// DeleteCategory removes the category; the schema nulls category_id on
// dependent transactions (ON DELETE SET NULL).
func (r *Repository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete category %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var c core.Category
	var budget sql.NullInt64
	var createdAt string
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &budget, &createdAt); err != nil {
		return core.Category{}, err
	}
	if budget.Valid {
		c.Budget = &core.Money{Cents: budget.Int64}
	}
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func budgetMoney(v *int64) *core.Money {
	if v == nil {
		return nil
	}
	return &core.Money{Cents: *v}
}
