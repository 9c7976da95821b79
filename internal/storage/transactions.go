package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"moneta/internal/core"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// TransactionFilter narrows ListTransactions results. Zero values mean
// "no filter" for the respective field.
type TransactionFilter struct {
	Search     string // case-insensitive substring of description
	Type       core.TransactionType
	CategoryID *int64
	From       core.Date // inclusive
	To         core.Date // inclusive
	Limit      int
	Offset     int
}

const transactionColumns = `t.id, t.user_id, t.category_id, c.name, t.date, t.description, t.amount_cents, t.type, t.created_at`

// CreateTransaction inserts a transaction and returns it with the category
// name resolved.
func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO transactions (user_id, category_id, date, description, amount_cents, type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		t.UserID, nullInt64(t.CategoryID), t.Date.String(), t.Description, t.Amount.Cents, string(t.Type), formatTime(now),
	).Scan(&id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	return r.GetTransaction(ctx, t.UserID, id)
}

// GetTransaction fetches a transaction owned by the user; foreign or missing
// records are both ErrNotFound.
func (r *Repository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.id = $1 AND t.user_id = $2`, id, userID)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, ErrNotFound)
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET category_id = $1, date = $2, description = $3, amount_cents = $4, type = $5
		 WHERE id = $6 AND user_id = $7`,
		nullInt64(t.CategoryID), t.Date.String(), t.Description, t.Amount.Cents, string(t.Type), t.ID, t.UserID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction rows affected: %w", err)
	}
	if n == 0 {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", t.ID, ErrNotFound)
	}
	return r.GetTransaction(ctx, t.UserID, t.ID)
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete transaction %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListTransactions returns the user's transactions matching the filter,
// newest first.
func (r *Repository) ListTransactions(ctx context.Context, userID int64, f TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = $1`
	args := []any{userID}

	next := func() string {
		return "$" + strconv.Itoa(len(args)+1)
	}

	if f.Search != "" {
		query += " AND LOWER(t.description) LIKE LOWER(" + next() + ")"
		args = append(args, "%"+f.Search+"%")
	}
	if f.Type != "" {
		query += " AND t.type = " + next()
		args = append(args, string(f.Type))
	}
	if f.CategoryID != nil {
		query += " AND t.category_id = " + next()
		args = append(args, *f.CategoryID)
	}
	if !f.From.IsZero() {
		query += " AND t.date >= " + next()
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		query += " AND t.date <= " + next()
		args = append(args, f.To.String())
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	query += " ORDER BY t.date DESC, t.id DESC LIMIT " + next()
	args = append(args, limit)
	query += " OFFSET " + next()
	args = append(args, offset)

	return r.queryTransactions(ctx, query, args...)
}

// ListAllTransactions returns every transaction of the user in stable
// date-then-id order, for CSV export.
func (r *Repository) ListAllTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return r.queryTransactions(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions t
		 LEFT JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = $1
		 ORDER BY t.date, t.id`, userID)
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return txs, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var categoryID sql.NullInt64
	var categoryName sql.NullString
	var date, createdAt, txType string

	if err := row.Scan(&t.ID, &t.UserID, &categoryID, &categoryName, &date,
		&t.Description, &t.Amount.Cents, &txType, &createdAt); err != nil {
		return core.Transaction{}, err
	}

	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	t.CategoryName = categoryName.String
	t.Type = core.TransactionType(txType)
	t.CreatedAt = parseTime(createdAt)

	d, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	t.Date = d

	return t, nil
}
