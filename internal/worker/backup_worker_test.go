package worker

import (
	"context"
	"errors"
	"testing"

	"moneta/internal/core"
	"moneta/internal/events"
	"moneta/internal/storage"
)

type fakeStore struct {
	tx  core.Transaction
	err error
}

func (f *fakeStore) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	return f.tx, nil
}

type fakeAppender struct {
	rows    []core.Transaction
	actions []string
	err     error
}

func (f *fakeAppender) AppendTransaction(ctx context.Context, tx core.Transaction, action string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, tx)
	f.actions = append(f.actions, action)
	return "Transactions!A2:H2", nil
}

func TestHandleEvent(t *testing.T) {
	tx := core.Transaction{
		ID:          10,
		UserID:      3,
		Date:        core.NewDate(2025, 7, 1),
		Description: "coffee",
		Amount:      core.Money{Cents: 350},
		Type:        core.Expense,
	}

	t.Run("created event appends fetched record", func(t *testing.T) {
		appender := &fakeAppender{}
		w := NewBackupWorker(&fakeStore{tx: tx}, appender)

		if err := w.HandleEvent(context.Background(), events.NewTransactionEvent(10, 3, events.ActionCreated)); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if len(appender.rows) != 1 || appender.rows[0].Description != "coffee" {
			t.Fatalf("unexpected rows: %+v", appender.rows)
		}
		if appender.actions[0] != "created" {
			t.Fatalf("unexpected action: %s", appender.actions[0])
		}
	})

	t.Run("deleted event appends tombstone without fetching", func(t *testing.T) {
		appender := &fakeAppender{}
		store := &fakeStore{err: errors.New("should not be called")}
		w := NewBackupWorker(store, appender)

		if err := w.HandleEvent(context.Background(), events.NewTransactionEvent(10, 3, events.ActionDeleted)); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if len(appender.rows) != 1 || appender.rows[0].ID != 10 {
			t.Fatalf("unexpected rows: %+v", appender.rows)
		}
		if appender.actions[0] != "deleted" {
			t.Fatalf("unexpected action: %s", appender.actions[0])
		}
	})

	t.Run("vanished transaction is skipped", func(t *testing.T) {
		appender := &fakeAppender{}
		store := &fakeStore{err: storage.ErrNotFound}
		w := NewBackupWorker(store, appender)

		if err := w.HandleEvent(context.Background(), events.NewTransactionEvent(10, 3, events.ActionUpdated)); err != nil {
			t.Fatalf("expected nil for vanished transaction, got %v", err)
		}
		if len(appender.rows) != 0 {
			t.Fatalf("expected no rows, got %+v", appender.rows)
		}
	})

	t.Run("storage error propagates", func(t *testing.T) {
		w := NewBackupWorker(&fakeStore{err: errors.New("db down")}, &fakeAppender{})
		if err := w.HandleEvent(context.Background(), events.NewTransactionEvent(10, 3, events.ActionCreated)); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("append error propagates for requeue", func(t *testing.T) {
		w := NewBackupWorker(&fakeStore{tx: tx}, &fakeAppender{err: errors.New("quota exceeded")})
		if err := w.HandleEvent(context.Background(), events.NewTransactionEvent(10, 3, events.ActionCreated)); err == nil {
			t.Fatal("expected error")
		}
	})
}
