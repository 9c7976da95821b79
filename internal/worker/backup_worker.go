// Package worker consumes transaction events and mirrors each change to the
// configured backup sheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"moneta/internal/backup"
	"moneta/internal/core"
	"moneta/internal/events"
	"moneta/internal/storage"
)

// TransactionGetter is the slice of the repository the worker needs.
type TransactionGetter interface {
	GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error)
}

type BackupWorker struct {
	store    TransactionGetter
	appender backup.Appender
}

func NewBackupWorker(store TransactionGetter, appender backup.Appender) *BackupWorker {
	return &BackupWorker{store: store, appender: appender}
}

// HandleEvent processes one transaction event. Created and updated events
// fetch the current record before appending; deleted events append a tombstone
// row since the record is already gone.
func (w *BackupWorker) HandleEvent(ctx context.Context, ev *events.TransactionEvent) error {
	slog.InfoContext(ctx, "processing transaction event",
		"id", ev.ID,
		"user_id", ev.UserID,
		"action", ev.Action)

	tx := core.Transaction{ID: ev.ID, UserID: ev.UserID}

	if ev.Action != events.ActionDeleted {
		var err error
		tx, err = w.store.GetTransaction(ctx, ev.UserID, ev.ID)
		if errors.Is(err, storage.ErrNotFound) {
			// Deleted between publish and consume, nothing left to back up.
			slog.WarnContext(ctx, "transaction vanished before backup", "id", ev.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get transaction %d: %w", ev.ID, err)
		}
	}

	ref, err := w.appender.AppendTransaction(ctx, tx, string(ev.Action))
	if err != nil {
		return fmt.Errorf("append transaction %d: %w", ev.ID, err)
	}

	slog.InfoContext(ctx, "backed up transaction",
		"id", ev.ID,
		"action", ev.Action,
		"row", ref)

	return nil
}
