package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"moneta/internal/core"
	"moneta/internal/events"
	"moneta/internal/storage"
)

// EventPublisher publishes transaction change notifications. A nil publisher
// disables eventing, useful for tests and single-binary deployments.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, ev *events.TransactionEvent) error
}

type TransactionService struct {
	storage   *storage.Repository
	publisher EventPublisher
}

func NewTransactionService(storage *storage.Repository, publisher EventPublisher) *TransactionService {
	return &TransactionService{storage: storage, publisher: publisher}
}

// Create validates and stores a transaction, then publishes a created event.
// A referenced category must belong to the same user.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.Description = strings.TrimSpace(tx.Description)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, tx); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.storage.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.publish(ctx, created.ID, created.UserID, events.ActionCreated)

	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id int64) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, userID, id)
}

func (s *TransactionService) List(ctx context.Context, userID int64, filter storage.TransactionFilter) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, userID, filter)
}

func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.Description = strings.TrimSpace(tx.Description)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.checkCategory(ctx, tx); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.storage.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publish(ctx, updated.ID, updated.UserID, events.ActionUpdated)

	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}

	s.publish(ctx, id, userID, events.ActionDeleted)

	return nil
}

// checkCategory confirms a referenced category exists and is owned by the
// transaction's user. Ownership failures surface as not found.
func (s *TransactionService) checkCategory(ctx context.Context, tx core.Transaction) error {
	if tx.CategoryID == nil {
		return nil
	}
	if _, err := s.storage.GetCategory(ctx, tx.UserID, *tx.CategoryID); err != nil {
		return fmt.Errorf("category %d: %w", *tx.CategoryID, err)
	}
	return nil
}

// publish sends an event without failing the request. The record is already
// committed, a broker outage only delays the backup.
func (s *TransactionService) publish(ctx context.Context, id, userID int64, action events.Action) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, events.NewTransactionEvent(id, userID, action)); err != nil {
		slog.ErrorContext(ctx, "failed to publish transaction event",
			"id", id,
			"action", action,
			"error", err)
	}
}
