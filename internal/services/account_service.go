// Package services orchestrates business operations across storage, auth and
// the event bus.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moneta/internal/auth"
	"moneta/internal/core"
	"moneta/internal/storage"
)

// ErrInvalidCredentials covers both unknown emails and wrong passwords so the
// two cases are indistinguishable to a caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// defaultCategories are created for every new account.
var defaultCategories = []string{"General", "Food", "Transport"}

type AccountService struct {
	storage *storage.Repository
	auth    *auth.Manager
}

func NewAccountService(storage *storage.Repository, auth *auth.Manager) *AccountService {
	return &AccountService{storage: storage, auth: auth}
}

// Register creates a user, seeds the default categories and issues a token.
func (s *AccountService) Register(ctx context.Context, email, password string) (core.User, string, time.Time, error) {
	if err := core.ValidateEmail(email); err != nil {
		return core.User{}, "", time.Time{}, err
	}
	if err := core.ValidatePassword(password); err != nil {
		return core.User{}, "", time.Time{}, err
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return core.User{}, "", time.Time{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, email, hash)
	if err != nil {
		return core.User{}, "", time.Time{}, fmt.Errorf("create user: %w", err)
	}

	// Seeding is best effort, a failed seed must not lose the account.
	for _, name := range defaultCategories {
		if _, err := s.storage.CreateCategory(ctx, user.ID, name, nil); err != nil {
			slog.ErrorContext(ctx, "failed to seed category",
				"user_id", user.ID,
				"category", name,
				"error", err)
		}
	}

	token, expiresAt, err := s.auth.IssueToken(user.ID)
	if err != nil {
		return core.User{}, "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}

	slog.InfoContext(ctx, "registered user", "user_id", user.ID)

	return user, token, expiresAt, nil
}

// Login verifies the credentials and issues a fresh token.
func (s *AccountService) Login(ctx context.Context, email, password string) (core.User, string, time.Time, error) {
	user, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, "", time.Time{}, ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, "", time.Time{}, fmt.Errorf("get user: %w", err)
	}

	if !s.auth.VerifyPassword(password, user.PasswordHash) {
		return core.User{}, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.auth.IssueToken(user.ID)
	if err != nil {
		return core.User{}, "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}

	return user, token, expiresAt, nil
}

// GetUser returns the account behind an authenticated request.
func (s *AccountService) GetUser(ctx context.Context, userID int64) (core.User, error) {
	return s.storage.GetUserByID(ctx, userID)
}

// DeleteAccount removes the user and, through foreign keys, everything they
// own.
func (s *AccountService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.storage.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	slog.InfoContext(ctx, "deleted account", "user_id", userID)
	return nil
}
