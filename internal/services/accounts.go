// Package services wires the storage layer, the budget policy, and the
// optional event stream into the operations the presentation layer calls.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tracker/internal/auth"
	"tracker/internal/core"
	"tracker/internal/storage"
)

// AccountService owns registration, login, and the per-user budget threshold.
type AccountService struct {
	storage *storage.SQLiteRepository
}

func NewAccountService(storage *storage.SQLiteRepository) *AccountService {
	return &AccountService{storage: storage}
}

// Register creates a user with a hashed secret and a zero budget. Returns
// core.ErrUsernameTaken when the name is already registered.
func (s *AccountService) Register(ctx context.Context, username, secret string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, core.ErrEmptyUsername
	}
	if secret == "" {
		return 0, core.ErrEmptySecret
	}

	id, err := s.storage.CreateUser(ctx, username, auth.HashSecret(secret))
	if err != nil {
		return 0, fmt.Errorf("register %q: %w", username, err)
	}
	return id, nil
}

// Authenticate returns the user record when the username exists and the
// secret's digest equals the stored one; core.ErrInvalidCredentials
// otherwise. A missing user and a wrong secret are indistinguishable to the
// caller.
func (s *AccountService) Authenticate(ctx context.Context, username, secret string) (*core.User, error) {
	u, err := s.storage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate %q: %w", username, err)
	}
	if !auth.Matches(u.SecretHash, secret) {
		return nil, core.ErrInvalidCredentials
	}
	return u, nil
}

// SetBudget overwrites the stored monthly threshold. Zero means "no limit".
func (s *AccountService) SetBudget(ctx context.Context, userID, cents int64) error {
	if cents < 0 {
		return core.ErrInvalidAmount
	}
	if err := s.storage.SetBudget(ctx, userID, cents); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	return nil
}

// GetBudget reads the threshold; a missing user reads as zero.
func (s *AccountService) GetBudget(ctx context.Context, userID int64) (core.Money, error) {
	cents, err := s.storage.GetBudget(ctx, userID)
	if err != nil {
		return core.Money{}, fmt.Errorf("get budget: %w", err)
	}
	return core.Money{Cents: cents}, nil
}
