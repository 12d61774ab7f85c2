package services

import (
	"context"
	"fmt"

	"tracker/internal/core"
	"tracker/internal/storage"
)

// CategoryService owns the global defaults and per-user custom categories.
type CategoryService struct {
	storage *storage.SQLiteRepository
}

func NewCategoryService(storage *storage.SQLiteRepository) *CategoryService {
	return &CategoryService{storage: storage}
}

// EnsureDefaults makes sure the global seed set exists. Migrations seed it on
// a fresh database; this covers stores created before the seed migration and
// is idempotent either way.
func (s *CategoryService) EnsureDefaults(ctx context.Context) error {
	if err := s.storage.SeedDefaultCategories(ctx, core.DefaultCategories); err != nil {
		return fmt.Errorf("ensure default categories: %w", err)
	}
	return nil
}

// Add inserts a user category. The name is kept exactly as given; uniqueness
// is exact-match on (name, user). Returns core.ErrCategoryExists on a
// duplicate.
func (s *CategoryService) Add(ctx context.Context, name string, userID int64) error {
	if name == "" {
		return core.ErrEmptyCategory
	}
	if err := s.storage.CreateCategory(ctx, name, userID); err != nil {
		return fmt.Errorf("add category %q: %w", name, err)
	}
	return nil
}

// List returns the union of global and user categories, alphabetical, with
// name duplicates collapsed.
func (s *CategoryService) List(ctx context.Context, userID int64) ([]string, error) {
	names, err := s.storage.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return names, nil
}
