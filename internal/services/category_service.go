package services

import (
	"context"
	"fmt"
	"strings"

	"moneta/internal/core"
	"moneta/internal/storage"
)

type CategoryService struct {
	storage *storage.Repository
}

func NewCategoryService(storage *storage.Repository) *CategoryService {
	return &CategoryService{storage: storage}
}

func (s *CategoryService) Create(ctx context.Context, userID int64, name string, budget *core.Money) (core.Category, error) {
	c := core.Category{UserID: userID, Name: strings.TrimSpace(name), Budget: budget}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.storage.CreateCategory(ctx, userID, c.Name, budgetCents(budget))
}

func (s *CategoryService) List(ctx context.Context, userID int64) ([]core.Category, error) {
	return s.storage.ListCategories(ctx, userID)
}

func (s *CategoryService) Get(ctx context.Context, userID, id int64) (core.Category, error) {
	return s.storage.GetCategory(ctx, userID, id)
}

func (s *CategoryService) Update(ctx context.Context, userID, id int64, name string, budget *core.Money) (core.Category, error) {
	c := core.Category{ID: id, UserID: userID, Name: strings.TrimSpace(name), Budget: budget}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.storage.UpdateCategory(ctx, userID, id, c.Name, budgetCents(budget))
}

// Delete removes a category. Transactions that referenced it are kept and
// become uncategorized.
func (s *CategoryService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteCategory(ctx, userID, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func budgetCents(budget *core.Money) *int64 {
	if budget == nil {
		return nil
	}
	return &budget.Cents
}
