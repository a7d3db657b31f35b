package category

import (
	"context"
	"fmt"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
)

// List returns the categories of an owner ordered by name.
type List struct {
	repo adapter.CategoryRepository
}

func NewList(repo adapter.CategoryRepository) *List {
	return &List{repo: repo}
}

func (uc *List) Execute(ctx context.Context, query adapter.CategoryQuery) ([]*entity.Category, error) {
	if err := checkOwner(query.Owner); err != nil {
		return nil, err
	}
	if query.Type != nil && !query.Type.Valid() {
		return nil, domainerror.New(domainerror.CodeInvalidCategoryType, "category type must be 'expense' or 'income'", nil)
	}

	categories, err := uc.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
