package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
)

type CreateInput struct {
	Owner entity.Owner
	Name  string
	Color string
	Icon  string
	Type  entity.CategoryType
}

// Create adds a category. Color and icon default when empty.
type Create struct {
	repo  adapter.CategoryRepository
	clock adapter.Clock
}

func NewCreate(repo adapter.CategoryRepository, clock adapter.Clock) *Create {
	return &Create{repo: repo, clock: clock}
}

func (uc *Create) Execute(ctx context.Context, in CreateInput) (*entity.Category, error) {
	name := normalize(in.Name)
	if err := checkName(name); err != nil {
		return nil, err
	}
	if err := checkColor(in.Color); err != nil {
		return nil, err
	}
	if err := checkIcon(in.Icon); err != nil {
		return nil, err
	}
	if !in.Type.Valid() {
		return nil, domainerror.New(domainerror.CodeInvalidCategoryType, "category type must be 'expense' or 'income'", nil)
	}
	if err := checkOwner(in.Owner); err != nil {
		return nil, err
	}
	if err := nameTaken(ctx, uc.repo, in.Owner, name, uuid.Nil); err != nil {
		return nil, err
	}

	c := entity.NewCategory(name, in.Color, in.Icon, in.Owner, in.Type, uc.clock.Now())
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}
