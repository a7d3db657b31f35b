package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/domain/entity"
)

// CategoryQuery narrows a category listing.
type CategoryQuery struct {
	Owner          entity.Owner
	Type           *entity.CategoryType
	IncludeDeleted bool
}

// CategoryRepository persists categories. Deleting stamps deleted_at; reads
// skip deleted rows unless the method says otherwise.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	Save(ctx context.Context, category *entity.Category) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)

	// FindAnyByID also returns deleted categories.
	FindAnyByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)

	// List returns the matching categories ordered by name.
	List(ctx context.Context, query CategoryQuery) ([]*entity.Category, error)

	// NameTaken reports whether a live category of owner other than except
	// is called name.
	NameTaken(ctx context.Context, owner entity.Owner, name string, except uuid.UUID) (bool, error)

	// CountOwned counts the live categories of owner among ids.
	CountOwned(ctx context.Context, owner entity.Owner, ids []uuid.UUID) (int64, error)

	// Delete soft-deletes the live categories of owner among ids in one
	// statement and returns how many changed.
	Delete(ctx context.Context, owner entity.Owner, ids ...uuid.UUID) (int64, error)
}
