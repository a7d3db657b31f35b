package category

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
)

// Delete soft-deletes one category of the caller.
type Delete struct {
	repo adapter.CategoryRepository
}

func NewDelete(repo adapter.CategoryRepository) *Delete {
	return &Delete{repo: repo}
}

func (uc *Delete) Execute(ctx context.Context, owner entity.Owner, id uuid.UUID) error {
	if _, err := owned(ctx, uc.repo, owner, id); err != nil {
		return err
	}
	if _, err := uc.repo.Delete(ctx, owner, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// BulkDelete soft-deletes several categories in one statement. Either every
// id names a live category of the caller or nothing is deleted.
type BulkDelete struct {
	repo adapter.CategoryRepository
}

func NewBulkDelete(repo adapter.CategoryRepository) *BulkDelete {
	return &BulkDelete{repo: repo}
}

// Execute returns how many categories were deleted.
func (uc *BulkDelete) Execute(ctx context.Context, owner entity.Owner, ids []uuid.UUID) (int64, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, domainerror.New(domainerror.CodeNoCategoriesSelected, "select at least one category", nil)
	}

	n, err := uc.repo.CountOwned(ctx, owner, ids)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	if n != int64(len(ids)) {
		return 0, domainerror.New(domainerror.CodeCategoryForbidden,
			"some categories were not found or belong to another owner", nil)
	}

	deleted, err := uc.repo.Delete(ctx, owner, ids...)
	if err != nil {
		return 0, fmt.Errorf("delete categories: %w", err)
	}
	slog.Info("Categories deleted", "owner_id", owner.ID, "count", deleted)
	return deleted, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
