package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
)

// UpdateInput changes the fields that are not nil.
type UpdateInput struct {
	Owner entity.Owner
	ID    uuid.UUID
	Name  *string
	Color *string
	Icon  *string
}

// Update edits a live category of the caller.
type Update struct {
	repo  adapter.CategoryRepository
	clock adapter.Clock
}

func NewUpdate(repo adapter.CategoryRepository, clock adapter.Clock) *Update {
	return &Update{repo: repo, clock: clock}
}

func (uc *Update) Execute(ctx context.Context, in UpdateInput) (*entity.Category, error) {
	c, err := owned(ctx, uc.repo, in.Owner, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := normalize(*in.Name)
		if err := checkName(name); err != nil {
			return nil, err
		}
		if name != c.Name {
			if err := nameTaken(ctx, uc.repo, c.Owner, name, c.ID); err != nil {
				return nil, err
			}
		}
		c.Name = name
	}
	if in.Color != nil {
		if err := checkColor(*in.Color); err != nil {
			return nil, err
		}
		if *in.Color != "" {
			c.Color = *in.Color
		}
	}
	if in.Icon != nil {
		if err := checkIcon(*in.Icon); err != nil {
			return nil, err
		}
		if *in.Icon != "" {
			c.Icon = *in.Icon
		}
	}

	c.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}
	return c, nil
}
