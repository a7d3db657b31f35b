package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/domain/entity"
)

// UserRepository persists accounts. Lookups only see open accounts unless
// the method says otherwise.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Save(ctx context.Context, user *entity.User) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindAnyByID also returns closed accounts.
	FindAnyByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// EmailTaken reports whether any account, closed ones included, holds email.
	EmailTaken(ctx context.Context, email string) (bool, error)

	// Close soft-deletes the account.
	Close(ctx context.Context, id uuid.UUID) error
}
