// Package persistence implements the repositories on top of gorm. Every
// soft-deletable table is reached through a softdelete.Store.
package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
	"github.com/finance-tracker/platform/internal/integration/persistence/model"
	"github.com/finance-tracker/platform/internal/integration/persistence/softdelete"
)

type userRepository struct {
	db    *gorm.DB
	users *softdelete.Store[model.UserModel]
}

// NewUserRepository returns the gorm-backed adapter.UserRepository.
func NewUserRepository(db *gorm.DB, clock adapter.Clock, opts ...softdelete.Option) adapter.UserRepository {
	return &userRepository{
		db:    db,
		users: softdelete.NewStore[model.UserModel](db, clock, opts...),
	}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(model.UserFromEntity(user)).Error
}

func (r *userRepository) Save(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(model.UserFromEntity(user)).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return userOrNotFound(r.users.FindActive(ctx, softdelete.ByID(id)))
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return userOrNotFound(r.users.FindActive(ctx, softdelete.Where("email = ?", email)))
}

func (r *userRepository) FindAnyByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return userOrNotFound(r.users.FindAny(ctx, softdelete.ByID(id)))
}

func (r *userRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.users.All(ctx).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *userRepository) Close(ctx context.Context, id uuid.UUID) error {
	return r.users.DeleteByID(ctx, id)
}

func userOrNotFound(m *model.UserModel, err error) (*entity.User, error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domainerror.ErrUserNotFound
	case err != nil:
		return nil, err
	}
	return m.ToEntity(), nil
}
