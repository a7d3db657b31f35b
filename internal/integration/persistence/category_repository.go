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

type categoryRepository struct {
	db         *gorm.DB
	categories *softdelete.Store[model.CategoryModel]
}

// NewCategoryRepository returns the gorm-backed adapter.CategoryRepository.
func NewCategoryRepository(db *gorm.DB, clock adapter.Clock, opts ...softdelete.Option) adapter.CategoryRepository {
	return &categoryRepository{
		db:         db,
		categories: softdelete.NewStore[model.CategoryModel](db, clock, opts...),
	}
}

func ownedBy(owner entity.Owner) softdelete.Scope {
	return softdelete.Where("owner_type = ? AND owner_id = ?", string(owner.Type), owner.ID)
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Create(model.CategoryFromEntity(category)).Error
}

func (r *categoryRepository) Save(ctx context.Context, category *entity.Category) error {
	return r.db.WithContext(ctx).Save(model.CategoryFromEntity(category)).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	return categoryOrNotFound(r.categories.FindActive(ctx, softdelete.ByID(id)))
}

func (r *categoryRepository) FindAnyByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	return categoryOrNotFound(r.categories.FindAny(ctx, softdelete.ByID(id)))
}

func (r *categoryRepository) List(ctx context.Context, query adapter.CategoryQuery) ([]*entity.Category, error) {
	scopes := []softdelete.Scope{
		ownedBy(query.Owner),
		func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") },
	}
	if query.Type != nil {
		scopes = append(scopes, softdelete.Where("type = ?", string(*query.Type)))
	}

	read := r.categories.ListActive
	if query.IncludeDeleted {
		read = r.categories.ListAll
	}
	rows, err := read(ctx, scopes...)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Category, len(rows))
	for i := range rows {
		out[i] = rows[i].ToEntity()
	}
	return out, nil
}

func (r *categoryRepository) NameTaken(ctx context.Context, owner entity.Owner, name string, except uuid.UUID) (bool, error) {
	var n int64
	err := r.categories.Active(ctx).
		Scopes(ownedBy(owner), softdelete.Where("name = ? AND id <> ?", name, except)).
		Count(&n).Error
	return n > 0, err
}

func (r *categoryRepository) CountOwned(ctx context.Context, owner entity.Owner, ids []uuid.UUID) (int64, error) {
	var n int64
	err := r.categories.Active(ctx).Scopes(ownedBy(owner), softdelete.ByIDs(ids)).Count(&n).Error
	return n, err
}

func (r *categoryRepository) Delete(ctx context.Context, owner entity.Owner, ids ...uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return r.categories.Delete(ctx, ownedBy(owner), softdelete.ByIDs(ids))
}

func categoryOrNotFound(m *model.CategoryModel, err error) (*entity.Category, error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domainerror.ErrCategoryNotFound
	case err != nil:
		return nil, err
	}
	return m.ToEntity(), nil
}
