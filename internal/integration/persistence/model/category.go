package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/domain/entity"
	"github.com/finance-tracker/platform/internal/integration/persistence/softdelete"
)

// CategoryModel maps the categories table.
type CategoryModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(50);not null"`
	Color     string    `gorm:"type:varchar(7);not null"`
	Icon      string    `gorm:"type:varchar(50);not null"`
	OwnerType string    `gorm:"type:varchar(10);not null;index:idx_categories_owner"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index:idx_categories_owner"`
	Type      string    `gorm:"type:varchar(10);not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	softdelete.Model
}

func (CategoryModel) TableName() string {
	return "categories"
}

func (m *CategoryModel) ToEntity() *entity.Category {
	return &entity.Category{
		ID:        m.ID,
		Name:      m.Name,
		Color:     m.Color,
		Icon:      m.Icon,
		Owner:     entity.Owner{Type: entity.OwnerType(m.OwnerType), ID: m.OwnerID},
		Type:      entity.CategoryType(m.Type),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		DeletedAt: m.DeletedTime(),
	}
}

func CategoryFromEntity(c *entity.Category) *CategoryModel {
	return &CategoryModel{
		ID:        c.ID,
		Name:      c.Name,
		Color:     c.Color,
		Icon:      c.Icon,
		OwnerType: string(c.Owner.Type),
		OwnerID:   c.Owner.ID,
		Type:      string(c.Type),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Model:     softdelete.At(c.DeletedAt),
	}
}
