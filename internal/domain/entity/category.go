package entity

import (
	"time"

	"github.com/google/uuid"
)

// OwnerType tells whether a category belongs to a user or a group.
type OwnerType string

const (
	OwnerTypeUser  OwnerType = "user"
	OwnerTypeGroup OwnerType = "group"
)

// Valid reports whether t is a known owner type.
func (t OwnerType) Valid() bool {
	return t == OwnerTypeUser || t == OwnerTypeGroup
}

// CategoryType separates spending from earnings.
type CategoryType string

const (
	CategoryTypeExpense CategoryType = "expense"
	CategoryTypeIncome  CategoryType = "income"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeExpense || t == CategoryTypeIncome
}

const (
	DefaultCategoryColor = "#6366F1"
	DefaultCategoryIcon  = "tag"
)

// Owner identifies who a category belongs to.
type Owner struct {
	Type OwnerType
	ID   uuid.UUID
}

// UserOwner is the owner value for a single user.
func UserOwner(id uuid.UUID) Owner {
	return Owner{Type: OwnerTypeUser, ID: id}
}

// Category labels transactions. Deleted categories keep their row and stop
// showing up in the default listings.
type Category struct {
	ID        uuid.UUID
	Name      string
	Color     string
	Icon      string
	Owner     Owner
	Type      CategoryType
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// NewCategory creates a category at now, filling in the default color and icon.
func NewCategory(name, color, icon string, owner Owner, categoryType CategoryType, now time.Time) *Category {
	if color == "" {
		color = DefaultCategoryColor
	}
	if icon == "" {
		icon = DefaultCategoryIcon
	}
	return &Category{
		ID:        uuid.New(),
		Name:      name,
		Color:     color,
		Icon:      icon,
		Owner:     owner,
		Type:      categoryType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// OwnedBy reports whether the category belongs to owner.
func (c *Category) OwnedBy(owner Owner) bool {
	return c.Owner == owner
}

// IsDeleted reports whether the category has been soft-deleted.
func (c *Category) IsDeleted() bool {
	return c.DeletedAt != nil
}
