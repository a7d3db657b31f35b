// Package category holds the category use cases. Deleting a category
// soft-deletes it: the row stays and default listings skip it.
package category

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/entity"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
)

const (
	MaxNameLength = 50
	MaxIconLength = 50
)

var hexColor = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

func checkName(name string) error {
	if name == "" {
		return domainerror.New(domainerror.CodeMissingCategoryFields, "category name is required", nil)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return domainerror.New(domainerror.CodeCategoryNameTooLong,
			fmt.Sprintf("category name must not exceed %d characters", MaxNameLength), nil)
	}
	return nil
}

func checkColor(color string) error {
	if color != "" && !hexColor.MatchString(color) {
		return domainerror.New(domainerror.CodeInvalidColor, "color must be a hex value like #RRGGBB", nil)
	}
	return nil
}

func checkIcon(icon string) error {
	if utf8.RuneCountInString(icon) > MaxIconLength {
		return domainerror.New(domainerror.CodeMissingCategoryFields,
			fmt.Sprintf("icon must not exceed %d characters", MaxIconLength), nil)
	}
	return nil
}

func checkOwner(owner entity.Owner) error {
	if !owner.Type.Valid() || owner.ID == uuid.Nil {
		return domainerror.New(domainerror.CodeInvalidOwnerType, "owner type must be 'user' or 'group'", nil)
	}
	return nil
}

func nameTaken(ctx context.Context, repo adapter.CategoryRepository, owner entity.Owner, name string, except uuid.UUID) error {
	taken, err := repo.NameTaken(ctx, owner, name, except)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return domainerror.New(domainerror.CodeCategoryNameExists, "a category with this name already exists", nil)
	}
	return nil
}

// owned loads a live category and checks it belongs to owner. Deleted
// categories are reported as missing.
func owned(ctx context.Context, repo adapter.CategoryRepository, owner entity.Owner, id uuid.UUID) (*entity.Category, error) {
	c, err := repo.FindAnyByID(ctx, id)
	if errors.Is(err, domainerror.ErrCategoryNotFound) {
		return nil, domainerror.New(domainerror.CodeCategoryNotFound, "category not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if c.IsDeleted() {
		return nil, domainerror.New(domainerror.CodeCategoryNotFound, "category not found", nil)
	}
	if !c.OwnedBy(owner) {
		return nil, domainerror.New(domainerror.CodeCategoryForbidden, "category belongs to another owner", nil)
	}
	return c, nil
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}
