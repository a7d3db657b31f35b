package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/application/usecase/category"
	"github.com/finance-tracker/platform/internal/domain/entity"
	domainerror "github.com/finance-tracker/platform/internal/domain/error"
	"github.com/finance-tracker/platform/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/platform/internal/integration/entrypoint/middleware"
)

// CategoryController serves the categories of the signed-in user.
type CategoryController struct {
	create     *category.Create
	list       *category.List
	update     *category.Update
	delete     *category.Delete
	bulkDelete *category.BulkDelete
}

func NewCategoryController(repo adapter.CategoryRepository, clock adapter.Clock) *CategoryController {
	return &CategoryController{
		create:     category.NewCreate(repo, clock),
		list:       category.NewList(repo),
		update:     category.NewUpdate(repo, clock),
		delete:     category.NewDelete(repo),
		bulkDelete: category.NewBulkDelete(repo),
	}
}

func owner(c *gin.Context) (entity.Owner, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		writeError(c, domainerror.New(domainerror.CodeMissingToken, "Unauthorized", nil))
		return entity.Owner{}, false
	}
	return entity.UserOwner(id), true
}

func categoryID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, domainerror.CodeMissingCategoryFields, "invalid category id")
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /categories. Query: type, include_deleted.
func (h *CategoryController) List(c *gin.Context) {
	o, ok := owner(c)
	if !ok {
		return
	}

	query := adapter.CategoryQuery{Owner: o}
	if raw := c.Query("type"); raw != "" {
		t := entity.CategoryType(raw)
		query.Type = &t
	}
	if raw := c.Query("include_deleted"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, domainerror.CodeMissingCategoryFields, "include_deleted must be a boolean")
			return
		}
		query.IncludeDeleted = include
	}

	categories, err := h.list.Execute(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryListResponse(categories))
}

// Create handles POST /categories.
func (h *CategoryController) Create(c *gin.Context) {
	o, ok := owner(c)
	if !ok {
		return
	}
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerror.CodeMissingCategoryFields, "Invalid request body")
		return
	}

	created, err := h.create.Execute(c.Request.Context(), category.CreateInput{
		Owner: o,
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
		Type:  entity.CategoryType(req.Type),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToCategoryResponse(created))
}

// Update handles PATCH /categories/:id.
func (h *CategoryController) Update(c *gin.Context) {
	o, ok := owner(c)
	if !ok {
		return
	}
	id, ok := categoryID(c)
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerror.CodeMissingCategoryFields, "Invalid request body")
		return
	}

	updated, err := h.update.Execute(c.Request.Context(), category.UpdateInput{
		Owner: o,
		ID:    id,
		Name:  req.Name,
		Color: req.Color,
		Icon:  req.Icon,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(updated))
}

// Delete handles DELETE /categories/:id.
func (h *CategoryController) Delete(c *gin.Context) {
	o, ok := owner(c)
	if !ok {
		return
	}
	id, ok := categoryID(c)
	if !ok {
		return
	}
	if err := h.delete.Execute(c.Request.Context(), o, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkDelete handles POST /categories/bulk-delete.
func (h *CategoryController) BulkDelete(c *gin.Context) {
	o, ok := owner(c)
	if !ok {
		return
	}
	var req dto.BulkDeleteCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, domainerror.CodeMissingCategoryFields, "ids must be a list of category ids")
		return
	}

	ids := make([]uuid.UUID, len(req.IDs))
	for i, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, domainerror.CodeMissingCategoryFields, "ids must be a list of category ids")
			return
		}
		ids[i] = id
	}

	n, err := h.bulkDelete.Execute(c.Request.Context(), o, ids)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BulkDeleteCategoriesResponse{DeletedCount: n})
}
