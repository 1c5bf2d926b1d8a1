package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"rezeptapp/internal/service"
)

// CategoryHandler manages recipe categories.
type CategoryHandler struct {
	categories service.CategoryService
}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler(categories service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CategoryRequest creates a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// SuccessResponse acknowledges a deletion.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// List godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {array} model.Category
// @Router /categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	categories, err := h.categories.List(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, categories)
}

// Create godoc
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} model.Category
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	category, err := h.categories.Create(c.Request().Context(), req.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, category)
}

// Delete godoc
// @Summary Delete category
// @Tags categories
// @Produce json
// @Param id query int true "Category ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /categories [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.QueryParam("id"), 10, 64)
	if err != nil || id == 0 {
		return badRequest("category id is required")
	}
	if err := h.categories.Delete(c.Request().Context(), uint(id)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
