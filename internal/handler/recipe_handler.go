package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rezeptapp/internal/repository"
	"rezeptapp/internal/service"
)

// RecipeHandler serves the published recipe catalog.
type RecipeHandler struct {
	recipes service.RecipeService
}

// NewRecipeHandler creates a recipe handler.
func NewRecipeHandler(recipes service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// RecipeRequest is the full set of editable recipe fields.
type RecipeRequest struct {
	Title        string    `json:"title" validate:"required,max=255"`
	Description  string    `json:"description"`
	Ingredients  TextBlock `json:"ingredients"`
	Instructions TextBlock `json:"instructions"`
	ImageURL     *string   `json:"imageUrl"`
	Category     string    `json:"category" validate:"max=100"`
}

func (r RecipeRequest) input() service.RecipeInput {
	return service.RecipeInput{
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  string(r.Ingredients),
		Instructions: string(r.Instructions),
		ImageURL:     r.ImageURL,
		Category:     r.Category,
	}
}

// List godoc
// @Summary List recipes
// @Description Newest first. q matches title, description and ingredients; category "All" disables the filter.
// @Tags recipes
// @Produce json
// @Param q query string false "Search text"
// @Param category query string false "Category name"
// @Success 200 {array} model.Recipe
// @Router /recipes [get]
func (h *RecipeHandler) List(c echo.Context) error {
	recipes, err := h.recipes.List(c.Request().Context(), repository.RecipeFilter{
		Query:    c.QueryParam("q"),
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, recipes)
}

// Get godoc
// @Summary Get recipe by id
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} model.Recipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id} [get]
func (h *RecipeHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	recipe, err := h.recipes.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// Steps godoc
// @Summary Cooking mode
// @Description Ingredients and instructions split into display lines.
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} service.CookingSteps
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id}/steps [get]
func (h *RecipeHandler) Steps(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	steps, err := h.recipes.Steps(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, steps)
}

// Create godoc
// @Summary Create recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Param request body RecipeRequest true "Recipe"
// @Success 201 {object} model.Recipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /recipes [post]
func (h *RecipeHandler) Create(c echo.Context) error {
	var req RecipeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	recipe, err := h.recipes.Create(c.Request().Context(), req.input())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, recipe)
}

// Update godoc
// @Summary Replace recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param request body RecipeRequest true "Recipe"
// @Success 200 {object} model.Recipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id} [put]
func (h *RecipeHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req RecipeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	recipe, err := h.recipes.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, recipe)
}

// Delete godoc
// @Summary Delete recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} OKResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /recipes/{id} [delete]
func (h *RecipeHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.recipes.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, OKResponse{OK: true})
}
