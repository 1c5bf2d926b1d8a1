package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"rezeptapp/internal/auth"
	"rezeptapp/internal/service"
)

// FavoriteHandler manages the caller's favorites.
type FavoriteHandler struct {
	favorites service.FavoriteService
}

// NewFavoriteHandler creates a favorite handler.
func NewFavoriteHandler(favorites service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

// ToggleFavoriteRequest identifies the recipe to toggle.
type ToggleFavoriteRequest struct {
	RecipeID FlexID `json:"recipeId" validate:"required"`
}

// ToggleFavoriteResponse reports the state after the toggle.
type ToggleFavoriteResponse struct {
	IsFavorite bool `json:"isFavorite"`
}

// CheckFavoritesRequest lists recipe ids to look up.
type CheckFavoritesRequest struct {
	RecipeIDs []FlexID `json:"recipeIds"`
}

// List godoc
// @Summary List own favorites
// @Tags favorites
// @Produce json
// @Success 200 {array} model.Recipe
// @Failure 401 {object} errors.ErrorResponse
// @Router /favorites [get]
func (h *FavoriteHandler) List(c echo.Context) error {
	sess := auth.SessionFromContext(c)
	recipes, err := h.favorites.List(c.Request().Context(), sess.UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, recipes)
}

// Toggle godoc
// @Summary Toggle favorite
// @Tags favorites
// @Accept json
// @Produce json
// @Param request body ToggleFavoriteRequest true "Recipe"
// @Success 200 {object} ToggleFavoriteResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /favorites [post]
func (h *FavoriteHandler) Toggle(c echo.Context) error {
	var req ToggleFavoriteRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sess := auth.SessionFromContext(c)
	isFavorite, err := h.favorites.Toggle(c.Request().Context(), sess.UserID, uint(req.RecipeID))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ToggleFavoriteResponse{IsFavorite: isFavorite})
}

// Check godoc
// @Summary Check favorites
// @Description Returns {"<id>": true} for each favorited id. Anonymous callers get an empty object.
// @Tags favorites
// @Accept json
// @Produce json
// @Param request body CheckFavoritesRequest true "Recipe ids"
// @Success 200 {object} map[string]bool
// @Router /favorites/check [post]
func (h *FavoriteHandler) Check(c echo.Context) error {
	result := map[string]bool{}
	sess := auth.SessionFromContext(c)
	if sess == nil || !sess.IsLoggedIn {
		return c.JSON(http.StatusOK, result)
	}

	var req CheckFavoritesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, result)
	}

	favorites, err := h.favorites.Check(c.Request().Context(), sess.UserID, IDs(req.RecipeIDs))
	if err != nil {
		return httpError(err)
	}
	for id := range favorites {
		result[strconv.FormatUint(uint64(id), 10)] = true
	}
	return c.JSON(http.StatusOK, result)
}
