package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rezeptapp/internal/service"
)

// ImportHandler imports recipes from an external site.
type ImportHandler struct {
	imports service.ImportService
}

// NewImportHandler creates an import handler.
func NewImportHandler(imports service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

// ImportRequest names the page to import.
type ImportRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// Import godoc
// @Summary Import a recipe page
// @Description Scrapes a page of the configured recipe site into recipe fields.
// @Tags import
// @Accept json
// @Produce json
// @Param request body ImportRequest true "Page URL"
// @Success 200 {object} scraper.ImportedRecipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /import [post]
func (h *ImportHandler) Import(c echo.Context) error {
	var req ImportRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	recipe, err := h.imports.Import(c.Request().Context(), req.URL)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, recipe)
}
