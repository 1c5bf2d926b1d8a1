package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rezeptapp/internal/auth"
	"rezeptapp/internal/service"
)

// ModerationHandler exposes the pending recipe queue.
type ModerationHandler struct {
	moderation service.ModerationService
}

// NewModerationHandler creates a moderation handler.
func NewModerationHandler(moderation service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

// SubmissionRequest is a recipe draft for the moderation queue.
type SubmissionRequest struct {
	Title        string    `json:"title" validate:"required,max=255"`
	Description  string    `json:"description"`
	Ingredients  TextBlock `json:"ingredients" validate:"required"`
	Instructions TextBlock `json:"instructions" validate:"required"`
	ImageURL     *string   `json:"imageUrl"`
	Category     string    `json:"category" validate:"max=100"`
	Country      string    `json:"country" validate:"required,max=100"`
	DishType     *string   `json:"dishType"`
}

// DecisionRequest approves or rejects an entry.
type DecisionRequest struct {
	Action string `json:"action" validate:"required"`
}

// Submit godoc
// @Summary Submit recipe for moderation
// @Tags moderation
// @Accept json
// @Produce json
// @Param request body SubmissionRequest true "Draft"
// @Success 201 {object} model.PendingRecipe
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /admin/pending-recipes [post]
func (h *ModerationHandler) Submit(c echo.Context) error {
	var req SubmissionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	entry, err := h.moderation.Submit(c.Request().Context(), auth.SessionFromContext(c), service.Submission{
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  string(req.Ingredients),
		Instructions: string(req.Instructions),
		ImageURL:     req.ImageURL,
		Category:     req.Category,
		Country:      req.Country,
		DishType:     req.DishType,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// List godoc
// @Summary List pending recipes
// @Description PENDING entries, newest first.
// @Tags moderation
// @Produce json
// @Success 200 {array} model.PendingRecipe
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/pending-recipes [get]
func (h *ModerationHandler) List(c echo.Context) error {
	entries, err := h.moderation.ListPending(c.Request().Context(), auth.SessionFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, entries)
}

// Decide godoc
// @Summary Approve or reject a pending recipe
// @Description Approval publishes the recipe. Entries that are no longer PENDING yield 409.
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "Pending recipe ID"
// @Param request body DecisionRequest true "approve or reject"
// @Success 200 {object} service.Decision
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/pending-recipes/{id} [post]
func (h *ModerationHandler) Decide(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req DecisionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	decision, err := h.moderation.Decide(c.Request().Context(), auth.SessionFromContext(c), id, req.Action)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, decision)
}
