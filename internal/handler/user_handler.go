package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rezeptapp/internal/auth"
	"rezeptapp/internal/model"
	"rezeptapp/internal/service"
)

// UserHandler bundles the admin user management handlers.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// ChangeRoleRequest sets a user's role.
type ChangeRoleRequest struct {
	Role model.Role `json:"role" validate:"required"`
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Success 200 {array} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context(), auth.SessionFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// ChangeRole godoc
// @Summary Change user role
// @Description Existing sessions of the user are revoked.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body ChangeRoleRequest true "USER or ADMIN"
// @Success 200 {object} OKResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [patch]
func (h *UserHandler) ChangeRole(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req ChangeRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.svc.ChangeRole(c.Request().Context(), auth.SessionFromContext(c), id, req.Role); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, OKResponse{OK: true})
}

// DeleteUser godoc
// @Summary Delete user
// @Description Admins cannot delete their own account.
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} OKResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), auth.SessionFromContext(c), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, OKResponse{OK: true})
}
