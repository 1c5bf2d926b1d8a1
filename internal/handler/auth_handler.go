package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"rezeptapp/internal/auth"
	"rezeptapp/internal/model"
	"rezeptapp/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	sessions    *auth.SessionManager
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, sessions *auth.SessionManager, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, log: log}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	OK   bool        `json:"ok"`
	User *model.User `json:"user"`
}

// RegisterStatusResponse tells the UI whether the next account becomes an admin.
type RegisterStatusResponse struct {
	AdminSlotsOpen bool `json:"adminSlotsOpen"`
}

// Register godoc
// @Summary Register a new user
// @Description The first two accounts ever created become ADMIN.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, RegisterResponse{OK: true, User: user})
}

// RegisterStatus godoc
// @Summary Registration status
// @Tags auth
// @Produce json
// @Success 200 {object} RegisterStatusResponse
// @Router /register/status [get]
func (h *AuthHandler) RegisterStatus(c echo.Context) error {
	open, err := h.authService.AdminSlotsOpen(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, RegisterStatusResponse{AdminSlotsOpen: open})
}

// Login godoc
// @Summary Login user
// @Description Verifies credentials and sets the session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} OKResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return httpError(err)
	}

	if err := h.sessions.Issue(c, auth.NewSession(user)); err != nil {
		h.log.WithError(err).Error("issue session cookie")
		return httpError(err)
	}
	return c.JSON(http.StatusOK, OKResponse{OK: true})
}

// Logout godoc
// @Summary Logout user
// @Description Revokes the current session token and clears the cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} OKResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), auth.SessionFromContext(c)); err != nil {
		h.log.WithError(err).Warn("logout revocation failed")
	}
	h.sessions.Clear(c)
	return c.JSON(http.StatusOK, OKResponse{OK: true})
}

// Me godoc
// @Summary Current session
// @Tags auth
// @Produce json
// @Success 200 {object} auth.Session
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, auth.SessionFromContext(c))
}
