package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rezeptapp/internal/auth"
	"rezeptapp/internal/model"
	"rezeptapp/internal/service"
)

// SettingsHandler exposes application settings to admins.
type SettingsHandler struct {
	settings service.SettingsService
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(settings service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// SettingsRequest updates settings. The key/value form is accepted for
// existing clients and must name a known setting.
type SettingsRequest struct {
	OpenAIAPIKey *string `json:"openaiApiKey"`
	Key          string  `json:"key"`
	Value        *string `json:"value"`
}

func (r SettingsRequest) update() (service.SettingsUpdate, error) {
	upd := service.SettingsUpdate{OpenAIAPIKey: r.OpenAIAPIKey}
	switch r.Key {
	case "":
	case model.SettingKeyOpenAIAPIKey:
		if r.Value == nil {
			return upd, badRequest("value is required")
		}
		upd.OpenAIAPIKey = r.Value
	default:
		return upd, badRequest("unknown setting " + r.Key)
	}
	if upd.OpenAIAPIKey == nil {
		return upd, badRequest("no setting given")
	}
	return upd, nil
}

// Get godoc
// @Summary Read settings
// @Description The AI credential is never returned, only whether it is configured.
// @Tags admin
// @Produce json
// @Success 200 {object} service.SettingsView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/settings [get]
func (h *SettingsHandler) Get(c echo.Context) error {
	view, err := h.settings.View(c.Request().Context(), auth.SessionFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// Update godoc
// @Summary Update settings
// @Tags admin
// @Accept json
// @Produce json
// @Param request body SettingsRequest true "Settings"
// @Success 200 {object} service.SettingsView
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/settings [post]
func (h *SettingsHandler) Update(c echo.Context) error {
	var req SettingsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	upd, err := req.update()
	if err != nil {
		return err
	}
	view, err := h.settings.Update(c.Request().Context(), auth.SessionFromContext(c), upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}
