package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"rezeptapp/internal/db"
)

// RedisPinger reports redis reachability.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process health.
type HealthHandler struct {
	db    *gorm.DB
	redis RedisPinger
}

// NewHealthHandler creates a health handler. redis may be nil.
func NewHealthHandler(gdb *gorm.DB, redis RedisPinger) *HealthHandler {
	return &HealthHandler{db: gdb, redis: redis}
}

// HealthResponse describes dependency status.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Health godoc
// @Summary Health check
// @Description 503 when the database is unreachable. Redis is reported but not required.
// @Tags ops
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Health(c echo.Context) error {
	resp := HealthResponse{Status: "ok", Database: "ok", Redis: "ok"}
	status := http.StatusOK

	if err := db.Ping(h.db); err != nil {
		resp.Status = "unavailable"
		resp.Database = "unavailable"
		status = http.StatusServiceUnavailable
	}
	if h.redis == nil || h.redis.Ping(c.Request().Context()) != nil {
		resp.Redis = "unavailable"
	}
	return c.JSON(status, resp)
}
