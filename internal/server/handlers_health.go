package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/covera-app/covera/internal/repository"
)

type HealthHandler struct {
	store   repository.KVStore
	version string
}

type healthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store"`
	Version string `json:"version,omitempty"`
}

// HandleHealth reports 503 when the store does not answer a ping.
func (h *HealthHandler) HandleHealth(c echo.Context) error {
	resp := healthResponse{Status: "ok", Store: "ok", Version: h.version}
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			resp.Status, resp.Store = "degraded", "unreachable"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
