package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"storebot/internal/usecase"

	"github.com/labstack/echo/v4"
)

const readyTimeout = 3 * time.Second

// Response is the JSON envelope of the operational endpoints.
type Response struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// HealthHandler reports liveness and storage readiness.
type HealthHandler struct {
	catalog usecase.CatalogUsecase
	logger  *slog.Logger
}

func NewHealthHandler(catalog usecase.CatalogUsecase, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{catalog: catalog, logger: logger}
}

// Live answers as long as the process serves requests.
func (h *HealthHandler) Live(c echo.Context) error {
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    http.StatusOK,
		Message: "Service is healthy",
		Data:    map[string]string{"status": "ok"},
	})
}

// Ready reloads the catalog to prove the backing store answers.
func (h *HealthHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readyTimeout)
	defer cancel()

	if err := h.catalog.Reload(ctx); err != nil {
		h.logger.Warn("Readiness check failed", slog.Any("error", err))

		return c.JSON(http.StatusServiceUnavailable, Response{
			Success: false,
			Code:    http.StatusServiceUnavailable,
			Message: "Storage unavailable",
		})
	}

	products, err := h.catalog.List(ctx)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, Response{
			Success: false,
			Code:    http.StatusServiceUnavailable,
			Message: "Storage unavailable",
		})
	}

	return c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    http.StatusOK,
		Message: "Service is ready",
		Data:    map[string]int{"products": len(products)},
	})
}
