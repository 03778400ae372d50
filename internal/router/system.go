package router

import (
	"github.com/deppfellow/invoices/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers health, docs and static assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", "static")

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
