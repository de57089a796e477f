package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ptwell/clinic-scheduler/internal/handler"
	"github.com/ptwell/clinic-scheduler/internal/middleware"
)

// RegisterAdmin registers the reporting endpoints behind the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("admin"),
	)
	g.GET("/metrics", h.MetricsReport)
}
