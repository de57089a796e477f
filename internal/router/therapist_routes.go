package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ptwell/clinic-scheduler/internal/handler"
	"github.com/ptwell/clinic-scheduler/internal/middleware"
)

// RegisterTherapist registers the therapist-scoped endpoints. The directory
// and availability routes stay public; only the dashboard and the finalize
// endpoint require the therapist role.
func RegisterTherapist(e *echo.Echo, h *handler.TherapistHandler, jwtSecret string) {
	g := e.Group(
		"/therapists",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("therapist"),
	)
	g.GET("/:id/dashboard", h.Dashboard)
	g.POST("/:id/sessions/:sessionId/start", h.StartSession)
}
