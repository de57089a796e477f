package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ptwell/clinic-scheduler/internal/handler"
	"github.com/ptwell/clinic-scheduler/internal/middleware"
)

// RegisterPatient registers the patient-scoped endpoints. Onboarding also
// admits the pending role, since completing it is what earns the patient
// role; everything else requires a fully onboarded patient.
func RegisterPatient(e *echo.Echo, h *handler.PatientSessionHandler, jwtSecret string) {
	onboarding := e.Group(
		"/patients",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("pending", "patient"),
	)
	onboarding.POST("/:id/onboarding", h.Onboarding)

	g := e.Group(
		"/patients",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("patient"),
	)
	g.POST("/:id/sessions", h.CreateSession)
	g.PATCH("/:id/sessions/:sessionId", h.UpdateSession)
	g.GET("/:id/sessions", h.ListSessions)
}
