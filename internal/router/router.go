// Package router registers the HTTP routes and binds the auth middleware to
// the protected groups.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ptwell/clinic-scheduler/internal/handler"
)

// RegisterPublic registers the unauthenticated endpoints: the health check
// and the browse endpoints patients need before logging in or while booking.
func RegisterPublic(e *echo.Echo, health *handler.HealthHandler, therapists *handler.TherapistHandler, exercises *handler.ExerciseHandler) {
	e.GET("/health", health.Health)
	e.GET("/therapists", therapists.List)
	e.GET("/therapists/:id/availability", therapists.Availability)
	e.GET("/exercises", exercises.List)
}

// RegisterAuth registers the credential endpoints. None require a JWT: login
// and signup create sessions, refresh and logout operate on the refresh token
// in the body, and change-password verifies the current password itself.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/change-password", a.ChangePassword)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}
