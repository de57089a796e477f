package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ptwell/clinic-scheduler/internal/database"
)

// HealthHandler reports liveness of the service and its database.
type HealthHandler struct{ DB *sql.DB }

func NewHealthHandler(db *sql.DB) *HealthHandler { return &HealthHandler{DB: db} }

// Health returns the connected schema name, or 500 when the database is
// unreachable.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	name, err := database.Name(ctx, h.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "degraded", "error": "database unreachable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "database": name})
}
