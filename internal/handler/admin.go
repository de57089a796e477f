package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ptwell/clinic-scheduler/internal/model"
	"github.com/ptwell/clinic-scheduler/internal/repository"
)

// AdminHandler serves the reporting endpoint.
type AdminHandler struct{ Metrics *repository.MetricsRepo }

func NewAdminHandler(m *repository.MetricsRepo) *AdminHandler { return &AdminHandler{Metrics: m} }

// MetricsReport runs every admin aggregation and bundles the results.
func (h *AdminHandler) MetricsReport(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	noShows, err := h.Metrics.NoShowRates(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load metrics."})
	}
	changes, err := h.Metrics.OutcomeChanges(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load metrics."})
	}
	topExercises, err := h.Metrics.TopShoulderExercises(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load metrics."})
	}
	details, err := h.Metrics.OutcomeDetails(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load metrics."})
	}
	orders, err := h.Metrics.ShoulderOrders(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load metrics."})
	}

	return c.JSON(http.StatusOK, model.AdminMetrics{
		NoShowRates:          noShows,
		OutcomeChanges:       changes,
		TopShoulderExercises: topExercises,
		OutcomeDetails:       details,
		ShoulderOrders:       orders,
	})
}
