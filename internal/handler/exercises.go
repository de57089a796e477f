package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ptwell/clinic-scheduler/internal/repository"
)

// ExerciseHandler serves the exercise catalog.
type ExerciseHandler struct{ Exercises *repository.ExerciseRepo }

func NewExerciseHandler(e *repository.ExerciseRepo) *ExerciseHandler {
	return &ExerciseHandler{Exercises: e}
}

func (h *ExerciseHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	exercises, err := h.Exercises.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load exercises."})
	}
	return c.JSON(http.StatusOK, exercises)
}
