package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ptwell/clinic-scheduler/internal/model"
	"github.com/ptwell/clinic-scheduler/internal/repository"
	"github.com/ptwell/clinic-scheduler/internal/schedule"
)

// TherapistHandler serves the directory, availability, dashboard and the
// session finalize endpoint.
type TherapistHandler struct {
	Therapists *repository.TherapistRepo
	Sessions   *repository.SessionRepo
	Users      *repository.UserRepo
}

func NewTherapistHandler(t *repository.TherapistRepo, s *repository.SessionRepo, u *repository.UserRepo) *TherapistHandler {
	return &TherapistHandler{Therapists: t, Sessions: s, Users: u}
}

type startSessionReq struct {
	Status           string                   `json:"status"`
	Notes            *string                  `json:"notes"`
	PainPre          *int                     `json:"painPre"`
	PainPost         *int                     `json:"painPost"`
	SessionExercises []schedule.ExerciseEntry `json:"sessionExercises"`
	OutcomeMeasures  []schedule.OutcomeEntry  `json:"outcomeMeasures"`
}

// List returns the therapist directory.
func (h *TherapistHandler) List(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	therapists, err := h.Therapists.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load therapists."})
	}
	return c.JSON(http.StatusOK, therapists)
}

// Availability returns the free slots for a therapist on a date: the fixed
// catalog minus that day's non-Canceled bookings.
func (h *TherapistHandler) Availability(c echo.Context) error {
	therapistID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A valid therapist id is required."})
	}
	date := c.QueryParam("date")
	if _, ok := schedule.ParseDate(date); !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A valid date (YYYY-MM-DD) is required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if exists, err := h.Therapists.Exists(ctx, therapistID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load availability."})
	} else if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Therapist not found."})
	}

	booked, err := h.Therapists.BookedTimes(ctx, therapistID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load availability."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"therapistId":    therapistID,
		"date":           date,
		"availableTimes": schedule.AvailableTimes(booked),
	})
}

// Dashboard assembles the therapist's upcoming schedule plus a per-patient
// summary of recent sessions and outcome progress.
func (h *TherapistHandler) Dashboard(c echo.Context) error {
	therapistID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A valid therapist id is required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if owns, err := ownsTherapist(ctx, c, h.Users, therapistID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load dashboard."})
	} else if !owns {
		return forbidden(c)
	}

	today := time.Now().Format("2006-01-02")
	upcoming, err := h.Therapists.UpcomingSchedule(ctx, therapistID, today)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load dashboard."})
	}

	seen := make(map[int64]struct{})
	patientIDs := make([]int64, 0, len(upcoming))
	for _, it := range upcoming {
		if _, ok := seen[it.PatientID]; !ok {
			seen[it.PatientID] = struct{}{}
			patientIDs = append(patientIDs, it.PatientID)
		}
	}

	recent, err := h.Therapists.RecentSessionsByPatient(ctx, therapistID, patientIDs, today)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load dashboard."})
	}
	outcomes, err := h.Therapists.OutcomeSummaries(ctx, patientIDs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load dashboard."})
	}

	summaries := make(map[int64]model.PatientSummary, len(patientIDs))
	for _, id := range patientIDs {
		summaries[id] = model.PatientSummary{
			PreviousSessions: recent[id],
			OutcomeSummaries: outcomes[id],
		}
	}

	return c.JSON(http.StatusOK, model.TherapistDashboard{
		UpcomingSessions: upcoming,
		PatientSummaries: summaries,
	})
}

// StartSession finalizes a session: status/notes/pain update, full replace of
// the prescribed exercises and an upsert per outcome measure, all in one
// transaction. Invalid exercise and outcome rows are silently dropped.
func (h *TherapistHandler) StartSession(c echo.Context) error {
	therapistID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A valid therapist id is required."})
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A valid session id is required."})
	}
	var req startSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}

	var errs []string
	if !schedule.ValidStatus(req.Status) {
		errs = append(errs, "Status must be Scheduled, Completed, Canceled or No-Show.")
	}
	if req.PainPre != nil && !schedule.ValidPain(*req.PainPre) {
		errs = append(errs, "Pain level must be a whole number between 0 and 10.")
	}
	if req.PainPost != nil && !schedule.ValidPain(*req.PainPost) {
		errs = append(errs, "Pain level must be a whole number between 0 and 10.")
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if owns, err := ownsTherapist(ctx, c, h.Users, therapistID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
	} else if !owns {
		return forbidden(c)
	}

	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	stored, err := h.Sessions.GetForTherapistTx(ctx, tx, sessionID, therapistID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Session not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
	}

	painPre := stored.PainPre
	if req.PainPre != nil {
		painPre = req.PainPre
	}
	painPost := stored.PainPost
	if req.PainPost != nil {
		painPost = req.PainPost
	}
	notes := stored.Notes
	if req.Notes != nil {
		notes = schedule.NormalizeNotes(req.Notes)
	}

	if err := h.Sessions.UpdateClinicalTx(ctx, tx, sessionID, req.Status, notes, painPre, painPost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
	}
	if req.SessionExercises != nil {
		if err := h.Sessions.ReplaceExercisesTx(ctx, tx, sessionID, schedule.FilterExercises(req.SessionExercises)); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
		}
	}
	for _, o := range schedule.FilterOutcomes(req.OutcomeMeasures) {
		if err := h.Sessions.UpsertOutcomeTx(ctx, tx, stored.PatientID, o); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
