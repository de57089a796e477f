package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ptwell/clinic-scheduler/internal/model"
	"github.com/ptwell/clinic-scheduler/internal/queue"
	"github.com/ptwell/clinic-scheduler/internal/repository"
	"github.com/ptwell/clinic-scheduler/internal/schedule"
	queuepub "github.com/ptwell/clinic-scheduler/internal/service"
)

// PatientSessionHandler serves the patient-facing booking endpoints. Every
// mutation runs existence and conflict checks plus the write inside one
// transaction; the unique keys on Sessions catch whatever races past the
// pre-checks.
type PatientSessionHandler struct {
	Sessions   *repository.SessionRepo
	Patients   *repository.PatientRepo
	Therapists *repository.TherapistRepo
	Users      *repository.UserRepo
}

func NewPatientSessionHandler(s *repository.SessionRepo, p *repository.PatientRepo,
	t *repository.TherapistRepo, u *repository.UserRepo) *PatientSessionHandler {
	return &PatientSessionHandler{Sessions: s, Patients: p, Therapists: t, Users: u}
}

type createSessionReq struct {
	TherapistID int64   `json:"therapistId"`
	SessionDate string  `json:"sessionDate"`
	SessionTime string  `json:"sessionTime"`
	PainPre     *int    `json:"painPre"`
	Notes       *string `json:"notes"`
}

type updateSessionReq struct {
	TherapistID *int64  `json:"therapistId"`
	SessionDate *string `json:"sessionDate"`
	SessionTime *string `json:"sessionTime"`
	PainPre     *int    `json:"painPre"`
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
}

type onboardingReq struct {
	DXCode            string `json:"dxCode"`
	ReferralDate      string `json:"referralDate"`
	ReferringProvider string `json:"referringProvider"`
}

// CreateSession books a new session for the patient.
func (h *PatientSessionHandler) CreateSession(c echo.Context) error {
	patientID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A valid patient id is required."})
	}
	var req createSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}

	vals, errs := schedule.ValidateBooking(schedule.BookingRequest{
		TherapistID: req.TherapistID,
		SessionDate: req.SessionDate,
		SessionTime: req.SessionTime,
		PainPre:     req.PainPre,
		Notes:       req.Notes,
	}, time.Now())
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if owns, err := ownsPatient(ctx, c, h.Users, patientID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not book session."})
	} else if !owns {
		return forbidden(c)
	}

	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not book session."})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if exists, err := h.Patients.ExistsTx(ctx, tx, patientID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not book session."})
	} else if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Patient not found."})
	}
	if exists, err := h.Therapists.ExistsTx(ctx, tx, vals.TherapistID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not book session."})
	} else if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Therapist not found."})
	}

	if booked, err := h.Sessions.PatientBookedOnDateTx(ctx, tx, patientID, vals.SessionDate, 0); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not book session."})
	} else if booked {
		return c.JSON(http.StatusConflict, echo.Map{"message": "You already have a session scheduled for this date."})
	}
	if taken, err := h.Sessions.TherapistSlotTakenTx(ctx, tx, vals.TherapistID, vals.SessionDate, vals.SessionTime, 0); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not book session."})
	} else if taken {
		return c.JSON(http.StatusConflict, echo.Map{"message": "That time slot is already booked for this therapist."})
	}

	painPre := vals.PainPre
	s := model.Session{
		PatientID:   patientID,
		TherapistID: vals.TherapistID,
		SessionDate: vals.SessionDate,
		SessionTime: vals.SessionTime,
		Status:      schedule.StatusScheduled,
		PainPre:     &painPre,
		Notes:       vals.Notes,
	}
	sessionID, err := h.Sessions.CreateTx(ctx, tx, s)
	if err != nil {
		return bookingConflict(c, err, "Could not book session.")
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not book session."})
	}
	committed = true
	s.SessionID = sessionID

	h.publishBooked(c, s)

	return c.JSON(http.StatusCreated, s)
}

// UpdateSession applies a partial reschedule or status change. Omitted fields
// keep their stored values; conflict checks exclude the session's own row so
// re-confirming the current slot succeeds.
func (h *PatientSessionHandler) UpdateSession(c echo.Context) error {
	patientID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A valid patient id is required."})
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A valid session id is required."})
	}
	var req updateSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if owns, err := ownsPatient(ctx, c, h.Users, patientID); err != nil {
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

	stored, err := h.Sessions.GetForPatientTx(ctx, tx, sessionID, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Session not found."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
	}

	// Merge request over stored values, validating only what was supplied.
	merged := stored
	var errs []string

	if req.TherapistID != nil {
		if *req.TherapistID <= 0 {
			errs = append(errs, "A therapist is required.")
		} else {
			merged.TherapistID = *req.TherapistID
		}
	}
	if req.SessionDate != nil {
		if date, ok := schedule.ParseDate(*req.SessionDate); !ok {
			errs = append(errs, "A valid session date is required.")
		} else if !schedule.DateNotPast(date, time.Now()) {
			errs = append(errs, "Session date cannot be in the past.")
		} else {
			merged.SessionDate = *req.SessionDate
		}
	}
	if req.SessionTime != nil {
		if normalized, ok := schedule.NormalizeTime(*req.SessionTime); !ok || !schedule.IsBookable(normalized) {
			errs = append(errs, "Session time must be one of the hourly slots between 08:00 and 16:00.")
		} else {
			merged.SessionTime = normalized
		}
	}
	if req.PainPre != nil {
		if !schedule.ValidPain(*req.PainPre) {
			errs = append(errs, "Pain level must be a whole number between 0 and 10.")
		} else {
			merged.PainPre = req.PainPre
		}
	}
	if req.Status != nil {
		if !schedule.ValidStatus(*req.Status) {
			errs = append(errs, "Status must be Scheduled, Completed, Canceled or No-Show.")
		} else {
			merged.Status = *req.Status
		}
	}
	if req.Notes != nil {
		merged.Notes = schedule.NormalizeNotes(req.Notes)
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	if req.TherapistID != nil && merged.TherapistID != stored.TherapistID {
		if exists, err := h.Therapists.ExistsTx(ctx, tx, merged.TherapistID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
		} else if !exists {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Therapist not found."})
		}
	}

	// A session being canceled releases its claim, so conflicts are only
	// rechecked when the result stays live.
	if merged.Status != schedule.StatusCanceled {
		if booked, err := h.Sessions.PatientBookedOnDateTx(ctx, tx, patientID, merged.SessionDate, sessionID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
		} else if booked {
			return c.JSON(http.StatusConflict, echo.Map{"message": "You already have a session scheduled for this date."})
		}
		if taken, err := h.Sessions.TherapistSlotTakenTx(ctx, tx, merged.TherapistID, merged.SessionDate, merged.SessionTime, sessionID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
		} else if taken {
			return c.JSON(http.StatusConflict, echo.Map{"message": "That time slot is already booked for this therapist."})
		}
	}

	if err := h.Sessions.UpdateTx(ctx, tx, merged); err != nil {
		return bookingConflict(c, err, "Could not update session.")
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not update session."})
	}
	committed = true

	return c.JSON(http.StatusOK, merged)
}

// ListSessions returns the patient's upcoming and recent past sessions.
func (h *PatientSessionHandler) ListSessions(c echo.Context) error {
	patientID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A valid patient id is required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if owns, err := ownsPatient(ctx, c, h.Users, patientID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load sessions."})
	} else if !owns {
		return forbidden(c)
	}

	upcoming, err := h.Sessions.ListUpcomingByPatient(ctx, patientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load sessions."})
	}
	past, err := h.Sessions.ListPastByPatient(ctx, patientID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not load sessions."})
	}
	return c.JSON(http.StatusOK, echo.Map{"sessions": upcoming, "pastSessions": past})
}

// Onboarding records the patient's referral and promotes the pending user to
// the patient role, in one transaction.
func (h *PatientSessionHandler) Onboarding(c echo.Context) error {
	patientID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A valid patient id is required."})
	}
	var req onboardingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}

	var errs []string
	if req.DXCode == "" {
		errs = append(errs, "A diagnosis code is required.")
	}
	if _, ok := schedule.ParseDate(req.ReferralDate); !ok {
		errs = append(errs, "A valid referral date is required.")
	}
	if req.ReferringProvider == "" {
		errs = append(errs, "A referring provider is required.")
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if owns, err := ownsPatient(ctx, c, h.Users, patientID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not complete onboarding."})
	} else if !owns {
		return forbidden(c)
	}

	tx, err := h.Sessions.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not complete onboarding."})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if exists, err := h.Patients.ExistsTx(ctx, tx, patientID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not complete onboarding."})
	} else if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Patient not found."})
	}
	if err := h.Patients.CreateReferralTx(ctx, tx, patientID, req.DXCode, req.ReferralDate, req.ReferringProvider); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not complete onboarding."})
	}
	if err := h.Users.PromotePatientTx(ctx, tx, patientID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not complete onboarding."})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not complete onboarding."})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{"success": true, "role": "patient"})
}

// publishBooked emits the session.booked event after commit. Best effort;
// failures are logged by the publisher and never affect the response.
func (h *PatientSessionHandler) publishBooked(c echo.Context, s model.Session) {
	ev := queue.SessionBookedEvent{
		SessionID:   s.SessionID,
		PatientID:   s.PatientID,
		TherapistID: s.TherapistID,
		SessionDate: s.SessionDate,
		SessionTime: s.SessionTime,
		Status:      s.Status,
		BookedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if name, err := h.Therapists.StaffName(c.Request().Context(), s.TherapistID); err == nil {
		ev.TherapistName = name
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queuepub.PublishSessionBooked(ctx, ev)
	}()
}

// bookingConflict maps the unique-key sentinels raised by a racing writer to
// the same 409s the pre-checks produce.
func bookingConflict(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrSlotTaken):
		return c.JSON(http.StatusConflict, echo.Map{"message": "That time slot is already booked for this therapist."})
	case errors.Is(err, repository.ErrPatientDoubleBooked):
		return c.JSON(http.StatusConflict, echo.Map{"message": "You already have a session scheduled for this date."})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": fallback})
	}
}
