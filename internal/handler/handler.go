// Package handler implements the HTTP endpoints. Handlers own the transaction
// boundaries: multi-step mutations begin a transaction, roll back on any
// error and translate repository sentinels into HTTP statuses.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ptwell/clinic-scheduler/internal/repository"
)

const dbTimeout = 5 * time.Second

// reqContext derives a bounded context from the request.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// authUserID returns the user id injected by the JWT middleware.
func authUserID(c echo.Context) (int64, bool) {
	id, ok := c.Get("user_id").(int64)
	return id, ok
}

// ownsPatient verifies that the authenticated user is bound to the patient id
// in the path. Prevents one patient from acting on another's resources even
// though both carry the patient role.
func ownsPatient(ctx context.Context, c echo.Context, users *repository.UserRepo, patientID int64) (bool, error) {
	uid, ok := authUserID(c)
	if !ok {
		return false, nil
	}
	u, err := users.GetByID(ctx, uid)
	if err != nil {
		return false, err
	}
	return u.PatientID.Valid && u.PatientID.Int64 == patientID, nil
}

// ownsTherapist is ownsPatient for the staff side.
func ownsTherapist(ctx context.Context, c echo.Context, users *repository.UserRepo, therapistID int64) (bool, error) {
	uid, ok := authUserID(c)
	if !ok {
		return false, nil
	}
	u, err := users.GetByID(ctx, uid)
	if err != nil {
		return false, err
	}
	return u.StaffID.Valid && u.StaffID.Int64 == therapistID, nil
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}
