package schedule

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Session statuses. Scheduled is the initial state; the API deliberately does
// not enforce a transition graph beyond enum membership, matching the
// documented permissive behavior.
const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCanceled  = "Canceled"
	StatusNoShow    = "No-Show"
)

// ValidStatus reports whether s is one of the four session statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCanceled, StatusNoShow:
		return true
	}
	return false
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, bool) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DateNotPast reports whether the date is on or after the local calendar day
// of now. Comparison is at day granularity: booking for later today is fine.
func DateNotPast(date time.Time, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !date.Before(today)
}

// ValidPain reports whether a pain level is an integer in [0,10].
func ValidPain(p int) bool { return p >= 0 && p <= 10 }

// NormalizeNotes trims the notes string; blank notes become nil so the
// database stores NULL rather than an empty string.
func NormalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// BookingRequest carries the client-supplied fields of a create or reschedule
// request, after JSON binding. Pointer fields distinguish "absent" from zero.
type BookingRequest struct {
	TherapistID int64
	SessionDate string
	SessionTime string
	PainPre     *int
	Status      string
	Notes       *string
}

// BookingValues is the validated, normalized form of a BookingRequest.
type BookingValues struct {
	TherapistID int64
	SessionDate string // YYYY-MM-DD
	SessionTime string // HH:MM:SS, member of the catalog
	PainPre     int
	Status      string
	Notes       *string
}

// ValidateBooking checks every structural rule and returns all failures at
// once so the client can surface the complete list. The returned values are
// only meaningful when the error slice is empty.
func ValidateBooking(req BookingRequest, now time.Time) (BookingValues, []string) {
	var errs []string
	vals := BookingValues{TherapistID: req.TherapistID, Status: req.Status, Notes: NormalizeNotes(req.Notes)}

	if req.TherapistID <= 0 {
		errs = append(errs, "A therapist is required.")
	}

	if date, ok := ParseDate(req.SessionDate); !ok {
		errs = append(errs, "A valid session date is required.")
	} else if !DateNotPast(date, now) {
		errs = append(errs, "Session date cannot be in the past.")
	} else {
		vals.SessionDate = req.SessionDate
	}

	if normalized, ok := NormalizeTime(req.SessionTime); !ok || !IsBookable(normalized) {
		errs = append(errs, "Session time must be one of the hourly slots between 08:00 and 16:00.")
	} else {
		vals.SessionTime = normalized
	}

	if req.PainPre == nil || !ValidPain(*req.PainPre) {
		errs = append(errs, "Pain level must be a whole number between 0 and 10.")
	} else {
		vals.PainPre = *req.PainPre
	}

	if req.Status != "" && !ValidStatus(req.Status) {
		errs = append(errs, "Status must be Scheduled, Completed, Canceled or No-Show.")
	}

	return vals, errs
}
