package schedule

import (
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestValidateBookingValid(t *testing.T) {
	vals, errs := ValidateBooking(BookingRequest{
		TherapistID: 3,
		SessionDate: "2026-03-12",
		SessionTime: "09:00",
		PainPre:     intPtr(4),
		Notes:       strPtr("  knee pain  "),
	}, testNow)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if vals.SessionTime != "09:00:00" {
		t.Errorf("time not normalized: %q", vals.SessionTime)
	}
	if vals.Notes == nil || *vals.Notes != "knee pain" {
		t.Errorf("notes not trimmed: %v", vals.Notes)
	}
}

func TestValidateBookingSameDayAllowed(t *testing.T) {
	_, errs := ValidateBooking(BookingRequest{
		TherapistID: 1,
		SessionDate: "2026-03-10", // today, later slots still bookable
		SessionTime: "16:00",
		PainPre:     intPtr(0),
	}, testNow)
	if len(errs) != 0 {
		t.Fatalf("same-day booking rejected: %v", errs)
	}
}

func TestValidateBookingAccumulatesAllErrors(t *testing.T) {
	_, errs := ValidateBooking(BookingRequest{
		TherapistID: 0,
		SessionDate: "not-a-date",
		SessionTime: "9:00",
		PainPre:     intPtr(11),
		Status:      "Pending",
	}, testNow)
	if len(errs) != 5 {
		t.Fatalf("expected 5 accumulated errors, got %d: %v", len(errs), errs)
	}
}

func TestValidateBookingFieldRules(t *testing.T) {
	base := BookingRequest{
		TherapistID: 2,
		SessionDate: "2026-04-01",
		SessionTime: "10:00",
		PainPre:     intPtr(5),
	}
	tests := []struct {
		name    string
		mutate  func(*BookingRequest)
		wantErr string
	}{
		{"past date", func(r *BookingRequest) { r.SessionDate = "2026-03-09" }, "past"},
		{"missing pain", func(r *BookingRequest) { r.PainPre = nil }, "Pain level"},
		{"negative pain", func(r *BookingRequest) { r.PainPre = intPtr(-1) }, "Pain level"},
		{"off-catalog time", func(r *BookingRequest) { r.SessionTime = "17:00" }, "hourly slots"},
		{"half-hour time", func(r *BookingRequest) { r.SessionTime = "09:30" }, "hourly slots"},
		{"bad status", func(r *BookingRequest) { r.Status = "Done" }, "Status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, errs := ValidateBooking(req, testNow)
			if len(errs) != 1 {
				t.Fatalf("expected exactly one error, got %v", errs)
			}
			if !strings.Contains(errs[0], tt.wantErr) {
				t.Fatalf("error %q does not mention %q", errs[0], tt.wantErr)
			}
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusScheduled, StatusCompleted, StatusCanceled, StatusNoShow} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false", s)
		}
	}
	for _, s := range []string{"", "scheduled", "No Show", "Pending"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true", s)
		}
	}
}

func TestNormalizeNotes(t *testing.T) {
	if got := NormalizeNotes(nil); got != nil {
		t.Errorf("nil notes should stay nil")
	}
	if got := NormalizeNotes(strPtr("   ")); got != nil {
		t.Errorf("blank notes should become nil, got %q", *got)
	}
	if got := NormalizeNotes(strPtr(" ok ")); got == nil || *got != "ok" {
		t.Errorf("notes not trimmed: %v", got)
	}
}
