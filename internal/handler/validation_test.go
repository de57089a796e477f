package handler

// Validation-path tests: every case here must fail before any repository or
// database access, so the handlers are constructed with nil dependencies.

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func jsonRequest(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestCreateSessionRejectsBadPatientID(t *testing.T) {
	h := &PatientSessionHandler{}
	c, rec := jsonRequest(t, http.MethodPost, "/", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := h.CreateSession(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateSessionAccumulatesValidationErrors(t *testing.T) {
	h := &PatientSessionHandler{}
	body := `{"therapistId":0,"sessionDate":"bad","sessionTime":"9:00","painPre":99}`
	c, rec := jsonRequest(t, http.MethodPost, "/", body)
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.CreateSession(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	out := decodeBody(t, rec)
	errs, ok := out["errors"].([]interface{})
	if !ok {
		t.Fatalf("response missing errors array: %v", out)
	}
	if len(errs) != 4 {
		t.Fatalf("expected 4 accumulated errors, got %d: %v", len(errs), errs)
	}
}

func TestUpdateSessionRejectsBadSessionID(t *testing.T) {
	h := &PatientSessionHandler{}
	c, rec := jsonRequest(t, http.MethodPatch, "/", `{}`)
	c.SetParamNames("id", "sessionId")
	c.SetParamValues("5", "0")

	if err := h.UpdateSession(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestOnboardingAccumulatesValidationErrors(t *testing.T) {
	h := &PatientSessionHandler{}
	c, rec := jsonRequest(t, http.MethodPost, "/", `{"dxCode":"","referralDate":"soon","referringProvider":""}`)
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := h.Onboarding(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	out := decodeBody(t, rec)
	errs, ok := out["errors"].([]interface{})
	if !ok || len(errs) != 3 {
		t.Fatalf("expected 3 accumulated errors, got %v", out)
	}
}

func TestStartSessionRejectsInvalidStatus(t *testing.T) {
	h := &TherapistHandler{}
	c, rec := jsonRequest(t, http.MethodPost, "/", `{"status":"Done"}`)
	c.SetParamNames("id", "sessionId")
	c.SetParamValues("2", "9")

	if err := h.StartSession(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStartSessionRejectsOutOfRangePain(t *testing.T) {
	h := &TherapistHandler{}
	c, rec := jsonRequest(t, http.MethodPost, "/", `{"status":"Completed","painPost":11}`)
	c.SetParamNames("id", "sessionId")
	c.SetParamValues("2", "9")

	if err := h.StartSession(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAvailabilityRejectsBadDate(t *testing.T) {
	h := &TherapistHandler{}
	c, rec := jsonRequest(t, http.MethodGet, "/?date=tomorrow", "")
	c.SetParamNames("id")
	c.SetParamValues("4")

	if err := h.Availability(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAvailabilityRejectsBadTherapistID(t *testing.T) {
	h := &TherapistHandler{}
	c, rec := jsonRequest(t, http.MethodGet, "/?date=2026-03-12", "")
	c.SetParamNames("id")
	c.SetParamValues("-1")

	if err := h.Availability(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSignupAccumulatesValidationErrors(t *testing.T) {
	h := &AuthHandler{}
	body := `{"name":"","dob":"yesterday","phone":"","username":"ab","password":"short"}`
	c, rec := jsonRequest(t, http.MethodPost, "/", body)

	if err := h.Signup(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	out := decodeBody(t, rec)
	errs, ok := out["errors"].([]interface{})
	if !ok || len(errs) != 5 {
		t.Fatalf("expected 5 accumulated errors, got %v", out)
	}
}

func TestChangePasswordRejectsShortPassword(t *testing.T) {
	h := &AuthHandler{}
	c, rec := jsonRequest(t, http.MethodPost, "/", `{"userId":1,"currentPassword":"old","newPassword":"short"}`)

	if err := h.ChangePassword(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
