package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runRole(t *testing.T, role interface{}, allowed ...string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	if err := RequireRole(allowed...)(next)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec.Code
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    interface{}
		allowed []string
		want    int
	}{
		{"allowed role", "patient", []string{"patient"}, http.StatusOK},
		{"one of several", "therapist", []string{"patient", "therapist"}, http.StatusOK},
		{"disallowed role", "pending", []string{"patient"}, http.StatusForbidden},
		{"missing role", nil, []string{"patient"}, http.StatusForbidden},
		{"mistyped role", 42, []string{"patient"}, http.StatusForbidden},
		{"case sensitive", "Patient", []string{"patient"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runRole(t, tt.role, tt.allowed...); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}
