package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func dupErr(key string) error {
	return &mysql.MySQLError{
		Number:  1062,
		Message: fmt.Sprintf("Duplicate entry '3-2026-03-12-1' for key 'Sessions.%s'", key),
	}
}

func TestDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		key  string
		want bool
	}{
		{"matching key", dupErr("uq_therapist_slot"), "uq_therapist_slot", true},
		{"wrapped matching key", fmt.Errorf("insert: %w", dupErr("uq_patient_day")), "uq_patient_day", true},
		{"different key", dupErr("uq_patient_day"), "uq_therapist_slot", false},
		{"other mysql error", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}, "uq_therapist_slot", false},
		{"plain error", errors.New("duplicate entry for key 'uq_therapist_slot'"), "uq_therapist_slot", false},
		{"nil error", nil, "uq_therapist_slot", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := duplicateKey(tt.err, tt.key); got != tt.want {
				t.Errorf("duplicateKey = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapSlotConflict(t *testing.T) {
	if got := mapSlotConflict(dupErr("uq_therapist_slot")); !errors.Is(got, ErrSlotTaken) {
		t.Errorf("therapist-slot violation mapped to %v", got)
	}
	if got := mapSlotConflict(dupErr("uq_patient_day")); !errors.Is(got, ErrPatientDoubleBooked) {
		t.Errorf("patient-day violation mapped to %v", got)
	}
	plain := errors.New("connection lost")
	if got := mapSlotConflict(plain); got != plain {
		t.Errorf("unrelated error rewritten to %v", got)
	}
	if got := mapSlotConflict(nil); got != nil {
		t.Errorf("nil error rewritten to %v", got)
	}
}
