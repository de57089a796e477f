// Package repository implements data access over MySQL. Sentinel errors
// defined here let handlers translate failure modes into HTTP statuses with
// errors.Is instead of inspecting driver error strings.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrPatientNotFound is returned when a referenced patient does not exist.
var ErrPatientNotFound = errors.New("patient not found")

// ErrTherapistNotFound is returned when a referenced therapist does not exist.
var ErrTherapistNotFound = errors.New("therapist not found")

// ErrSessionNotFound is returned when a session does not exist or does not
// belong to the caller. Ownership is enforced in the query predicates, so
// "missing" and "not yours" are indistinguishable by design.
var ErrSessionNotFound = errors.New("session not found")

// ErrUsernameExists is returned when a signup collides with an existing
// username.
var ErrUsernameExists = errors.New("username already exists")

// ErrSlotTaken is returned when a therapist already has a non-Canceled
// session at the requested date and time. Raised both by the pre-check and by
// the uq_therapist_slot unique key when a concurrent writer wins the race.
var ErrSlotTaken = errors.New("time slot already taken")

// ErrPatientDoubleBooked is returned when the patient already has a
// non-Canceled session on the requested date. Backed by uq_patient_day.
var ErrPatientDoubleBooked = errors.New("patient already booked for this date")

const mysqlDuplicateEntry = 1062

// duplicateKey reports whether err is a MySQL duplicate-entry violation of
// the named unique key. The driver's typed error is used rather than string
// matching on the message.
func duplicateKey(err error, keyName string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return false
	}
	return strings.Contains(me.Message, keyName)
}
