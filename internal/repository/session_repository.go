package repository

import (
	"context"
	"database/sql"

	"github.com/ptwell/clinic-scheduler/internal/model"
	"github.com/ptwell/clinic-scheduler/internal/schedule"
)

// SessionRepo persists sessions and their child rows. Mutations run through
// the ...Tx variants so the handler controls transaction boundaries; the
// uq_therapist_slot and uq_patient_day unique keys make the database the
// final arbiter of slot exclusivity even when two writers pass the pre-checks
// concurrently.
type SessionRepo struct{ db *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the pool so handlers can begin transactions.
func (r *SessionRepo) DB() *sql.DB { return r.db }

// GetForPatientTx loads a session owned by the patient, locking the row for
// the remainder of the transaction. Missing and not-owned both map to
// ErrSessionNotFound.
func (r *SessionRepo) GetForPatientTx(ctx context.Context, tx *sql.Tx, sessionID, patientID int64) (model.Session, error) {
	return r.getOwnedTx(ctx, tx, sessionID, "PatientID", patientID)
}

// GetForTherapistTx loads a session owned by the therapist, locking the row.
func (r *SessionRepo) GetForTherapistTx(ctx context.Context, tx *sql.Tx, sessionID, therapistID int64) (model.Session, error) {
	return r.getOwnedTx(ctx, tx, sessionID, "TherapistID", therapistID)
}

func (r *SessionRepo) getOwnedTx(ctx context.Context, tx *sql.Tx, sessionID int64, ownerCol string, ownerID int64) (model.Session, error) {
	var s model.Session
	err := tx.QueryRowContext(ctx,
		`SELECT SessionID, PatientID, TherapistID,
		        DATE_FORMAT(SessionDate, '%Y-%m-%d'), TIME_FORMAT(SessionTime, '%H:%i:%s'),
		        Status, PainPre, PainPost, Notes
		 FROM Sessions
		 WHERE SessionID = ? AND `+ownerCol+` = ?
		 LIMIT 1
		 FOR UPDATE`,
		sessionID, ownerID).
		Scan(&s.SessionID, &s.PatientID, &s.TherapistID, &s.SessionDate, &s.SessionTime,
			&s.Status, &s.PainPre, &s.PainPost, &s.Notes)
	if err == sql.ErrNoRows {
		return model.Session{}, ErrSessionNotFound
	}
	return s, err
}

// PatientBookedOnDateTx reports whether the patient already holds a
// non-Canceled session on the date, excluding excludeSessionID (0 to exclude
// nothing) so a reschedule never conflicts with its own row.
func (r *SessionRepo) PatientBookedOnDateTx(ctx context.Context, tx *sql.Tx, patientID int64, date string, excludeSessionID int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM Sessions
		 WHERE PatientID = ? AND SessionDate = ? AND Status <> 'Canceled' AND SessionID <> ?
		 LIMIT 1`,
		patientID, date, excludeSessionID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TherapistSlotTakenTx reports whether the therapist already holds a
// non-Canceled session at the (date, time) slot, with the same self-exclusion
// as PatientBookedOnDateTx.
func (r *SessionRepo) TherapistSlotTakenTx(ctx context.Context, tx *sql.Tx, therapistID int64, date, timeOfDay string, excludeSessionID int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM Sessions
		 WHERE TherapistID = ? AND SessionDate = ? AND SessionTime = ? AND Status <> 'Canceled' AND SessionID <> ?
		 LIMIT 1`,
		therapistID, date, timeOfDay, excludeSessionID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateTx inserts a new Scheduled session and returns its id. Unique-key
// violations from concurrent bookings surface as the same sentinel errors the
// pre-checks raise.
func (r *SessionRepo) CreateTx(ctx context.Context, tx *sql.Tx, s model.Session) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO Sessions (PatientID, TherapistID, SessionDate, SessionTime, Status, PainPre, PainPost, Notes)
		 VALUES (?, ?, ?, ?, 'Scheduled', ?, NULL, ?)`,
		s.PatientID, s.TherapistID, s.SessionDate, s.SessionTime, s.PainPre, s.Notes)
	if err != nil {
		return 0, mapSlotConflict(err)
	}
	return res.LastInsertId()
}

// UpdateTx rewrites a session's reschedulable fields.
func (r *SessionRepo) UpdateTx(ctx context.Context, tx *sql.Tx, s model.Session) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE Sessions
		 SET TherapistID = ?, SessionDate = ?, SessionTime = ?, Status = ?, PainPre = ?, Notes = ?
		 WHERE SessionID = ?`,
		s.TherapistID, s.SessionDate, s.SessionTime, s.Status, s.PainPre, s.Notes, s.SessionID)
	return mapSlotConflict(err)
}

// UpdateClinicalTx applies the therapist-side finalize: status, notes and
// pain fields. The status-change audit row is appended by the
// trg_session_status_audit trigger, not here.
func (r *SessionRepo) UpdateClinicalTx(ctx context.Context, tx *sql.Tx, sessionID int64, status string, notes *string, painPre, painPost *int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE Sessions
		 SET Status = ?, Notes = ?, PainPre = ?, PainPost = ?
		 WHERE SessionID = ?`,
		status, notes, painPre, painPost, sessionID)
	return mapSlotConflict(err)
}

// ReplaceExercisesTx deletes the session's exercise rows and reinserts the
// given list. Full-replace semantics; the caller filters invalid entries
// beforehand.
func (r *SessionRepo) ReplaceExercisesTx(ctx context.Context, tx *sql.Tx, sessionID int64, entries []schedule.ExerciseEntry) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM SessionExercises WHERE SessionID = ?", sessionID); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO SessionExercises (SessionID, ExerciseID, Sets, Reps, Resistance)
			 VALUES (?, ?, ?, ?, ?)`,
			sessionID, e.ExerciseID, e.Sets, e.Reps, e.Resistance); err != nil {
			return err
		}
	}
	return nil
}

// UpsertOutcomeTx inserts an outcome measure or, when the
// (PatientID, MeasureName, TakenOn) key already exists, overwrites score and
// notes only. Repeat submissions therefore stay idempotent.
func (r *SessionRepo) UpsertOutcomeTx(ctx context.Context, tx *sql.Tx, patientID int64, o schedule.OutcomeEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO OutcomeMeasures (PatientID, MeasureName, Score, TakenOn, Notes)
		 VALUES (?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE Score = VALUES(Score), Notes = VALUES(Notes)`,
		patientID, o.MeasureName, o.Score, o.TakenOn, o.Notes)
	return err
}

// ListUpcomingByPatient returns the patient's Scheduled future sessions from
// the upcoming view, ascending.
func (r *SessionRepo) ListUpcomingByPatient(ctx context.Context, patientID int64) ([]model.SessionListItem, error) {
	return r.listFromView(ctx,
		`SELECT SessionID, DATE_FORMAT(SessionDate, '%Y-%m-%d'), TIME_FORMAT(SessionTime, '%H:%i:%s'),
		        Status, PainPre, Notes, TherapistID, TherapistName, Specialty
		 FROM vw_patient_upcoming_sessions
		 WHERE PatientID = ?
		 ORDER BY SessionDate ASC, SessionTime ASC`, patientID)
}

// ListPastByPatient returns the patient's ten most recent past sessions from
// the past view, descending.
func (r *SessionRepo) ListPastByPatient(ctx context.Context, patientID int64) ([]model.SessionListItem, error) {
	return r.listFromView(ctx,
		`SELECT SessionID, DATE_FORMAT(SessionDate, '%Y-%m-%d'), TIME_FORMAT(SessionTime, '%H:%i:%s'),
		        Status, PainPre, Notes, TherapistID, TherapistName, Specialty
		 FROM vw_patient_past_sessions
		 WHERE PatientID = ?
		 ORDER BY SessionDate DESC, SessionTime DESC
		 LIMIT 10`, patientID)
}

func (r *SessionRepo) listFromView(ctx context.Context, query string, patientID int64) ([]model.SessionListItem, error) {
	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.SessionListItem, 0)
	for rows.Next() {
		var it model.SessionListItem
		if err := rows.Scan(&it.SessionID, &it.SessionDate, &it.SessionTime, &it.Status,
			&it.PainPre, &it.Notes, &it.TherapistID, &it.TherapistName, &it.Specialty); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// mapSlotConflict converts unique-key violations on the two exclusivity keys
// into their sentinel errors and passes everything else through.
func mapSlotConflict(err error) error {
	if err == nil {
		return nil
	}
	if duplicateKey(err, "uq_therapist_slot") {
		return ErrSlotTaken
	}
	if duplicateKey(err, "uq_patient_day") {
		return ErrPatientDoubleBooked
	}
	return err
}
