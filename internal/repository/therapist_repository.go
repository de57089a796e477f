package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ptwell/clinic-scheduler/internal/model"
)

// TherapistRepo reads the therapist directory, booked slots and the
// dashboard aggregates.
type TherapistRepo struct{ DB *sql.DB }

func NewTherapistRepo(db *sql.DB) *TherapistRepo { return &TherapistRepo{DB: db} }

// List returns the therapist directory ordered by name.
func (r *TherapistRepo) List(ctx context.Context) ([]model.Therapist, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT Therapist.StaffID, Staff.StaffName, Therapist.Specialty
		 FROM Therapist
		 INNER JOIN Staff ON Staff.StaffID = Therapist.StaffID
		 ORDER BY Staff.StaffName`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Therapist, 0)
	for rows.Next() {
		var t model.Therapist
		if err := rows.Scan(&t.TherapistID, &t.Name, &t.Specialty); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Exists reports whether the therapist id references a row.
func (r *TherapistRepo) Exists(ctx context.Context, therapistID int64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM Therapist WHERE StaffID = ? LIMIT 1", therapistID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ExistsTx is Exists inside a booking transaction.
func (r *TherapistRepo) ExistsTx(ctx context.Context, tx *sql.Tx, therapistID int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM Therapist WHERE StaffID = ? LIMIT 1", therapistID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// StaffName returns the display name for a staff id.
func (r *TherapistRepo) StaffName(ctx context.Context, staffID int64) (string, error) {
	var name string
	err := r.DB.QueryRowContext(ctx,
		"SELECT StaffName FROM Staff WHERE StaffID = ? LIMIT 1", staffID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrTherapistNotFound
	}
	return name, err
}

// BookedTimes returns the HH:MM:SS times of the therapist's non-Canceled
// sessions on a date. The availability endpoint subtracts these from the
// slot catalog.
func (r *TherapistRepo) BookedTimes(ctx context.Context, therapistID int64, date string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT TIME_FORMAT(SessionTime, '%H:%i:%s')
		 FROM Sessions
		 WHERE TherapistID = ? AND SessionDate = ? AND Status <> 'Canceled'`,
		therapistID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	times := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

// UpcomingSchedule lists the therapist's sessions from today onward via
// vw_therapist_schedule, ascending by date then time.
func (r *TherapistRepo) UpcomingSchedule(ctx context.Context, therapistID int64, today string) ([]model.TherapistScheduleItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT SessionID, DATE_FORMAT(SessionDate, '%Y-%m-%d'), TIME_FORMAT(SessionTime, '%H:%i:%s'),
		        Status, PainPre, Notes, PatientID, PatientName
		 FROM vw_therapist_schedule
		 WHERE TherapistID = ? AND SessionDate >= ?
		 ORDER BY SessionDate ASC, SessionTime ASC`,
		therapistID, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.TherapistScheduleItem, 0)
	for rows.Next() {
		var it model.TherapistScheduleItem
		if err := rows.Scan(&it.SessionID, &it.SessionDate, &it.SessionTime,
			&it.Status, &it.PainPre, &it.Notes, &it.PatientID, &it.PatientName); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// RecentSessionsByPatient returns the latest three past sessions per patient
// for the given patients, keyed by patient id.
func (r *TherapistRepo) RecentSessionsByPatient(ctx context.Context, therapistID int64, patientIDs []int64, today string) (map[int64][]model.PastSessionItem, error) {
	out := make(map[int64][]model.PastSessionItem, len(patientIDs))
	if len(patientIDs) == 0 {
		return out, nil
	}
	query := `WITH ranked AS (
		SELECT SessionID, PatientID,
		       DATE_FORMAT(SessionDate, '%Y-%m-%d') AS SessionDate,
		       TIME_FORMAT(SessionTime, '%H:%i:%s') AS SessionTime,
		       Status, PainPre, Notes,
		       ROW_NUMBER() OVER (PARTITION BY PatientID ORDER BY SessionDate DESC, SessionTime DESC) AS rn
		FROM Sessions
		WHERE PatientID IN (` + placeholders(len(patientIDs)) + `)
		  AND TherapistID = ?
		  AND SessionDate < ?
	)
	SELECT SessionID, PatientID, SessionDate, SessionTime, Status, PainPre, Notes
	FROM ranked
	WHERE rn <= 3`

	args := make([]any, 0, len(patientIDs)+2)
	for _, id := range patientIDs {
		args = append(args, id)
	}
	args = append(args, therapistID, today)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it        model.PastSessionItem
			patientID int64
		)
		if err := rows.Scan(&it.SessionID, &patientID, &it.SessionDate, &it.SessionTime,
			&it.Status, &it.PainPre, &it.Notes); err != nil {
			return nil, err
		}
		out[patientID] = append(out[patientID], it)
	}
	return out, rows.Err()
}

// OutcomeSummaries returns baseline and latest scores per (patient, measure)
// for the given patients, keyed by patient id.
func (r *TherapistRepo) OutcomeSummaries(ctx context.Context, patientIDs []int64) (map[int64][]model.OutcomeSummary, error) {
	out := make(map[int64][]model.OutcomeSummary, len(patientIDs))
	if len(patientIDs) == 0 {
		return out, nil
	}
	query := `WITH ranked AS (
		SELECT PatientID, MeasureName, Score,
		       DATE_FORMAT(TakenOn, '%Y-%m-%d') AS TakenOn,
		       ROW_NUMBER() OVER (PARTITION BY PatientID, MeasureName ORDER BY TakenOn ASC) AS rn_asc,
		       ROW_NUMBER() OVER (PARTITION BY PatientID, MeasureName ORDER BY TakenOn DESC) AS rn_desc
		FROM OutcomeMeasures
		WHERE PatientID IN (` + placeholders(len(patientIDs)) + `)
	)
	SELECT PatientID, MeasureName,
	       MAX(CASE WHEN rn_asc = 1 THEN Score END),
	       MAX(CASE WHEN rn_asc = 1 THEN TakenOn END),
	       MAX(CASE WHEN rn_desc = 1 THEN Score END),
	       MAX(CASE WHEN rn_desc = 1 THEN TakenOn END)
	FROM ranked
	GROUP BY PatientID, MeasureName`

	args := make([]any, 0, len(patientIDs))
	for _, id := range patientIDs {
		args = append(args, id)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s         model.OutcomeSummary
			patientID int64
		)
		if err := rows.Scan(&patientID, &s.MeasureName,
			&s.BaselineScore, &s.BaselineTakenOn, &s.LatestScore, &s.LatestTakenOn); err != nil {
			return nil, err
		}
		out[patientID] = append(out[patientID], s)
	}
	return out, rows.Err()
}

// placeholders builds "?, ?, ..." for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
