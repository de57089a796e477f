package repository

import (
	"context"
	"database/sql"

	"github.com/ptwell/clinic-scheduler/internal/model"
)

// MetricsRepo runs the admin reporting aggregations.
type MetricsRepo struct{ DB *sql.DB }

func NewMetricsRepo(db *sql.DB) *MetricsRepo { return &MetricsRepo{DB: db} }

// NoShowRates groups sessions by therapist and month and computes the
// no-show ratio.
func (r *MetricsRepo) NoShowRates(ctx context.Context) ([]model.NoShowRate, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT Sessions.TherapistID, Staff.StaffName,
		        DATE_FORMAT(Sessions.SessionDate, '%Y-%m') AS Month,
		        COUNT(*) AS TotalSessions,
		        SUM(CASE WHEN Sessions.Status = 'No-Show' THEN 1 ELSE 0 END) AS NoShows
		 FROM Sessions
		 INNER JOIN Staff ON Staff.StaffID = Sessions.TherapistID
		 GROUP BY Sessions.TherapistID, Staff.StaffName, Month
		 ORDER BY Month DESC, Staff.StaffName ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.NoShowRate, 0)
	for rows.Next() {
		var m model.NoShowRate
		if err := rows.Scan(&m.TherapistID, &m.TherapistName, &m.Month, &m.TotalSessions, &m.NoShows); err != nil {
			return nil, err
		}
		if m.TotalSessions > 0 {
			m.Rate = float64(m.NoShows) / float64(m.TotalSessions)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// OutcomeChanges compares each patient's baseline and latest score per
// measure and reports the delta.
func (r *MetricsRepo) OutcomeChanges(ctx context.Context) ([]model.OutcomeChange, error) {
	rows, err := r.DB.QueryContext(ctx,
		`WITH ranked AS (
			SELECT OutcomeMeasures.PatientID, Patients.Name AS PatientName,
			       OutcomeMeasures.MeasureName, OutcomeMeasures.Score,
			       ROW_NUMBER() OVER (PARTITION BY OutcomeMeasures.PatientID, OutcomeMeasures.MeasureName ORDER BY OutcomeMeasures.TakenOn ASC) AS rn_asc,
			       ROW_NUMBER() OVER (PARTITION BY OutcomeMeasures.PatientID, OutcomeMeasures.MeasureName ORDER BY OutcomeMeasures.TakenOn DESC) AS rn_desc
			FROM OutcomeMeasures
			INNER JOIN Patients ON Patients.PatientID = OutcomeMeasures.PatientID
		)
		SELECT PatientID, PatientName, MeasureName,
		       MAX(CASE WHEN rn_asc = 1 THEN Score END) AS BaselineScore,
		       MAX(CASE WHEN rn_desc = 1 THEN Score END) AS LatestScore
		FROM ranked
		GROUP BY PatientID, PatientName, MeasureName
		HAVING COUNT(*) > 1
		ORDER BY PatientName ASC, MeasureName ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.OutcomeChange, 0)
	for rows.Next() {
		var m model.OutcomeChange
		if err := rows.Scan(&m.PatientID, &m.PatientName, &m.MeasureName, &m.BaselineScore, &m.LatestScore); err != nil {
			return nil, err
		}
		m.Delta = m.LatestScore - m.BaselineScore
		out = append(out, m)
	}
	return out, rows.Err()
}

// TopShoulderExercises counts prescriptions of shoulder-region exercises,
// most prescribed first.
func (r *MetricsRepo) TopShoulderExercises(ctx context.Context) ([]model.ExerciseMetric, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT Exercises.Name, COUNT(*) AS Prescriptions
		 FROM SessionExercises
		 INNER JOIN Exercises ON Exercises.ExerciseID = SessionExercises.ExerciseID
		 WHERE Exercises.BodyRegion = 'Shoulder'
		 GROUP BY Exercises.Name
		 ORDER BY Prescriptions DESC, Exercises.Name ASC
		 LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ExerciseMetric, 0)
	for rows.Next() {
		var m model.ExerciseMetric
		if err := rows.Scan(&m.ExerciseName, &m.Prescriptions); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// OutcomeDetails lists raw outcome rows with patient names, newest first.
func (r *MetricsRepo) OutcomeDetails(ctx context.Context) ([]model.OutcomeDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT OutcomeMeasures.OutcomeID, OutcomeMeasures.PatientID, Patients.Name,
		        OutcomeMeasures.MeasureName, OutcomeMeasures.Score,
		        DATE_FORMAT(OutcomeMeasures.TakenOn, '%Y-%m-%d'), OutcomeMeasures.Notes
		 FROM OutcomeMeasures
		 INNER JOIN Patients ON Patients.PatientID = OutcomeMeasures.PatientID
		 ORDER BY OutcomeMeasures.TakenOn DESC, OutcomeMeasures.OutcomeID DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.OutcomeDetail, 0)
	for rows.Next() {
		var m model.OutcomeDetail
		if err := rows.Scan(&m.OutcomeID, &m.PatientID, &m.PatientName, &m.MeasureName,
			&m.Score, &m.TakenOn, &m.Notes); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ShoulderOrders lists every shoulder-exercise prescription with its session
// context for the drill-down table.
func (r *MetricsRepo) ShoulderOrders(ctx context.Context) ([]model.ShoulderOrder, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT Exercises.Name, Sessions.SessionID,
		        DATE_FORMAT(Sessions.SessionDate, '%Y-%m-%d'),
		        Patients.Name, Staff.StaffName
		 FROM SessionExercises
		 INNER JOIN Exercises ON Exercises.ExerciseID = SessionExercises.ExerciseID
		 INNER JOIN Sessions ON Sessions.SessionID = SessionExercises.SessionID
		 INNER JOIN Patients ON Patients.PatientID = Sessions.PatientID
		 INNER JOIN Staff ON Staff.StaffID = Sessions.TherapistID
		 WHERE Exercises.BodyRegion = 'Shoulder'
		 ORDER BY Sessions.SessionDate DESC, Sessions.SessionID DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ShoulderOrder, 0)
	for rows.Next() {
		var m model.ShoulderOrder
		if err := rows.Scan(&m.ExerciseName, &m.SessionID, &m.SessionDate, &m.PatientName, &m.TherapistName); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
