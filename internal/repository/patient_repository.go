package repository

import (
	"context"
	"database/sql"
)

// PatientRepo persists patient rows and onboarding referrals.
type PatientRepo struct{ DB *sql.DB }

func NewPatientRepo(db *sql.DB) *PatientRepo { return &PatientRepo{DB: db} }

// CreateTx inserts a patient row and returns its id. Part of the signup
// transaction together with the paired Users insert.
func (r *PatientRepo) CreateTx(ctx context.Context, tx *sql.Tx, name, dob, phone string) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO Patients (Name, DOB, Phone) VALUES (?, ?, ?)",
		name, dob, phone)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ExistsTx reports whether the patient id references a row.
func (r *PatientRepo) ExistsTx(ctx context.Context, tx *sql.Tx, patientID int64) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM Patients WHERE PatientID = ? LIMIT 1", patientID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetName returns the patient's display name.
func (r *PatientRepo) GetName(ctx context.Context, patientID int64) (string, error) {
	var name string
	err := r.DB.QueryRowContext(ctx,
		"SELECT Name FROM Patients WHERE PatientID = ? LIMIT 1", patientID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", ErrPatientNotFound
	}
	return name, err
}

// CreateReferralTx records the onboarding referral for a patient.
func (r *PatientRepo) CreateReferralTx(ctx context.Context, tx *sql.Tx, patientID int64, dxCode, referralDate, referringProvider string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO Referrals (PatientID, DXCode, ReferralDate, ReferringProvider)
		 VALUES (?, ?, ?, ?)`,
		patientID, dxCode, referralDate, referringProvider)
	return err
}
