package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ptwell/clinic-scheduler/internal/utils"
)

// User mirrors the Users table. Credentials are a PBKDF2 hash/salt pair;
// Role starts as "pending" and is promoted to "patient" when onboarding
// completes.
type User struct {
	UserID             int64
	Username           string
	PasswordHash       []byte
	PasswordSalt       []byte
	Role               string
	PatientID          sql.NullInt64
	StaffID            sql.NullInt64
	NeedsPasswordReset bool
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// CreatePendingPatientTx inserts a pending user bound to a freshly created
// patient row. Runs inside the signup transaction so a patient row is never
// left behind without its credential record.
func (r *UserRepo) CreatePendingPatientTx(ctx context.Context, tx *sql.Tx, username string, hash, salt []byte, patientID int64) (int64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	res, err := tx.ExecContext(ctx,
		`INSERT INTO Users (Username, PasswordHash, PasswordSalt, Role, PatientID)
		 VALUES (?, ?, ?, 'pending', ?)`,
		username, hash, salt, patientID)
	if err != nil {
		if duplicateKey(err, "Username") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	return res.LastInsertId()
}

// UsernameExistsTx checks for an existing username inside a transaction.
func (r *UserRepo) UsernameExistsTx(ctx context.Context, tx *sql.Tx, username string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var one int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM Users WHERE Username = ? LIMIT 1", username).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var u User
	err := r.DB.QueryRowContext(ctx,
		`SELECT UserID, Username, PasswordHash, PasswordSalt, Role, PatientID, StaffID, NeedsPasswordReset
		 FROM Users WHERE Username = ? LIMIT 1`, username).
		Scan(&u.UserID, &u.Username, &u.PasswordHash, &u.PasswordSalt, &u.Role, &u.PatientID, &u.StaffID, &u.NeedsPasswordReset)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		`SELECT UserID, Username, PasswordHash, PasswordSalt, Role, PatientID, StaffID, NeedsPasswordReset
		 FROM Users WHERE UserID = ? LIMIT 1`, id).
		Scan(&u.UserID, &u.Username, &u.PasswordHash, &u.PasswordSalt, &u.Role, &u.PatientID, &u.StaffID, &u.NeedsPasswordReset)
	return u, err
}

// UpdatePassword replaces the credential pair and clears the reset flag.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID int64, hash, salt []byte) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE Users SET PasswordHash = ?, PasswordSalt = ?, NeedsPasswordReset = 0 WHERE UserID = ?",
		hash, salt, userID)
	return err
}

// PromotePatientTx moves a pending user to the patient role once onboarding
// has recorded the referral.
func (r *UserRepo) PromotePatientTx(ctx context.Context, tx *sql.Tx, patientID int64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE Users SET Role = 'patient' WHERE PatientID = ? AND Role = 'pending'", patientID)
	return err
}

// VerifyCredentials checks a plain password against the stored record.
func (u User) VerifyCredentials(plain string, iterations int) bool {
	return utils.VerifyPassword(plain, u.PasswordHash, u.PasswordSalt, iterations)
}
