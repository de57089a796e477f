package database

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/go-sql-driver/mysql"
)

// MySQL error numbers tolerated during idempotent DDL.
const (
	errDupKeyName       = 1061 // index already exists
	errCheckDupName     = 3822 // check constraint already exists
	errBinlogNeedsSuper = 1419 // trigger creation without SUPER/log_bin_trust
)

var baseTables = []string{
	`CREATE TABLE IF NOT EXISTS Patients (
		PatientID INT PRIMARY KEY AUTO_INCREMENT,
		Name VARCHAR(120) NOT NULL,
		DOB DATE NOT NULL,
		Phone VARCHAR(30) NOT NULL,
		CreatedAt TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS Staff (
		StaffID INT PRIMARY KEY AUTO_INCREMENT,
		StaffName VARCHAR(120) NOT NULL
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS Therapist (
		StaffID INT PRIMARY KEY,
		Specialty VARCHAR(120) NOT NULL DEFAULT 'General',
		CONSTRAINT fk_therapist_staff
			FOREIGN KEY (StaffID) REFERENCES Staff(StaffID)
			ON UPDATE CASCADE
			ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS Exercises (
		ExerciseID INT PRIMARY KEY AUTO_INCREMENT,
		Name VARCHAR(120) NOT NULL,
		BodyRegion VARCHAR(60) NOT NULL,
		Difficulty TINYINT NOT NULL DEFAULT 1
	) ENGINE=InnoDB`,

	// SlotClaim is NULL for Canceled rows, which opts them out of both unique
	// keys: the database enforces slot exclusivity for live sessions only,
	// so a canceled slot can always be re-booked.
	`CREATE TABLE IF NOT EXISTS Sessions (
		SessionID INT PRIMARY KEY AUTO_INCREMENT,
		PatientID INT NOT NULL,
		TherapistID INT NOT NULL,
		SessionDate DATE NOT NULL,
		SessionTime TIME NOT NULL,
		Status ENUM('Scheduled','Completed','Canceled','No-Show') NOT NULL DEFAULT 'Scheduled',
		PainPre TINYINT NULL,
		PainPost TINYINT NULL,
		Notes TEXT NULL,
		SlotClaim TINYINT GENERATED ALWAYS AS (CASE WHEN Status = 'Canceled' THEN NULL ELSE 1 END) STORED,
		CONSTRAINT fk_sessions_patient
			FOREIGN KEY (PatientID) REFERENCES Patients(PatientID)
			ON UPDATE CASCADE
			ON DELETE CASCADE,
		CONSTRAINT fk_sessions_therapist
			FOREIGN KEY (TherapistID) REFERENCES Therapist(StaffID)
			ON UPDATE CASCADE
			ON DELETE CASCADE,
		CONSTRAINT uq_therapist_slot UNIQUE (TherapistID, SessionDate, SessionTime, SlotClaim),
		CONSTRAINT uq_patient_day UNIQUE (PatientID, SessionDate, SlotClaim),
		CONSTRAINT chk_session_time CHECK (SessionTime BETWEEN '08:00:00' AND '16:00:00')
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS SessionExercises (
		SessionExerciseID INT PRIMARY KEY AUTO_INCREMENT,
		SessionID INT NOT NULL,
		ExerciseID INT NOT NULL,
		Sets INT NOT NULL,
		Reps INT NOT NULL,
		Resistance VARCHAR(60) NULL,
		CONSTRAINT fk_sessionexercises_session
			FOREIGN KEY (SessionID) REFERENCES Sessions(SessionID)
			ON UPDATE CASCADE
			ON DELETE CASCADE,
		CONSTRAINT fk_sessionexercises_exercise
			FOREIGN KEY (ExerciseID) REFERENCES Exercises(ExerciseID)
			ON UPDATE CASCADE
			ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS OutcomeMeasures (
		OutcomeID INT PRIMARY KEY AUTO_INCREMENT,
		PatientID INT NOT NULL,
		MeasureName VARCHAR(120) NOT NULL,
		Score DECIMAL(5,2) NOT NULL,
		TakenOn DATE NOT NULL,
		Notes TEXT NULL,
		CONSTRAINT fk_outcome_patient
			FOREIGN KEY (PatientID) REFERENCES Patients(PatientID)
			ON UPDATE CASCADE
			ON DELETE CASCADE,
		CONSTRAINT uq_outcome_measure UNIQUE (PatientID, MeasureName, TakenOn)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS Referrals (
		ReferralID INT PRIMARY KEY AUTO_INCREMENT,
		PatientID INT NOT NULL,
		DXCode VARCHAR(20) NOT NULL,
		ReferralDate DATE NOT NULL,
		ReferringProvider VARCHAR(120) NOT NULL,
		CONSTRAINT fk_referrals_patient
			FOREIGN KEY (PatientID) REFERENCES Patients(PatientID)
			ON UPDATE CASCADE
			ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS Users (
		UserID INT PRIMARY KEY AUTO_INCREMENT,
		Username VARCHAR(60) NOT NULL UNIQUE,
		PasswordHash VARBINARY(255) NOT NULL,
		PasswordSalt VARBINARY(255) NOT NULL,
		Role ENUM('pending','patient','therapist','admin') NOT NULL DEFAULT 'pending',
		PatientID INT NULL UNIQUE,
		StaffID INT NULL UNIQUE,
		NeedsPasswordReset TINYINT(1) NOT NULL DEFAULT 0,
		CreatedAt TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UpdatedAt TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_users_patient
			FOREIGN KEY (PatientID) REFERENCES Patients(PatientID)
			ON UPDATE CASCADE
			ON DELETE CASCADE,
		CONSTRAINT fk_users_staff
			FOREIGN KEY (StaffID) REFERENCES Staff(StaffID)
			ON UPDATE CASCADE
			ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS SessionAudit (
		AuditID INT PRIMARY KEY AUTO_INCREMENT,
		SessionID INT NOT NULL,
		OldStatus ENUM('Scheduled','Completed','Canceled','No-Show') NOT NULL,
		NewStatus ENUM('Scheduled','Completed','Canceled','No-Show') NOT NULL,
		ChangedAt TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_audit_session
			FOREIGN KEY (SessionID) REFERENCES Sessions(SessionID)
			ON UPDATE CASCADE
			ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS RefreshTokens (
		TokenID INT PRIMARY KEY AUTO_INCREMENT,
		UserID INT NOT NULL,
		TokenHash CHAR(64) NOT NULL UNIQUE,
		ExpiresAt DATETIME NOT NULL,
		RevokedAt DATETIME NULL,
		CreatedAt TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_tokens_user
			FOREIGN KEY (UserID) REFERENCES Users(UserID)
			ON UPDATE CASCADE
			ON DELETE CASCADE
	) ENGINE=InnoDB`,
}

var views = []string{
	`CREATE OR REPLACE VIEW vw_patient_upcoming_sessions AS
	SELECT Sessions.SessionID,
	       Sessions.PatientID,
	       Sessions.SessionDate,
	       Sessions.SessionTime,
	       Sessions.Status,
	       Sessions.PainPre,
	       Sessions.Notes,
	       Sessions.TherapistID,
	       Staff.StaffName AS TherapistName,
	       Therapist.Specialty
	FROM Sessions
	INNER JOIN Therapist ON Therapist.StaffID = Sessions.TherapistID
	INNER JOIN Staff ON Staff.StaffID = Therapist.StaffID
	WHERE Sessions.Status = 'Scheduled'
	  AND Sessions.SessionDate >= CURDATE()`,

	`CREATE OR REPLACE VIEW vw_patient_past_sessions AS
	SELECT Sessions.SessionID,
	       Sessions.PatientID,
	       Sessions.SessionDate,
	       Sessions.SessionTime,
	       Sessions.Status,
	       Sessions.PainPre,
	       Sessions.Notes,
	       Sessions.TherapistID,
	       Staff.StaffName AS TherapistName,
	       Therapist.Specialty
	FROM Sessions
	INNER JOIN Therapist ON Therapist.StaffID = Sessions.TherapistID
	INNER JOIN Staff ON Staff.StaffID = Therapist.StaffID
	WHERE Sessions.SessionDate < CURDATE()
	   OR Sessions.Status <> 'Scheduled'`,

	`CREATE OR REPLACE VIEW vw_therapist_schedule AS
	SELECT Sessions.SessionID,
	       Sessions.TherapistID,
	       Sessions.PatientID,
	       Patients.Name AS PatientName,
	       Sessions.SessionDate,
	       Sessions.SessionTime,
	       Sessions.Status,
	       Sessions.PainPre,
	       Sessions.Notes
	FROM Sessions
	INNER JOIN Patients ON Patients.PatientID = Sessions.PatientID`,

	`CREATE OR REPLACE VIEW vw_outcome_progress AS
	SELECT OutcomeMeasures.PatientID,
	       Patients.Name AS PatientName,
	       OutcomeMeasures.MeasureName,
	       MIN(OutcomeMeasures.Score) AS MinScore,
	       MAX(OutcomeMeasures.Score) AS MaxScore,
	       COUNT(*) AS Measurements
	FROM OutcomeMeasures
	INNER JOIN Patients ON Patients.PatientID = OutcomeMeasures.PatientID
	GROUP BY OutcomeMeasures.PatientID, Patients.Name, OutcomeMeasures.MeasureName`,
}

// Triggers keep persistence-layer concerns out of application code: status
// changes are audited, blank resistance defaults, and score bounds hold even
// for writers that bypass the API.
var triggers = []struct{ drop, create string }{
	{
		drop: "DROP TRIGGER IF EXISTS trg_sessionexercise_default_resistance",
		create: `CREATE TRIGGER trg_sessionexercise_default_resistance
		BEFORE INSERT ON SessionExercises
		FOR EACH ROW
		BEGIN
			IF NEW.Resistance IS NULL OR NEW.Resistance = '' THEN
				SET NEW.Resistance = 'Bodyweight';
			END IF;
		END`,
	},
	{
		drop: "DROP TRIGGER IF EXISTS trg_outcome_score_insert_check",
		create: `CREATE TRIGGER trg_outcome_score_insert_check
		BEFORE INSERT ON OutcomeMeasures
		FOR EACH ROW
		BEGIN
			IF NEW.Score < 0 OR NEW.Score > 100 THEN
				SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'Outcome score must be between 0 and 100';
			END IF;
		END`,
	},
	{
		drop: "DROP TRIGGER IF EXISTS trg_session_status_audit",
		create: `CREATE TRIGGER trg_session_status_audit
		AFTER UPDATE ON Sessions
		FOR EACH ROW
		BEGIN
			IF NEW.Status <> OLD.Status THEN
				INSERT INTO SessionAudit (SessionID, OldStatus, NewStatus)
				VALUES (NEW.SessionID, OLD.Status, NEW.Status);
			END IF;
		END`,
	},
}

// Ensure creates or upgrades the schema idempotently at startup: base
// tables, the slot-exclusivity keys on legacy installs, views and triggers.
func Ensure(ctx context.Context, db *sql.DB) error {
	for _, ddl := range baseTables {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	if err := ensureSessionsUpgrades(ctx, db); err != nil {
		return err
	}
	for _, v := range views {
		if _, err := db.ExecContext(ctx, v); err != nil {
			return err
		}
	}
	for _, t := range triggers {
		if _, err := db.ExecContext(ctx, t.drop); err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, t.create); err != nil {
			if mysqlErrno(err) == errBinlogNeedsSuper {
				log.Printf("skipping trigger creation: insufficient privileges (set log_bin_trust_function_creators=1)")
				continue
			}
			return err
		}
	}
	return nil
}

// ensureSessionsUpgrades brings a pre-existing Sessions table up to the
// current shape: the SlotClaim generated column, both unique keys and the
// time-range check.
func ensureSessionsUpgrades(ctx context.Context, db *sql.DB) error {
	hasClaim, err := columnExists(ctx, db, "Sessions", "SlotClaim")
	if err != nil {
		return err
	}
	if !hasClaim {
		if _, err := db.ExecContext(ctx,
			`ALTER TABLE Sessions ADD COLUMN SlotClaim TINYINT
			 GENERATED ALWAYS AS (CASE WHEN Status = 'Canceled' THEN NULL ELSE 1 END) STORED`); err != nil {
			return err
		}
	}

	for _, stmt := range []string{
		"ALTER TABLE Sessions ADD CONSTRAINT uq_therapist_slot UNIQUE (TherapistID, SessionDate, SessionTime, SlotClaim)",
		"ALTER TABLE Sessions ADD CONSTRAINT uq_patient_day UNIQUE (PatientID, SessionDate, SlotClaim)",
		"ALTER TABLE Sessions ADD CONSTRAINT chk_session_time CHECK (SessionTime BETWEEN '08:00:00' AND '16:00:00')",
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			switch mysqlErrno(err) {
			case errDupKeyName, errCheckDupName:
				continue // already present
			default:
				return err
			}
		}
	}
	return nil
}

func columnExists(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS
		 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?
		 LIMIT 1`, table, column).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func mysqlErrno(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}
