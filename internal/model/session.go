package model

// Session is one scheduled appointment between a patient and a therapist.
// Sessions are never hard-deleted: cancellation flips Status to Canceled and
// the row stays behind, excluded from slot-conflict checks.
//
// Fields:
//  SessionID   – primary key identifier.
//  PatientID   – patient the session belongs to.
//  TherapistID – staff id of the treating therapist.
//  SessionDate – calendar day (YYYY-MM-DD).
//  SessionTime – one of the nine hourly slots, HH:MM:SS.
//  Status      – Scheduled, Completed, Canceled or No-Show.
//  PainPre     – patient-reported pain 0–10 before the session (nullable).
//  PainPost    – pain 0–10 after the session (nullable).
//  Notes       – free text (nullable).
type Session struct {
	SessionID   int64   `json:"sessionId"`
	PatientID   int64   `json:"patientId"`
	TherapistID int64   `json:"therapistId"`
	SessionDate string  `json:"sessionDate"`
	SessionTime string  `json:"sessionTime"`
	Status      string  `json:"status"`
	PainPre     *int    `json:"painPre"`
	PainPost    *int    `json:"painPost"`
	Notes       *string `json:"notes"`
}

// SessionListItem is a view-backed row for the patient session lists and the
// therapist schedule, joining in the counterpart's display name.
type SessionListItem struct {
	SessionID     int64   `json:"sessionId"`
	SessionDate   string  `json:"sessionDate"`
	SessionTime   string  `json:"sessionTime"`
	Status        string  `json:"status"`
	PainPre       *int    `json:"painPre"`
	Notes         *string `json:"notes"`
	TherapistID   int64   `json:"therapistId"`
	TherapistName string  `json:"therapistName"`
	Specialty     *string `json:"specialty"`
}
