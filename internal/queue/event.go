// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// SessionBookedEvent is published after a booking commits. It carries enough
// context for downstream consumers to log or notify without querying the
// primary database.
type SessionBookedEvent struct {
	SessionID     int64  `json:"session_id"`
	PatientID     int64  `json:"patient_id"`
	TherapistID   int64  `json:"therapist_id"`
	TherapistName string `json:"therapist_name,omitempty"`
	SessionDate   string `json:"session_date"`
	SessionTime   string `json:"session_time"`
	Status        string `json:"status"`
	BookedAt      string `json:"booked_at"`
}
