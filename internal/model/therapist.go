package model

// Therapist is a directory entry from the Therapist/Staff join.
type Therapist struct {
	TherapistID int64  `json:"therapistId"` // Therapist.StaffID
	Name        string `json:"name"`        // Staff.StaffName
	Specialty   string `json:"specialty"`
}

// TherapistScheduleItem is one upcoming session on a therapist's dashboard,
// carrying the patient's name alongside the session fields.
type TherapistScheduleItem struct {
	SessionID   int64   `json:"sessionId"`
	SessionDate string  `json:"sessionDate"`
	SessionTime string  `json:"sessionTime"`
	Status      string  `json:"status"`
	PainPre     *int    `json:"painPre"`
	Notes       *string `json:"notes"`
	PatientID   int64   `json:"patientId"`
	PatientName string  `json:"patientName"`
}

// PastSessionItem is one of a patient's most recent sessions with this
// therapist, shown in the dashboard's per-patient summary.
type PastSessionItem struct {
	SessionID   int64   `json:"sessionId"`
	SessionDate string  `json:"sessionDate"`
	SessionTime string  `json:"sessionTime"`
	Status      string  `json:"status"`
	PainPre     *int    `json:"painPre"`
	Notes       *string `json:"notes"`
}

// OutcomeSummary pairs a measure's first and latest recorded scores for one
// patient so the dashboard can show progress at a glance.
type OutcomeSummary struct {
	MeasureName     string   `json:"measureName"`
	BaselineScore   *float64 `json:"baselineScore"`
	BaselineTakenOn *string  `json:"baselineTakenOn"`
	LatestScore     *float64 `json:"latestScore"`
	LatestTakenOn   *string  `json:"latestTakenOn"`
}

// PatientSummary aggregates a patient's recent history for the dashboard.
type PatientSummary struct {
	PreviousSessions []PastSessionItem `json:"previousSessions"`
	OutcomeSummaries []OutcomeSummary  `json:"outcomeSummaries"`
}

// TherapistDashboard is the full payload of GET /therapists/:id/dashboard.
type TherapistDashboard struct {
	UpcomingSessions []TherapistScheduleItem  `json:"upcomingSessions"`
	PatientSummaries map[int64]PatientSummary `json:"patientSummaries"`
}
