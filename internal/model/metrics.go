package model

// Admin reporting shapes backing GET /admin/metrics.

// NoShowRate is the monthly no-show ratio for one therapist.
type NoShowRate struct {
	TherapistID   int64   `json:"therapistId"`
	TherapistName string  `json:"therapistName"`
	Month         string  `json:"month"` // YYYY-MM
	TotalSessions int     `json:"totalSessions"`
	NoShows       int     `json:"noShows"`
	Rate          float64 `json:"rate"`
}

// OutcomeChange compares a patient's first and latest score for a measure.
type OutcomeChange struct {
	PatientID     int64   `json:"patientId"`
	PatientName   string  `json:"patientName"`
	MeasureName   string  `json:"measureName"`
	BaselineScore float64 `json:"baselineScore"`
	LatestScore   float64 `json:"latestScore"`
	Delta         float64 `json:"delta"`
}

// ExerciseMetric counts how often an exercise has been prescribed.
type ExerciseMetric struct {
	ExerciseName  string `json:"exerciseName"`
	Prescriptions int    `json:"prescriptions"`
}

// OutcomeDetail is one raw outcome-measure row with the patient name joined.
type OutcomeDetail struct {
	OutcomeID   int64   `json:"outcomeId"`
	PatientID   int64   `json:"patientId"`
	PatientName string  `json:"patientName"`
	MeasureName string  `json:"measureName"`
	Score       float64 `json:"score"`
	TakenOn     string  `json:"takenOn"`
	Notes       *string `json:"notes"`
}

// ShoulderOrder is one prescription of a shoulder exercise with session
// context, used for the drill-down table.
type ShoulderOrder struct {
	ExerciseName  string `json:"exerciseName"`
	SessionID     int64  `json:"sessionId"`
	SessionDate   string `json:"sessionDate"`
	PatientName   string `json:"patientName"`
	TherapistName string `json:"therapistName"`
}

// AdminMetrics bundles every admin report into one response.
type AdminMetrics struct {
	NoShowRates          []NoShowRate     `json:"noShowRates"`
	OutcomeChanges       []OutcomeChange  `json:"outcomeChanges"`
	TopShoulderExercises []ExerciseMetric `json:"topShoulderExercises"`
	OutcomeDetails       []OutcomeDetail  `json:"outcomeDetails"`
	ShoulderOrders       []ShoulderOrder  `json:"shoulderOrders"`
}
