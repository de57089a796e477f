package schedule

import (
	"math"
	"strings"
)

// ExerciseEntry is one prescribed exercise row submitted when a therapist
// finalizes a session.
type ExerciseEntry struct {
	ExerciseID int64   `json:"exerciseId"`
	Sets       int     `json:"sets"`
	Reps       int     `json:"reps"`
	Resistance *string `json:"resistance"`
}

// OutcomeEntry is one outcome-measure row submitted at finalize time.
type OutcomeEntry struct {
	MeasureName string  `json:"measureName"`
	Score       float64 `json:"score"`
	TakenOn     string  `json:"takenOn"`
	Notes       *string `json:"notes"`
}

// FilterExercises drops entries that fail the row rules (positive exerciseId,
// positive sets and reps) and keeps the rest. Invalid rows are skipped
// silently rather than failing the whole request; this is the documented
// permissive policy, not an oversight. Blank resistance becomes nil and is
// defaulted to "Bodyweight" by the insert trigger.
func FilterExercises(entries []ExerciseEntry) []ExerciseEntry {
	kept := make([]ExerciseEntry, 0, len(entries))
	for _, e := range entries {
		if e.ExerciseID <= 0 || e.Sets <= 0 || e.Reps <= 0 {
			continue
		}
		if e.Resistance != nil {
			trimmed := strings.TrimSpace(*e.Resistance)
			if trimmed == "" {
				e.Resistance = nil
			} else {
				e.Resistance = &trimmed
			}
		}
		kept = append(kept, e)
	}
	return kept
}

// FilterOutcomes drops entries with a blank measure name, an unparseable
// taken-on date or a non-finite score. Same skip-invalid-keep-valid policy as
// FilterExercises.
func FilterOutcomes(entries []OutcomeEntry) []OutcomeEntry {
	kept := make([]OutcomeEntry, 0, len(entries))
	for _, o := range entries {
		o.MeasureName = strings.TrimSpace(o.MeasureName)
		if o.MeasureName == "" {
			continue
		}
		if _, ok := ParseDate(o.TakenOn); !ok {
			continue
		}
		if math.IsNaN(o.Score) || math.IsInf(o.Score, 0) {
			continue
		}
		o.Notes = NormalizeNotes(o.Notes)
		kept = append(kept, o)
	}
	return kept
}
