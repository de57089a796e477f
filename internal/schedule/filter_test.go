package schedule

import (
	"math"
	"testing"
)

func TestFilterExercises(t *testing.T) {
	in := []ExerciseEntry{
		{ExerciseID: 1, Sets: 3, Reps: 10},
		{ExerciseID: 0, Sets: 3, Reps: 10},  // missing exercise
		{ExerciseID: 2, Sets: 0, Reps: 10},  // zero sets
		{ExerciseID: 3, Sets: 3, Reps: -1},  // negative reps
		{ExerciseID: 4, Sets: 2, Reps: 8, Resistance: strPtr("  red band ")},
		{ExerciseID: 5, Sets: 1, Reps: 12, Resistance: strPtr("   ")},
	}
	got := FilterExercises(in)
	if len(got) != 3 {
		t.Fatalf("expected 3 kept entries, got %d", len(got))
	}
	if got[1].Resistance == nil || *got[1].Resistance != "red band" {
		t.Errorf("resistance not trimmed: %v", got[1].Resistance)
	}
	if got[2].Resistance != nil {
		t.Errorf("blank resistance should become nil, got %q", *got[2].Resistance)
	}
}

func TestFilterExercisesAllInvalid(t *testing.T) {
	got := FilterExercises([]ExerciseEntry{{ExerciseID: -1}, {}})
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestFilterOutcomes(t *testing.T) {
	in := []OutcomeEntry{
		{MeasureName: "DASH", Score: 42.5, TakenOn: "2026-03-01"},
		{MeasureName: "   ", Score: 10, TakenOn: "2026-03-01"},        // blank name
		{MeasureName: "LEFS", Score: 10, TakenOn: "March 1"},          // bad date
		{MeasureName: "QuickDASH", Score: math.NaN(), TakenOn: "2026-03-01"},
		{MeasureName: "NPRS", Score: math.Inf(1), TakenOn: "2026-03-01"},
		{MeasureName: "  PSFS ", Score: 7, TakenOn: "2026-03-02", Notes: strPtr("  ")},
	}
	got := FilterOutcomes(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 kept entries, got %d: %v", len(got), got)
	}
	if got[1].MeasureName != "PSFS" {
		t.Errorf("measure name not trimmed: %q", got[1].MeasureName)
	}
	if got[1].Notes != nil {
		t.Errorf("blank notes should become nil")
	}
}
