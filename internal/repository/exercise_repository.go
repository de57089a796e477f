package repository

import (
	"context"
	"database/sql"

	"github.com/ptwell/clinic-scheduler/internal/model"
)

// ExerciseRepo reads the exercise catalog.
type ExerciseRepo struct{ DB *sql.DB }

func NewExerciseRepo(db *sql.DB) *ExerciseRepo { return &ExerciseRepo{DB: db} }

// List returns the catalog ordered by name.
func (r *ExerciseRepo) List(ctx context.Context) ([]model.Exercise, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT ExerciseID, Name, BodyRegion, Difficulty FROM Exercises ORDER BY Name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Exercise, 0)
	for rows.Next() {
		var e model.Exercise
		if err := rows.Scan(&e.ExerciseID, &e.Name, &e.BodyRegion, &e.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
