package model

// Exercise is one entry of the exercise catalog therapists prescribe from.
type Exercise struct {
	ExerciseID int64  `json:"exerciseId"`
	Name       string `json:"name"`
	BodyRegion string `json:"bodyRegion"`
	Difficulty int    `json:"difficulty"`
}
