package model

import "time"

// Difficulty values accepted for a logged hike.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Hike is one logged outing. Hikes are never edited after creation.
type Hike struct {
	ID              string    `json:"id"`
	TrailName       string    `json:"trail_name"`
	DistanceKm      float64   `json:"distance_km"`
	DurationMinutes int       `json:"duration_minutes"`
	Difficulty      string    `json:"difficulty"`
	ElevationGainM  *float64  `json:"elevation_gain_m"`
	Notes           *string   `json:"notes"`
	UserID          string    `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
}
