package models

import "time"

// Standing is one row of a group table. The table itself is owned by the
// standings collaborator; the engine only reads it for bracket seeding and
// returns it from finish.
type Standing struct {
	ID             int       `json:"id"`
	CategoryID     int       `json:"category_id"`
	GroupLabel     string    `json:"group_label"`
	TeamID         int       `json:"team_id"`
	TeamName       string    `json:"team_name,omitempty"`
	Played         int       `json:"played"`
	Wins           int       `json:"wins"`
	Draws          int       `json:"draws"`
	Losses         int       `json:"losses"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	GoalDifference int       `json:"goal_difference"`
	Points         int       `json:"points"`
	UpdatedAt      time.Time `json:"updated_at"`
}
