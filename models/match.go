package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusPaused    MatchStatus = "paused"
	MatchStatusFinished  MatchStatus = "finished"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// Match is owned by the lifecycle engine. Score1/Score2 cache the event
// ledger and move only through relative increments inside the same
// transaction as the event insert, or through an audited admin override.
type Match struct {
	ID         int         `json:"id"`
	CategoryID int         `json:"category_id"`
	Team1ID    int         `json:"team1_id"`
	Team2ID    int         `json:"team2_id"`
	MatchTime  time.Time   `json:"match_time"`
	GroupLabel *string     `json:"group_label,omitempty"`
	Status     MatchStatus `json:"status"`
	Score1     int         `json:"score1"`
	Score2     int         `json:"score2"`
	Period     *int        `json:"period,omitempty"`
	CreatedBy  int         `json:"created_by"`
	UpdatedBy  *int        `json:"updated_by,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// MatchDetail is the read-side payload: the match plus its full ledger.
type MatchDetail struct {
	Match  *Match              `json:"match"`
	Events []*MatchEventDetail `json:"events"`
}

// TeamRef carries the minimum team identity the schedule generator needs.
type TeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
