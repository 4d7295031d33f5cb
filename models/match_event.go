package models

import "time"

type EventKind string

const (
	EventKindGoal       EventKind = "GOAL"
	EventKindOwnGoal    EventKind = "OWN_GOAL"
	EventKindYellowCard EventKind = "YELLOW_CARD"
	EventKindRedCard    EventKind = "RED_CARD"
)

func (k EventKind) Valid() bool {
	switch k {
	case EventKindGoal, EventKindOwnGoal, EventKindYellowCard, EventKindRedCard:
		return true
	}
	return false
}

// Scoring reports whether the event moves the score. For OWN_GOAL the
// credited side is the opponent of the event's team.
func (k EventKind) Scoring() bool {
	return k == EventKindGoal || k == EventKindOwnGoal
}

// MatchEvent is append-only. The ledger of events is the sole source of
// truth for derived score and player statistics.
type MatchEvent struct {
	ID         int       `json:"id"`
	MatchID    int       `json:"match_id"`
	CategoryID int       `json:"category_id"`
	TeamID     int       `json:"team_id"`
	PlayerID   int       `json:"player_id"`
	Kind       EventKind `json:"kind"`
	Minute     int       `json:"minute"`
	CreatedBy  int       `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// MatchEventDetail joins the event with display data for broadcast.
type MatchEventDetail struct {
	MatchEvent
	PlayerName string `json:"player_name"`
	TeamName   string `json:"team_name"`
}
