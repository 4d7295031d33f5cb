package models

import "time"

type BracketRound string

const (
	BracketRoundSemifinal  BracketRound = "semifinal"
	BracketRoundFinal      BracketRound = "final"
	BracketRoundThirdPlace BracketRound = "third_place"
)

// BracketStatusAwaiting marks a slot whose teams are not known yet
// (final and third place before the semifinals resolve). Once a match is
// linked the slot mirrors the match's lifecycle status instead.
const BracketStatusAwaiting = "awaiting"

// Bracket references a Match, never owns it. Team slots stay nil until
// qualification is known.
type Bracket struct {
	ID         int          `json:"id"`
	CategoryID int          `json:"category_id"`
	Round      BracketRound `json:"round"`
	SeedCode   string       `json:"seed_code"`
	Team1ID    *int         `json:"team1_id,omitempty"`
	Team2ID    *int         `json:"team2_id,omitempty"`
	MatchID    *int         `json:"match_id,omitempty"`
	Status     string       `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}
