package services

import "errors"

// Domain errors shared across services, matched with errors.Is at the HTTP
// boundary and mapped to structured failure responses there.
var (
	// Lifecycle guards
	ErrInvalidTransition  = errors.New("invalid match status transition")
	ErrImmutableState     = errors.New("match is finished and can no longer be mutated")
	ErrMatchNotInProgress = errors.New("match is not in progress")
	ErrMatchNotEditable   = errors.New("match can only be edited while scheduled")

	// Event ledger
	ErrPlayerNotEligible = errors.New("player is not registered for this team in the category")
	ErrInvalidEventKind  = errors.New("unknown match event kind")
	ErrTeamNotInMatch    = errors.New("team does not play in this match")

	// Scheduling preconditions
	ErrInsufficientTeams      = errors.New("not enough teams to generate group fixtures")
	ErrInsufficientQualifiers = errors.New("fewer than four teams qualified for the final stage")
	ErrSchedulingConflict     = errors.New("team is already booked at this time")
	ErrUnsupportedFormat      = errors.New("category format does not include a knockout stage")

	// Lookup / infrastructure
	ErrMatchNotFound   = errors.New("match not found")
	ErrBracketNotFound = errors.New("bracket entry not found")
	ErrStorageFailure  = errors.New("storage operation failed")

	ErrValidationFailed = errors.New("validation failed")
)
