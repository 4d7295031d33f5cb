package services

import (
	"context"
	"errors"

	"github.com/otalvarodev/liga-live/repositories"
)

// mapMatchRepoError translates repository sentinels into service sentinels so
// handlers only ever match against the services package.
func mapMatchRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrBracketNotFound):
		return ErrBracketNotFound
	default:
		return err
	}
}

// readWithRetry retries an idempotent read exactly once on a non-domain
// failure. Mutations never go through here: a failed transaction surfaces
// immediately.
func readWithRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil || isDomainError(err) || ctx.Err() != nil {
		return err
	}
	return fn()
}

func isDomainError(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidTransition, ErrImmutableState, ErrMatchNotInProgress,
		ErrMatchNotEditable, ErrPlayerNotEligible, ErrInvalidEventKind,
		ErrTeamNotInMatch, ErrInsufficientTeams, ErrInsufficientQualifiers,
		ErrSchedulingConflict, ErrUnsupportedFormat, ErrMatchNotFound,
		ErrBracketNotFound, ErrValidationFailed,
		repositories.ErrMatchNotFound, repositories.ErrBracketNotFound,
		repositories.ErrCategoryNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
