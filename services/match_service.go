package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/otalvarodev/liga-live/models"
	"github.com/otalvarodev/liga-live/repositories"
)

type CreateMatchInput struct {
	CategoryID int
	Team1ID    int
	Team2ID    int
	MatchTime  time.Time
	GroupLabel *string
	ActorID    int
}

type UpdateMatchInput struct {
	MatchTime  *time.Time
	GroupLabel *string
	ActorID    int
}

type AddEventInput struct {
	MatchID  int
	TeamID   int
	PlayerID int
	Kind     models.EventKind
	Minute   int
	ActorID  int
}

// FinishResult pairs the final match record with the recomputed group table
// of the owning category.
type FinishResult struct {
	Match     *models.Match      `json:"match"`
	Standings []*models.Standing `json:"standings"`
}

type MatchService interface {
	Create(ctx context.Context, input CreateMatchInput) (*models.Match, error)
	Update(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error)
	Delete(ctx context.Context, id int, actorID int) error
	Get(ctx context.Context, id int) (*models.MatchDetail, error)

	Start(ctx context.Context, id int, period int, actorID int) (*models.Match, error)
	Pause(ctx context.Context, id int, actorID int) (*models.Match, error)
	Resume(ctx context.Context, id int, actorID int) (*models.Match, error)
	Finish(ctx context.Context, id int, actorID int) (*FinishResult, error)
	Cancel(ctx context.Context, id int, actorID int) (*models.Match, error)

	AddEvent(ctx context.Context, input AddEventInput) (*models.MatchEventDetail, error)
	UpdateScore(ctx context.Context, id int, score1, score2, actorID int) (*models.Match, error)
}

type matchService struct {
	tx        repositories.TxRunner
	matches   repositories.MatchRepository
	events    repositories.MatchEventRepository
	brackets  repositories.BracketRepository
	roster    repositories.RosterRepository
	standings repositories.StandingRepository
	broadcast Broadcaster
	archiver  *LedgerArchiver
	logger    *slog.Logger
}

func NewMatchService(
	tx repositories.TxRunner,
	matches repositories.MatchRepository,
	events repositories.MatchEventRepository,
	brackets repositories.BracketRepository,
	roster repositories.RosterRepository,
	standings repositories.StandingRepository,
	broadcast Broadcaster,
	archiver *LedgerArchiver,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		tx:        tx,
		matches:   matches,
		events:    events,
		brackets:  brackets,
		roster:    roster,
		standings: standings,
		broadcast: broadcast,
		archiver:  archiver,
		logger:    logger,
	}
}

func (s *matchService) Create(ctx context.Context, input CreateMatchInput) (*models.Match, error) {
	if input.Team1ID == input.Team2ID {
		return nil, fmt.Errorf("%w: a team cannot play itself", ErrValidationFailed)
	}

	match := &models.Match{
		CategoryID: input.CategoryID,
		Team1ID:    input.Team1ID,
		Team2ID:    input.Team2ID,
		MatchTime:  input.MatchTime,
		GroupLabel: input.GroupLabel,
		Status:     models.MatchStatusScheduled,
		CreatedBy:  input.ActorID,
	}

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, teamID := range []int{input.Team1ID, input.Team2ID} {
			booked, err := s.matches.TeamBookedAt(ctx, exec, input.CategoryID, teamID, input.MatchTime)
			if err != nil {
				return err
			}
			if booked {
				return fmt.Errorf("%w: team %d at %s", ErrSchedulingConflict, teamID, input.MatchTime)
			}
		}
		return s.matches.Create(ctx, exec, match)
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	s.broadcast.Publish(CategoryTopic(match.CategoryID), EventMatchUpdated, match)
	return match, nil
}

func (s *matchService) Update(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error) {
	var updated *models.Match
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matches.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		if match.Status != models.MatchStatusScheduled {
			if match.Status == models.MatchStatusFinished {
				return ErrImmutableState
			}
			return fmt.Errorf("%w: match %d is %s", ErrMatchNotEditable, id, match.Status)
		}

		if input.MatchTime != nil {
			match.MatchTime = *input.MatchTime
		}
		if input.GroupLabel != nil {
			match.GroupLabel = input.GroupLabel
		}
		match.UpdatedBy = &input.ActorID

		if err := s.matches.UpdateSchedule(ctx, exec, match); err != nil {
			return err
		}
		updated = match
		return nil
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	s.broadcast.Publish(MatchTopic(id), EventMatchUpdated, updated)
	s.broadcast.Publish(CategoryTopic(updated.CategoryID), EventMatchUpdated, updated)
	return updated, nil
}

func (s *matchService) Delete(ctx context.Context, id int, actorID int) error {
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matches.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		switch match.Status {
		case models.MatchStatusScheduled, models.MatchStatusCancelled:
		case models.MatchStatusFinished:
			return ErrImmutableState
		default:
			return fmt.Errorf("%w: match %d is %s", ErrMatchNotEditable, id, match.Status)
		}
		return s.matches.Delete(ctx, exec, id)
	})
	return mapMatchRepoError(err)
}

func (s *matchService) Get(ctx context.Context, id int) (*models.MatchDetail, error) {
	var detail *models.MatchDetail
	err := readWithRetry(ctx, func() error {
		match, err := s.matches.GetByID(ctx, nil, id)
		if err != nil {
			return err
		}
		events, err := s.events.ListByMatch(ctx, nil, id)
		if err != nil {
			return err
		}
		detail = &models.MatchDetail{Match: match, Events: events}
		return nil
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	return detail, nil
}

func (s *matchService) Start(ctx context.Context, id int, period int, actorID int) (*models.Match, error) {
	match, err := s.transition(ctx, id, models.MatchStatusScheduled, models.MatchStatusLive, &period, actorID)
	if err != nil {
		return nil, err
	}
	s.publishLifecycle(match, EventMatchStarted)
	return match, nil
}

func (s *matchService) Pause(ctx context.Context, id int, actorID int) (*models.Match, error) {
	match, err := s.transition(ctx, id, models.MatchStatusLive, models.MatchStatusPaused, nil, actorID)
	if err != nil {
		return nil, err
	}
	s.publishLifecycle(match, EventMatchPaused)
	return match, nil
}

func (s *matchService) Resume(ctx context.Context, id int, actorID int) (*models.Match, error) {
	match, err := s.transition(ctx, id, models.MatchStatusPaused, models.MatchStatusLive, nil, actorID)
	if err != nil {
		return nil, err
	}
	s.publishLifecycle(match, EventMatchResumed)
	return match, nil
}

func (s *matchService) Cancel(ctx context.Context, id int, actorID int) (*models.Match, error) {
	match, err := s.transition(ctx, id, models.MatchStatusScheduled, models.MatchStatusCancelled, nil, actorID)
	if err != nil {
		return nil, err
	}
	s.publishLifecycle(match, EventMatchUpdated)
	return match, nil
}

func (s *matchService) Finish(ctx context.Context, id int, actorID int) (*FinishResult, error) {
	match, err := s.transition(ctx, id, models.MatchStatusLive, models.MatchStatusFinished, nil, actorID)
	if err != nil {
		return nil, err
	}

	s.auditFinalScore(ctx, match)

	// The standings collaborator is consulted synchronously; the recomputed
	// table travels back with the final match record.
	standings, err := s.standings.Recompute(ctx, match.CategoryID)
	if err != nil {
		s.logger.Error("standings recompute failed after finish",
			slog.Int("match_id", id), slog.Any("error", err))
		standings = nil
	}

	s.broadcast.Publish(MatchTopic(id), EventMatchFinished, match)
	s.broadcast.Publish(CategoryTopic(match.CategoryID), EventStandingsUpdated, standings)

	if s.archiver != nil {
		go s.archiver.Archive(context.WithoutCancel(ctx), match)
	}

	return &FinishResult{Match: match, Standings: standings}, nil
}

// auditFinalScore compares the cached score against the ledger-derived count
// at finish time. A divergence means an admin override moved the score away
// from the ledger; it is logged for review, never corrected silently.
func (s *matchService) auditFinalScore(ctx context.Context, match *models.Match) {
	for _, side := range []struct {
		teamID int
		cached int
	}{
		{match.Team1ID, match.Score1},
		{match.Team2ID, match.Score2},
	} {
		derived, err := s.events.CountScoringByTeam(ctx, nil, match.ID, side.teamID)
		if err != nil {
			s.logger.Warn("final score audit skipped",
				slog.Int("match_id", match.ID), slog.Any("error", err))
			return
		}
		if derived != side.cached {
			s.logger.Warn("final score diverges from event ledger",
				slog.Int("match_id", match.ID),
				slog.Int("team_id", side.teamID),
				slog.Int("cached", side.cached),
				slog.Int("derived", derived))
		}
	}
}

// transition applies one state-machine edge. The current status is re-read
// under a row lock inside the same transaction as the conditional update, so
// two racing callers cannot both observe the old state and both move the row.
func (s *matchService) transition(ctx context.Context, id int, from, to models.MatchStatus, period *int, actorID int) (*models.Match, error) {
	var match *models.Match
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		current, err := s.matches.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		if current.Status != from {
			if current.Status == models.MatchStatusFinished {
				return ErrImmutableState
			}
			return fmt.Errorf("%w: match %d is %s, cannot move to %s",
				ErrInvalidTransition, id, current.Status, to)
		}

		moved, err := s.matches.TransitionStatus(ctx, exec, id, from, to, period, actorID)
		if err != nil {
			return err
		}
		if !moved {
			return fmt.Errorf("%w: match %d is no longer %s", ErrInvalidTransition, id, from)
		}

		if err := s.brackets.UpdateStatusByMatch(ctx, exec, id, string(to)); err != nil {
			return err
		}

		current.Status = to
		if period != nil {
			current.Period = period
		}
		current.UpdatedBy = &actorID
		match = current
		return nil
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	return match, nil
}

func (s *matchService) publishLifecycle(match *models.Match, event string) {
	s.broadcast.Publish(MatchTopic(match.ID), event, match)
	s.broadcast.Publish(CategoryTopic(match.CategoryID), EventMatchUpdated, match)
}

// AddEvent appends to the ledger and applies the derived effects. Event
// insert, relative score increment and career-goal increment commit as one
// unit; none of them is visible unless all three succeed.
func (s *matchService) AddEvent(ctx context.Context, input AddEventInput) (*models.MatchEventDetail, error) {
	if !input.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEventKind, input.Kind)
	}
	if input.Minute < 0 {
		return nil, fmt.Errorf("%w: minute must not be negative", ErrValidationFailed)
	}

	var (
		detail       *models.MatchEventDetail
		match        *models.Match
		scoreChanged bool
	)

	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		current, err := s.matches.GetByIDForUpdate(ctx, exec, input.MatchID)
		if err != nil {
			return err
		}
		if current.Status != models.MatchStatusLive {
			return fmt.Errorf("%w: match %d is %s", ErrMatchNotInProgress, input.MatchID, current.Status)
		}
		if input.TeamID != current.Team1ID && input.TeamID != current.Team2ID {
			return fmt.Errorf("%w: team %d", ErrTeamNotInMatch, input.TeamID)
		}

		eligible, err := s.roster.IsPlayerEligible(ctx, exec, input.PlayerID, current.CategoryID, input.TeamID)
		if err != nil {
			return err
		}
		if !eligible {
			return fmt.Errorf("%w: player %d, team %d, category %d",
				ErrPlayerNotEligible, input.PlayerID, input.TeamID, current.CategoryID)
		}

		event := &models.MatchEvent{
			MatchID:    input.MatchID,
			CategoryID: current.CategoryID,
			TeamID:     input.TeamID,
			PlayerID:   input.PlayerID,
			Kind:       input.Kind,
			Minute:     input.Minute,
			CreatedBy:  input.ActorID,
		}
		if err := s.events.Insert(ctx, exec, event); err != nil {
			return err
		}

		if input.Kind.Scoring() {
			side := scoringSide(current, input.TeamID, input.Kind)
			if err := s.matches.IncrementScore(ctx, exec, input.MatchID, side, input.ActorID); err != nil {
				return err
			}
			if side == 1 {
				current.Score1++
			} else {
				current.Score2++
			}
			scoreChanged = true
		}
		if input.Kind == models.EventKindGoal {
			if err := s.roster.IncrementCareerGoals(ctx, exec, input.PlayerID, current.CategoryID); err != nil {
				return err
			}
		}

		detail, err = s.events.GetDetail(ctx, exec, event.ID)
		if err != nil {
			return err
		}
		match = current
		return nil
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	s.broadcast.Publish(MatchTopic(input.MatchID), EventMatchEventAdded, detail)
	if scoreChanged {
		s.broadcast.Publish(MatchTopic(input.MatchID), EventMatchScore, match)
		s.broadcast.Publish(CategoryTopic(match.CategoryID), EventMatchUpdated, match)
	}
	return detail, nil
}

// scoringSide resolves which side of the scoreboard an event credits. An own
// goal credits the opponent of the team the event is attributed to.
func scoringSide(match *models.Match, eventTeamID int, kind models.EventKind) int {
	creditedTeam := eventTeamID
	if kind == models.EventKindOwnGoal {
		if eventTeamID == match.Team1ID {
			creditedTeam = match.Team2ID
		} else {
			creditedTeam = match.Team1ID
		}
	}
	if creditedTeam == match.Team1ID {
		return 1
	}
	return 2
}

// UpdateScore is the administrative override: an absolute write that bypasses
// ledger derivation. It is audited through updated_by and never recorded as a
// MatchEvent.
func (s *matchService) UpdateScore(ctx context.Context, id int, score1, score2, actorID int) (*models.Match, error) {
	if score1 < 0 || score2 < 0 {
		return nil, fmt.Errorf("%w: scores must not be negative", ErrValidationFailed)
	}

	var match *models.Match
	err := s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		current, err := s.matches.GetByIDForUpdate(ctx, exec, id)
		if err != nil {
			return err
		}
		if current.Status == models.MatchStatusFinished {
			return ErrImmutableState
		}
		if err := s.matches.SetScore(ctx, exec, id, score1, score2, actorID); err != nil {
			return err
		}
		current.Score1 = score1
		current.Score2 = score2
		current.UpdatedBy = &actorID
		match = current
		return nil
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	s.logger.Info("score override applied",
		slog.Int("match_id", id), slog.Int("actor_id", actorID),
		slog.Int("score1", score1), slog.Int("score2", score2))

	s.broadcast.Publish(MatchTopic(id), EventMatchScore, match)
	s.broadcast.Publish(CategoryTopic(match.CategoryID), EventMatchUpdated, match)
	return match, nil
}
