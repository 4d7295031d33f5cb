package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/otalvarodev/liga-live/brackets"
	"github.com/otalvarodev/liga-live/models"
	"github.com/otalvarodev/liga-live/repositories"
	"golang.org/x/sync/errgroup"
)

const qualifiersPerGroup = 2

type GenerateGroupInput struct {
	CategoryID int
	GroupLabel string
	Teams      []models.TeamRef
	Kickoff    time.Time
	Interval   time.Duration
	ActorID    int
}

type GenerateBracketInput struct {
	CategoryID int
	MatchDay   time.Time
	Interval   time.Duration
	ActorID    int
}

// BracketGenerationResult carries the two scheduled semifinals plus the
// placeholder entries for the final and third-place matches.
type BracketGenerationResult struct {
	Semifinals []*models.Match   `json:"semifinals"`
	Brackets   []*models.Bracket `json:"brackets"`
}

type ScheduleService interface {
	GenerateGroupMatches(ctx context.Context, input GenerateGroupInput) ([]*models.Match, error)
	GenerateBracketMatches(ctx context.Context, input GenerateBracketInput) (*BracketGenerationResult, error)
	ListBrackets(ctx context.Context, categoryID int) ([]*models.Bracket, error)
}

type scheduleService struct {
	tx              repositories.TxRunner
	matches         repositories.MatchRepository
	brackets        repositories.BracketRepository
	standings       repositories.StandingRepository
	categories      repositories.CategoryRepository
	roundRobin      *brackets.RoundRobinGenerator
	defaultInterval time.Duration
	logger          *slog.Logger
}

func NewScheduleService(
	tx repositories.TxRunner,
	matches repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	standings repositories.StandingRepository,
	categories repositories.CategoryRepository,
	defaultInterval time.Duration,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		tx:              tx,
		matches:         matches,
		brackets:        bracketRepo,
		standings:       standings,
		categories:      categories,
		roundRobin:      brackets.NewRoundRobinGenerator(),
		defaultInterval: defaultInterval,
		logger:          logger,
	}
}

// GenerateGroupMatches persists one Match per unordered team pair, all inside
// a single transaction: either the whole group schedule exists or none of it.
func (s *scheduleService) GenerateGroupMatches(ctx context.Context, input GenerateGroupInput) ([]*models.Match, error) {
	if len(input.Teams) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientTeams, len(input.Teams))
	}
	interval := input.Interval
	if interval <= 0 {
		interval = s.defaultInterval
	}

	fixtures, err := s.roundRobin.Generate(input.Teams, input.Kickoff, interval)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientTeams, err)
	}

	group := input.GroupLabel
	created := make([]*models.Match, 0, len(fixtures))

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, f := range fixtures {
			for _, teamID := range []int{f.Team1.ID, f.Team2.ID} {
				booked, bErr := s.matches.TeamBookedAt(ctx, exec, input.CategoryID, teamID, f.Kickoff)
				if bErr != nil {
					return bErr
				}
				if booked {
					return fmt.Errorf("%w: team %d at %s", ErrSchedulingConflict, teamID, f.Kickoff)
				}
			}

			match := &models.Match{
				CategoryID: input.CategoryID,
				Team1ID:    f.Team1.ID,
				Team2ID:    f.Team2.ID,
				MatchTime:  f.Kickoff,
				GroupLabel: &group,
				Status:     models.MatchStatusScheduled,
				CreatedBy:  input.ActorID,
			}
			if cErr := s.matches.Create(ctx, exec, match); cErr != nil {
				return cErr
			}
			created = append(created, match)
		}
		return nil
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	s.logger.Info("group fixtures generated",
		slog.Int("category_id", input.CategoryID),
		slog.String("group", input.GroupLabel),
		slog.Int("fixtures", len(created)))
	return created, nil
}

// GenerateBracketMatches seeds the four-team knockout stage from the group
// tables. Qualification is resolved before the transaction opens; a failed
// precondition therefore leaves zero rows behind.
func (s *scheduleService) GenerateBracketMatches(ctx context.Context, input GenerateBracketInput) (*BracketGenerationResult, error) {
	format, err := s.categories.GetFormat(ctx, nil, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if format != repositories.CategoryFormatGroupKnockout {
		return nil, fmt.Errorf("%w: category %d has format %q", ErrUnsupportedFormat, input.CategoryID, format)
	}

	groups, err := s.categories.ListGroupLabels(ctx, nil, input.CategoryID)
	if err != nil {
		return nil, err
	}

	qualifiers, err := s.collectQualifiers(ctx, input.CategoryID, groups)
	if err != nil {
		return nil, err
	}
	if len(qualifiers) < 4 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientQualifiers, len(qualifiers))
	}

	ranked := brackets.RankQualifiers(qualifiers)[:4]
	semis, err := brackets.PairSemifinals(ranked)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientQualifiers, err)
	}

	interval := input.Interval
	if interval <= 0 {
		interval = s.defaultInterval
	}

	result := &BracketGenerationResult{}
	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		kickoff := input.MatchDay
		for _, semi := range semis {
			match := &models.Match{
				CategoryID: input.CategoryID,
				Team1ID:    semi.Home.TeamID,
				Team2ID:    semi.Away.TeamID,
				MatchTime:  kickoff,
				Status:     models.MatchStatusScheduled,
				CreatedBy:  input.ActorID,
			}
			if cErr := s.matches.Create(ctx, exec, match); cErr != nil {
				return cErr
			}

			home, away := semi.Home.TeamID, semi.Away.TeamID
			entry := &models.Bracket{
				CategoryID: input.CategoryID,
				Round:      models.BracketRoundSemifinal,
				SeedCode:   semi.SeedCode,
				Team1ID:    &home,
				Team2ID:    &away,
				MatchID:    &match.ID,
				Status:     string(models.MatchStatusScheduled),
			}
			if cErr := s.brackets.Create(ctx, exec, entry); cErr != nil {
				return cErr
			}

			result.Semifinals = append(result.Semifinals, match)
			result.Brackets = append(result.Brackets, entry)
			kickoff = kickoff.Add(interval)
		}

		// Final and third place stay empty until the semifinal results are
		// known; a later step assigns their teams and links matches.
		for _, placeholder := range []struct {
			round models.BracketRound
			seed  string
		}{
			{models.BracketRoundFinal, "F"},
			{models.BracketRoundThirdPlace, "TP"},
		} {
			entry := &models.Bracket{
				CategoryID: input.CategoryID,
				Round:      placeholder.round,
				SeedCode:   placeholder.seed,
				Status:     models.BracketStatusAwaiting,
			}
			if cErr := s.brackets.Create(ctx, exec, entry); cErr != nil {
				return cErr
			}
			result.Brackets = append(result.Brackets, entry)
		}
		return nil
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	s.logger.Info("bracket stage generated",
		slog.Int("category_id", input.CategoryID),
		slog.Int("semifinals", len(result.Semifinals)))
	return result, nil
}

// collectQualifiers loads each group's table concurrently and keeps the top
// two per group, preserving each group's internal order.
func (s *scheduleService) collectQualifiers(ctx context.Context, categoryID int, groups []string) ([]brackets.Qualifier, error) {
	tables := make([][]*models.Standing, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			table, err := s.standings.ListByGroup(gctx, nil, categoryID, group)
			if err != nil {
				return err
			}
			tables[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	qualifiers := make([]brackets.Qualifier, 0, len(groups)*qualifiersPerGroup)
	for _, table := range tables {
		top := table
		if len(top) > qualifiersPerGroup {
			top = top[:qualifiersPerGroup]
		}
		for _, row := range top {
			qualifiers = append(qualifiers, brackets.Qualifier{
				TeamID:         row.TeamID,
				GroupLabel:     row.GroupLabel,
				Points:         row.Points,
				GoalDifference: row.GoalDifference,
				GoalsFor:       row.GoalsFor,
			})
		}
	}
	return qualifiers, nil
}

func (s *scheduleService) ListBrackets(ctx context.Context, categoryID int) ([]*models.Bracket, error) {
	var entries []*models.Bracket
	err := readWithRetry(ctx, func() error {
		var lErr error
		entries, lErr = s.brackets.ListByCategory(ctx, nil, categoryID)
		return lErr
	})
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	return entries, nil
}
