package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/otalvarodev/liga-live/models"
)

var (
	ErrMatchEventNotFound      = errors.New("match event not found")
	ErrMatchEventMatchInvalid  = errors.New("match event match conflict or invalid")
	ErrMatchEventPlayerInvalid = errors.New("match event player conflict or invalid")
)

// MatchEventRepository is append-only: events are never updated or deleted
// individually, the ledger is the source of truth for the derived score.
type MatchEventRepository interface {
	Insert(ctx context.Context, exec SQLExecutor, event *models.MatchEvent) error
	GetDetail(ctx context.Context, exec SQLExecutor, id int) (*models.MatchEventDetail, error)
	ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchEventDetail, error)
	CountScoringByTeam(ctx context.Context, exec SQLExecutor, matchID, teamID int) (int, error)
}

type postgresMatchEventRepository struct {
	db *sql.DB
}

func NewPostgresMatchEventRepository(db *sql.DB) MatchEventRepository {
	return &postgresMatchEventRepository{db: db}
}

func (r *postgresMatchEventRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchEventRepository) Insert(ctx context.Context, exec SQLExecutor, event *models.MatchEvent) error {
	query := `
		INSERT INTO match_events
			(match_id, category_id, team_id, player_id, kind, minute, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		event.MatchID, event.CategoryID, event.TeamID, event.PlayerID,
		event.Kind, event.Minute, event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		switch pqConstraint(err) {
		case "match_events_match_id_fkey":
			return ErrMatchEventMatchInvalid
		case "match_events_player_id_fkey":
			return ErrMatchEventPlayerInvalid
		}
		return fmt.Errorf("failed to insert match event: %w", err)
	}
	return nil
}

const eventDetailQuery = `
	SELECT e.id, e.match_id, e.category_id, e.team_id, e.player_id, e.kind,
	       e.minute, e.created_by, e.created_at, p.name, t.name
	FROM match_events e
	JOIN players p ON p.id = e.player_id
	JOIN teams t ON t.id = e.team_id`

func scanEventDetail(row interface{ Scan(...interface{}) error }) (*models.MatchEventDetail, error) {
	d := &models.MatchEventDetail{}
	err := row.Scan(
		&d.ID, &d.MatchID, &d.CategoryID, &d.TeamID, &d.PlayerID, &d.Kind,
		&d.Minute, &d.CreatedBy, &d.CreatedAt, &d.PlayerName, &d.TeamName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchEventNotFound
		}
		return nil, fmt.Errorf("failed to scan match event: %w", err)
	}
	return d, nil
}

func (r *postgresMatchEventRepository) GetDetail(ctx context.Context, exec SQLExecutor, id int) (*models.MatchEventDetail, error) {
	query := eventDetailQuery + ` WHERE e.id = $1`
	return scanEventDetail(r.exec(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchEventRepository) ListByMatch(ctx context.Context, exec SQLExecutor, matchID int) ([]*models.MatchEventDetail, error) {
	query := eventDetailQuery + ` WHERE e.match_id = $1 ORDER BY e.minute ASC, e.id ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for match %d: %w", matchID, err)
	}
	defer rows.Close()

	events := make([]*models.MatchEventDetail, 0)
	for rows.Next() {
		d, scanErr := scanEventDetail(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during event rows iteration: %w", err)
	}
	return events, nil
}

func (r *postgresMatchEventRepository) CountScoringByTeam(ctx context.Context, exec SQLExecutor, matchID, teamID int) (int, error) {
	// Goals the team is credited with: its own GOAL events plus the
	// opponent's OWN_GOAL events.
	query := `
		SELECT COUNT(*) FROM match_events
		WHERE match_id = $1
		  AND ((kind = 'GOAL' AND team_id = $2) OR (kind = 'OWN_GOAL' AND team_id <> $2))`

	var count int
	err := r.exec(exec).QueryRowContext(ctx, query, matchID, teamID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scoring events for match %d: %w", matchID, err)
	}
	return count, nil
}
