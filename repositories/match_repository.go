package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/otalvarodev/liga-live/models"
)

var (
	ErrMatchNotFound        = errors.New("match not found")
	ErrMatchCategoryInvalid = errors.New("match category conflict or invalid")
	ErrMatchTeamInvalid     = errors.New("match team conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	// GetByIDForUpdate re-reads the row under a lock so transition legality
	// is decided against the committed status, inside the caller's tx.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	UpdateSchedule(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	// TransitionStatus performs the guarded conditional update that IS the
	// state machine: the row moves only if its stored status still equals from.
	TransitionStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.MatchStatus, period *int, updatedBy int) (bool, error)
	// IncrementScore applies a relative score update (score = score + 1) so
	// concurrent event inserts against the same match never lose increments.
	IncrementScore(ctx context.Context, exec SQLExecutor, id int, side int, updatedBy int) error
	SetScore(ctx context.Context, exec SQLExecutor, id int, score1, score2, updatedBy int) error
	TeamBookedAt(ctx context.Context, exec SQLExecutor, categoryID, teamID int, matchTime time.Time) (bool, error)
	ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Match, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, category_id, team1_id, team2_id, match_time, group_label, status,
	score1, score2, period, created_by, updated_by, created_at, updated_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.CategoryID, &m.Team1ID, &m.Team2ID, &m.MatchTime, &m.GroupLabel,
		&m.Status, &m.Score1, &m.Score2, &m.Period, &m.CreatedBy, &m.UpdatedBy,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(category_id, team1_id, team2_id, match_time, group_label, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, score1, score2, created_at, updated_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		match.CategoryID, match.Team1ID, match.Team2ID, match.MatchTime,
		match.GroupLabel, match.Status, match.CreatedBy,
	).Scan(&match.ID, &match.Score1, &match.Score2, &match.CreatedAt, &match.UpdatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(r.exec(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`
	return scanMatch(r.exec(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET match_time = $1, group_label = $2, updated_by = $3, updated_at = now()
		WHERE id = $4`

	result, err := r.exec(exec).ExecContext(ctx, query,
		match.MatchTime, match.GroupLabel, match.UpdatedBy, match.ID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.exec(exec).ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) TransitionStatus(ctx context.Context, exec SQLExecutor, id int, from, to models.MatchStatus, period *int, updatedBy int) (bool, error) {
	query := `
		UPDATE matches
		SET status = $1, period = COALESCE($2, period), updated_by = $3, updated_at = now()
		WHERE id = $4 AND status = $5`

	result, err := r.exec(exec).ExecContext(ctx, query, to, period, updatedBy, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition match %d to %s: %w", id, to, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *postgresMatchRepository) IncrementScore(ctx context.Context, exec SQLExecutor, id int, side int, updatedBy int) error {
	var query string
	switch side {
	case 1:
		query = `UPDATE matches SET score1 = score1 + 1, updated_by = $1, updated_at = now() WHERE id = $2`
	case 2:
		query = `UPDATE matches SET score2 = score2 + 1, updated_by = $1, updated_at = now() WHERE id = $2`
	default:
		return fmt.Errorf("invalid score side %d", side)
	}

	result, err := r.exec(exec).ExecContext(ctx, query, updatedBy, id)
	if err != nil {
		return fmt.Errorf("failed to increment score for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) SetScore(ctx context.Context, exec SQLExecutor, id int, score1, score2, updatedBy int) error {
	query := `UPDATE matches SET score1 = $1, score2 = $2, updated_by = $3, updated_at = now() WHERE id = $4`
	result, err := r.exec(exec).ExecContext(ctx, query, score1, score2, updatedBy, id)
	if err != nil {
		return fmt.Errorf("failed to set score for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) TeamBookedAt(ctx context.Context, exec SQLExecutor, categoryID, teamID int, matchTime time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE category_id = $1
			  AND match_time = $2
			  AND status <> 'cancelled'
			  AND (team1_id = $3 OR team2_id = $3)
		)`

	var booked bool
	err := r.exec(exec).QueryRowContext(ctx, query, categoryID, matchTime, teamID).Scan(&booked)
	if err != nil {
		return false, fmt.Errorf("failed to check booking for team %d: %w", teamID, err)
	}
	return booked, nil
}

func (r *postgresMatchRepository) ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE category_id = $1 ORDER BY match_time ASC, id ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	switch pqConstraint(err) {
	case "matches_category_id_fkey":
		return ErrMatchCategoryInvalid
	case "matches_team1_id_fkey", "matches_team2_id_fkey":
		return ErrMatchTeamInvalid
	}
	return err
}
