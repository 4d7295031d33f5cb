package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/otalvarodev/liga-live/models"
)

var (
	ErrBracketNotFound        = errors.New("bracket entry not found")
	ErrBracketSeedConflict    = errors.New("bracket seed code already exists for category")
	ErrBracketCategoryInvalid = errors.New("bracket category conflict or invalid")
)

type BracketRepository interface {
	Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Bracket, error)
	ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Bracket, error)
	// AssignTeams fills the slots of a placeholder entry once qualification
	// is known (the post-semifinal step calls this for final/third place).
	AssignTeams(ctx context.Context, exec SQLExecutor, id int, team1ID, team2ID int) error
	LinkMatch(ctx context.Context, exec SQLExecutor, id int, matchID int, status string) error
	UpdateStatusByMatch(ctx context.Context, exec SQLExecutor, matchID int, status string) error
	DeleteByCategory(ctx context.Context, exec SQLExecutor, categoryID int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

func (r *postgresBracketRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresBracketRepository) Create(ctx context.Context, exec SQLExecutor, bracket *models.Bracket) error {
	query := `
		INSERT INTO brackets
			(category_id, round, seed_code, team1_id, team2_id, match_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		bracket.CategoryID, bracket.Round, bracket.SeedCode,
		bracket.Team1ID, bracket.Team2ID, bracket.MatchID, bracket.Status,
	).Scan(&bracket.ID, &bracket.CreatedAt)

	if err != nil {
		switch pqConstraint(err) {
		case "brackets_category_id_seed_code_key":
			return ErrBracketSeedConflict
		case "brackets_category_id_fkey":
			return ErrBracketCategoryInvalid
		}
		return fmt.Errorf("failed to insert bracket entry: %w", err)
	}
	return nil
}

func scanBracket(row interface{ Scan(...interface{}) error }) (*models.Bracket, error) {
	b := &models.Bracket{}
	err := row.Scan(
		&b.ID, &b.CategoryID, &b.Round, &b.SeedCode,
		&b.Team1ID, &b.Team2ID, &b.MatchID, &b.Status, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket entry: %w", err)
	}
	return b, nil
}

const bracketColumns = `id, category_id, round, seed_code, team1_id, team2_id, match_id, status, created_at`

func (r *postgresBracketRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Bracket, error) {
	query := `SELECT ` + bracketColumns + ` FROM brackets WHERE id = $1`
	return scanBracket(r.exec(exec).QueryRowContext(ctx, query, id))
}

func (r *postgresBracketRepository) ListByCategory(ctx context.Context, exec SQLExecutor, categoryID int) ([]*models.Bracket, error) {
	query := `SELECT ` + bracketColumns + ` FROM brackets WHERE category_id = $1 ORDER BY id ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query brackets for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	entries := make([]*models.Bracket, 0)
	for rows.Next() {
		b, scanErr := scanBracket(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresBracketRepository) AssignTeams(ctx context.Context, exec SQLExecutor, id int, team1ID, team2ID int) error {
	query := `UPDATE brackets SET team1_id = $1, team2_id = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, team1ID, team2ID, id)
	if err != nil {
		return fmt.Errorf("failed to assign teams to bracket %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) LinkMatch(ctx context.Context, exec SQLExecutor, id int, matchID int, status string) error {
	query := `UPDATE brackets SET match_id = $1, status = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, matchID, status, id)
	if err != nil {
		return fmt.Errorf("failed to link match %d to bracket %d: %w", matchID, id, err)
	}
	return checkAffectedRows(result, ErrBracketNotFound)
}

func (r *postgresBracketRepository) UpdateStatusByMatch(ctx context.Context, exec SQLExecutor, matchID int, status string) error {
	// No affected-rows check: most matches have no bracket entry.
	query := `UPDATE brackets SET status = $1 WHERE match_id = $2`
	_, err := r.exec(exec).ExecContext(ctx, query, status, matchID)
	if err != nil {
		return fmt.Errorf("failed to update bracket status for match %d: %w", matchID, err)
	}
	return nil
}

func (r *postgresBracketRepository) DeleteByCategory(ctx context.Context, exec SQLExecutor, categoryID int) error {
	_, err := r.exec(exec).ExecContext(ctx, `DELETE FROM brackets WHERE category_id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete brackets for category %d: %w", categoryID, err)
	}
	return nil
}
