package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

// RosterRepository consults registration data owned by an external service.
// Only the reads the lifecycle engine needs are exposed here.
type RosterRepository interface {
	IsPlayerEligible(ctx context.Context, exec SQLExecutor, playerID, categoryID, teamID int) (bool, error)
	// IncrementCareerGoals bumps the player's per-category goal counter.
	// Must run on the same executor as the event insert it accompanies.
	IncrementCareerGoals(ctx context.Context, exec SQLExecutor, playerID, categoryID int) error
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRosterRepository) IsPlayerEligible(ctx context.Context, exec SQLExecutor, playerID, categoryID, teamID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM category_players
			WHERE player_id = $1 AND category_id = $2 AND team_id = $3
		)`

	var eligible bool
	err := r.exec(exec).QueryRowContext(ctx, query, playerID, categoryID, teamID).Scan(&eligible)
	if err != nil {
		return false, fmt.Errorf("failed to check eligibility of player %d: %w", playerID, err)
	}
	return eligible, nil
}

func (r *postgresRosterRepository) IncrementCareerGoals(ctx context.Context, exec SQLExecutor, playerID, categoryID int) error {
	query := `
		INSERT INTO player_stats (player_id, category_id, goals)
		VALUES ($1, $2, 1)
		ON CONFLICT (player_id, category_id)
		DO UPDATE SET goals = player_stats.goals + 1, updated_at = now()`

	_, err := r.exec(exec).ExecContext(ctx, query, playerID, categoryID)
	if err != nil {
		return fmt.Errorf("failed to increment goals for player %d: %w", playerID, err)
	}
	return nil
}
