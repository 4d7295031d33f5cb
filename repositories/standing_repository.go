package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/otalvarodev/liga-live/models"
)

// StandingRepository adapts the standings collaborator. The lifecycle engine
// treats the table as external state: it asks for a recompute after a match
// finishes and reads group tables when seeding a bracket.
type StandingRepository interface {
	Recompute(ctx context.Context, categoryID int) ([]*models.Standing, error)
	ListByGroup(ctx context.Context, exec SQLExecutor, categoryID int, groupLabel string) ([]*models.Standing, error)
}

type postgresStandingRepository struct {
	db *sql.DB
	tx TxRunner
}

func NewPostgresStandingRepository(db *sql.DB, tx TxRunner) StandingRepository {
	return &postgresStandingRepository{db: db, tx: tx}
}

func (r *postgresStandingRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Recompute rebuilds the category's group tables from finished group-stage
// matches. Derivation from the matches table keeps the standings consistent
// with the ledger-derived scores without trusting any previous table state.
func (r *postgresStandingRepository) Recompute(ctx context.Context, categoryID int) ([]*models.Standing, error) {
	err := r.tx.RunInTx(ctx, func(exec SQLExecutor) error {
		if _, err := exec.ExecContext(ctx, `DELETE FROM standings WHERE category_id = $1`, categoryID); err != nil {
			return fmt.Errorf("failed to clear standings for category %d: %w", categoryID, err)
		}

		query := `
			INSERT INTO standings
				(category_id, group_label, team_id, played, wins, draws, losses,
				 goals_for, goals_against, goal_difference, points)
			SELECT m.category_id, m.group_label, s.team_id,
			       COUNT(*),
			       COUNT(*) FILTER (WHERE s.gf > s.ga),
			       COUNT(*) FILTER (WHERE s.gf = s.ga),
			       COUNT(*) FILTER (WHERE s.gf < s.ga),
			       SUM(s.gf), SUM(s.ga), SUM(s.gf - s.ga),
			       SUM(CASE WHEN s.gf > s.ga THEN 3 WHEN s.gf = s.ga THEN 1 ELSE 0 END)
			FROM matches m,
			     LATERAL (VALUES (m.team1_id, m.score1, m.score2),
			                     (m.team2_id, m.score2, m.score1)) AS s(team_id, gf, ga)
			WHERE m.category_id = $1
			  AND m.status = 'finished'
			  AND m.group_label IS NOT NULL
			GROUP BY m.category_id, m.group_label, s.team_id`

		if _, err := exec.ExecContext(ctx, query, categoryID); err != nil {
			return fmt.Errorf("failed to recompute standings for category %d: %w", categoryID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.listByCategory(ctx, categoryID)
}

const standingColumns = `s.id, s.category_id, s.group_label, s.team_id, t.name,
	s.played, s.wins, s.draws, s.losses, s.goals_for, s.goals_against,
	s.goal_difference, s.points, s.updated_at`

const standingOrder = ` ORDER BY s.points DESC, s.goal_difference DESC, s.goals_for DESC, t.name ASC`

func (r *postgresStandingRepository) listByCategory(ctx context.Context, categoryID int) ([]*models.Standing, error) {
	query := `SELECT ` + standingColumns + `
		FROM standings s JOIN teams t ON t.id = s.team_id
		WHERE s.category_id = $1` + standingOrder
	return r.queryStandings(ctx, nil, query, categoryID)
}

func (r *postgresStandingRepository) ListByGroup(ctx context.Context, exec SQLExecutor, categoryID int, groupLabel string) ([]*models.Standing, error) {
	query := `SELECT ` + standingColumns + `
		FROM standings s JOIN teams t ON t.id = s.team_id
		WHERE s.category_id = $1 AND s.group_label = $2` + standingOrder
	return r.queryStandings(ctx, exec, query, categoryID, groupLabel)
}

func (r *postgresStandingRepository) queryStandings(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Standing, error) {
	rows, err := r.exec(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	standings := make([]*models.Standing, 0)
	for rows.Next() {
		s := &models.Standing{}
		if scanErr := rows.Scan(
			&s.ID, &s.CategoryID, &s.GroupLabel, &s.TeamID, &s.TeamName,
			&s.Played, &s.Wins, &s.Draws, &s.Losses, &s.GoalsFor, &s.GoalsAgainst,
			&s.GoalDifference, &s.Points, &s.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", scanErr)
		}
		standings = append(standings, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standing rows iteration: %w", err)
	}
	return standings, nil
}
