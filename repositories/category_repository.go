package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrCategoryNotFound = errors.New("category not found")

// Category formats. Only group_knockout categories run a final stage.
const (
	CategoryFormatGroupOnly     = "group_only"
	CategoryFormatGroupKnockout = "group_knockout"
)

// CategoryRepository exposes the two category facts the engine needs;
// category management itself lives in the registration service.
type CategoryRepository interface {
	GetFormat(ctx context.Context, exec SQLExecutor, categoryID int) (string, error)
	ListGroupLabels(ctx context.Context, exec SQLExecutor, categoryID int) ([]string, error)
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresCategoryRepository) GetFormat(ctx context.Context, exec SQLExecutor, categoryID int) (string, error) {
	var format string
	err := r.exec(exec).QueryRowContext(ctx,
		`SELECT format FROM categories WHERE id = $1`, categoryID).Scan(&format)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrCategoryNotFound
		}
		return "", fmt.Errorf("failed to load format for category %d: %w", categoryID, err)
	}
	return format, nil
}

func (r *postgresCategoryRepository) ListGroupLabels(ctx context.Context, exec SQLExecutor, categoryID int) ([]string, error) {
	query := `
		SELECT DISTINCT group_label FROM matches
		WHERE category_id = $1 AND group_label IS NOT NULL
		ORDER BY group_label ASC`

	rows, err := r.exec(exec).QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	labels := make([]string, 0)
	for rows.Next() {
		var label string
		if scanErr := rows.Scan(&label); scanErr != nil {
			return nil, fmt.Errorf("failed to scan group label: %w", scanErr)
		}
		labels = append(labels, label)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group label iteration: %w", err)
	}
	return labels, nil
}
