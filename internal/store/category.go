package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mediavault/apiserver/types"
)

// CategoryRepository reads categories. Rows are seeded by migrations
// and never mutated at runtime.
type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(database *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: database}
}

func (r *CategoryRepository) List(ctx context.Context, assetType string) ([]types.Category, error) {
	query := `SELECT id, name, type, created_at FROM categories ORDER BY name, type`
	var args []any
	if assetType != "" {
		query = `SELECT id, name, type, created_at FROM categories WHERE type = $1 ORDER BY name`
		args = append(args, assetType)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []types.Category
	for rows.Next() {
		var category types.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Type, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Get(ctx context.Context, id int) (types.Category, error) {
	const query = `SELECT id, name, type, created_at FROM categories WHERE id = $1`
	var category types.Category
	err := r.db.QueryRowContext(ctx, query, id).Scan(&category.ID, &category.Name, &category.Type, &category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Category{}, ErrNotFound
		}
		return types.Category{}, err
	}
	return category, nil
}
