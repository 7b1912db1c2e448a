package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mediavault/apiserver/internal/db"
	"github.com/mediavault/apiserver/types"
)

// SavedRepository handles persistence for saved-item associations.
type SavedRepository struct {
	db *sql.DB
}

func NewSavedRepository(database *sql.DB) *SavedRepository {
	return &SavedRepository{db: database}
}

// Insert creates the (user, asset) association. A collision with the
// uniqueness constraint maps to ErrDuplicate so callers can treat an
// already-saved pair as success.
func (r *SavedRepository) Insert(ctx context.Context, userID, assetID string) error {
	const query = `
		INSERT INTO saved_items (user_id, media_asset_id, created_at)
		VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, userID, assetID, time.Now()); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// Delete removes the (user, asset) association and reports whether a
// row existed. Deleting a missing row is not an error.
func (r *SavedRepository) Delete(ctx context.Context, userID, assetID string) (bool, error) {
	const query = `DELETE FROM saved_items WHERE user_id = $1 AND media_asset_id = $2`
	result, err := r.db.ExecContext(ctx, query, userID, assetID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *SavedRepository) Exists(ctx context.Context, userID, assetID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM saved_items WHERE user_id = $1 AND media_asset_id = $2)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, assetID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListByUser returns the user's saved assets, most recently saved first.
func (r *SavedRepository) ListByUser(ctx context.Context, userID string) ([]types.MediaAsset, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM media_assets m
		JOIN saved_items s ON s.media_asset_id = m.id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`, prefixedMediaColumns("m"))
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []types.MediaAsset
	for rows.Next() {
		asset, err := scanMediaAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func prefixedMediaColumns(alias string) string {
	return fmt.Sprintf(
		"%[1]s.id, %[1]s.title, %[1]s.description, %[1]s.file_url, %[1]s.format, %[1]s.asset_type, %[1]s.category_id, %[1]s.uploader_id, %[1]s.is_recommended, %[1]s.created_at",
		alias,
	)
}
