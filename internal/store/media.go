package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mediavault/apiserver/types"
)

// MediaFilter narrows List queries. Zero values mean "no filter".
type MediaFilter struct {
	AssetType   string
	CategoryID  int
	Recommended bool
}

// MediaRepository handles persistence for media assets.
type MediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(database *sql.DB) *MediaRepository {
	return &MediaRepository{db: database}
}

const mediaColumns = `id, title, description, file_url, format, asset_type, category_id, uploader_id, is_recommended, created_at`

func (r *MediaRepository) List(ctx context.Context, filter MediaFilter, offset, limit int) ([]types.MediaAsset, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	where := ""
	var args []any
	appendCond := func(cond string, value any) {
		args = append(args, value)
		clause := fmt.Sprintf(cond, len(args))
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
	}
	if filter.AssetType != "" {
		appendCond("asset_type = $%d", filter.AssetType)
	}
	if filter.CategoryID > 0 {
		appendCond("category_id = $%d", filter.CategoryID)
	}
	if filter.Recommended {
		appendCond("is_recommended = $%d", true)
	}

	countQuery := `SELECT COUNT(1) FROM media_assets` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(
		`SELECT %s FROM media_assets%s ORDER BY created_at DESC OFFSET $%d LIMIT $%d`,
		mediaColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	assets := make([]types.MediaAsset, 0, limit)
	for rows.Next() {
		asset, err := scanMediaAsset(rows)
		if err != nil {
			return nil, 0, err
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return assets, total, nil
}

func (r *MediaRepository) Get(ctx context.Context, id string) (types.MediaAsset, error) {
	query := fmt.Sprintf(`SELECT %s FROM media_assets WHERE id = $1`, mediaColumns)
	asset, err := scanMediaAsset(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.MediaAsset{}, ErrNotFound
		}
		return types.MediaAsset{}, err
	}
	return asset, nil
}

func (r *MediaRepository) Create(ctx context.Context, asset types.MediaAsset) (types.MediaAsset, error) {
	asset.CreatedAt = time.Now()

	const query = `
		INSERT INTO media_assets (id, title, description, file_url, format, asset_type, category_id, uploader_id, is_recommended, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		asset.ID,
		asset.Title,
		asset.Description,
		asset.FileURL,
		asset.Format,
		asset.AssetType,
		asset.CategoryID,
		asset.UploaderID,
		asset.IsRecommended,
		asset.CreatedAt,
	); err != nil {
		return types.MediaAsset{}, err
	}

	return asset, nil
}

func (r *MediaRepository) Update(ctx context.Context, asset types.MediaAsset) (types.MediaAsset, error) {
	const query = `
		UPDATE media_assets
		SET title = $1,
			description = $2,
			category_id = $3,
			is_recommended = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		asset.Title,
		asset.Description,
		asset.CategoryID,
		asset.IsRecommended,
		asset.ID,
	)
	if err != nil {
		return types.MediaAsset{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.MediaAsset{}, err
	}
	if affected == 0 {
		return types.MediaAsset{}, ErrNotFound
	}

	return r.Get(ctx, asset.ID)
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM media_assets WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MediaRepository) CountByType(ctx context.Context, assetType string) (int, error) {
	const query = `SELECT COUNT(1) FROM media_assets WHERE asset_type = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, query, assetType).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ListFileURLs returns every file_url referenced by a media row.
// The reconciler compares these against the object store.
func (r *MediaRepository) ListFileURLs(ctx context.Context) ([]string, error) {
	const query = `SELECT file_url FROM media_assets`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var fileURL string
		if err := rows.Scan(&fileURL); err != nil {
			return nil, err
		}
		urls = append(urls, fileURL)
	}
	return urls, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMediaAsset(row rowScanner) (types.MediaAsset, error) {
	var asset types.MediaAsset
	var categoryID sql.NullInt64
	var uploaderID sql.NullString
	if err := row.Scan(
		&asset.ID,
		&asset.Title,
		&asset.Description,
		&asset.FileURL,
		&asset.Format,
		&asset.AssetType,
		&categoryID,
		&uploaderID,
		&asset.IsRecommended,
		&asset.CreatedAt,
	); err != nil {
		return types.MediaAsset{}, err
	}
	if categoryID.Valid {
		id := int(categoryID.Int64)
		asset.CategoryID = &id
	}
	if uploaderID.Valid {
		id := uploaderID.String
		asset.UploaderID = &id
	}
	return asset, nil
}
