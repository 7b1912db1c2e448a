package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mediavault/apiserver/types"
)

// ProfileRepository handles persistence for application profiles.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(database *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (types.Profile, error) {
	const query = `
		SELECT id, display_name, avatar_url, is_admin, created_at, updated_at
		FROM profiles
		WHERE id = $1`
	var profile types.Profile
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.DisplayName,
		&profile.AvatarURL,
		&profile.IsAdmin,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Profile{}, ErrNotFound
		}
		return types.Profile{}, err
	}
	return profile, nil
}

// IsAdmin reads the is_admin flag for a user. Missing rows map to
// ErrNotFound so callers can fail closed.
func (r *ProfileRepository) IsAdmin(ctx context.Context, id string) (bool, error) {
	const query = `SELECT is_admin FROM profiles WHERE id = $1`
	var isAdmin bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return isAdmin, nil
}

func (r *ProfileRepository) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	const query = `
		UPDATE profiles
		SET display_name = $1,
			updated_at = $2
		WHERE id = $3`
	return r.execExpectingRow(ctx, query, displayName, time.Now(), id)
}

func (r *ProfileRepository) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	const query = `
		UPDATE profiles
		SET avatar_url = $1,
			updated_at = $2
		WHERE id = $3`
	return r.execExpectingRow(ctx, query, avatarURL, time.Now(), id)
}

// SetAdminByEmail flips the admin flag for the user owning the given
// email. Used by the promote command, not by request handlers.
func (r *ProfileRepository) SetAdminByEmail(ctx context.Context, email string, isAdmin bool) error {
	const query = `
		UPDATE profiles
		SET is_admin = $1,
			updated_at = $2
		WHERE id = (SELECT id FROM users WHERE email = $3)`
	return r.execExpectingRow(ctx, query, isAdmin, time.Now(), email)
}

// ListAvatarURLs returns every non-empty avatar_url. The reconciler
// treats these as live references alongside media file URLs.
func (r *ProfileRepository) ListAvatarURLs(ctx context.Context) ([]string, error) {
	const query = `SELECT avatar_url FROM profiles WHERE avatar_url <> ''`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var avatarURL string
		if err := rows.Scan(&avatarURL); err != nil {
			return nil, err
		}
		urls = append(urls, avatarURL)
	}
	return urls, rows.Err()
}

func (r *ProfileRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM profiles`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ProfileRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
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
