package types

import "time"

// SavedItem associates a user with a media asset they favorited.
// At most one row exists per (user, asset) pair.
type SavedItem struct {
	ID           int64     `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	MediaAssetID string    `json:"media_asset_id" db:"media_asset_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
