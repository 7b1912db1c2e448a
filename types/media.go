package types

import "time"

// Asset types as stored in media_assets.asset_type.
const (
	AssetTypeImage = "image"
	AssetTypeVideo = "video"
)

// MediaAsset is a published image or video. FileURL points at the
// public object in storage; the row is written only after the object
// exists, but nothing re-checks the link afterwards.
type MediaAsset struct {
	// ID is the unique identifier of the asset (UUID).
	ID string `json:"id" db:"id"`

	// Title is the human-readable name of the asset.
	Title string `json:"title" db:"title"`

	// Description is optional free-form text.
	Description string `json:"description,omitempty" db:"description"`

	// FileURL is the publicly resolvable URL of the stored object.
	FileURL string `json:"file_url" db:"file_url"`

	// Format is the file extension of the uploaded object (e.g. "png").
	Format string `json:"format" db:"format"`

	// AssetType is "image" or "video", inferred from the upload's MIME type.
	AssetType string `json:"asset_type" db:"asset_type"`

	// CategoryID references the category the asset was filed under.
	CategoryID *int `json:"category_id,omitempty" db:"category_id"`

	// UploaderID references the profile that uploaded the asset.
	UploaderID *string `json:"uploader_id,omitempty" db:"uploader_id"`

	// IsRecommended marks the asset for the curated home feed.
	IsRecommended bool `json:"is_recommended" db:"is_recommended"`

	// CreatedAt is the timestamp when the asset row was written.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Category groups assets by kind. Read-only at runtime; rows are seeded
// by migrations.
type Category struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Type      string    `json:"type" db:"type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
