package types

import "time"

// User represents an authentication account.
// It carries credentials only; role and display data live on the Profile.
type User struct {
	// ID is the unique identifier of the user (UUID).
	ID string `json:"id" db:"id"`

	// Email is the user's login email address.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Profile is the application-level user record. Exactly one profile
// exists per user; IsAdmin is the sole authorization signal for
// privileged routes.
type Profile struct {
	// ID matches the owning user's ID.
	ID string `json:"id" db:"id"`

	// DisplayName is the name shown across the site.
	DisplayName string `json:"display_name" db:"display_name"`

	// AvatarURL points at the profile picture in object storage, if any.
	AvatarURL string `json:"avatar_url,omitempty" db:"avatar_url"`

	// IsAdmin grants access to /admin routes. Defaults to false.
	IsAdmin bool `json:"is_admin" db:"is_admin"`

	// CreatedAt is the timestamp when the profile was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent profile update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
