package services

import (
	"context"
	"errors"
	"strings"

	"github.com/mediavault/apiserver/internal/store"
	"github.com/mediavault/apiserver/types"
)

// AdminStatus is the explicit outcome of an admin lookup. Anything
// other than AdminGranted must be treated as a denial.
type AdminStatus int

const (
	// AdminDenied means the profile exists and is_admin is false.
	AdminDenied AdminStatus = iota
	// AdminGranted means the profile exists and is_admin is true.
	AdminGranted
	// AdminUnknown means the lookup itself failed (missing row,
	// transport error). Fail closed.
	AdminUnknown
)

// ErrEmptyDisplayName rejects profile updates with a blank name.
var ErrEmptyDisplayName = errors.New("display name cannot be empty")

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (types.Profile, error)
	IsAdmin(ctx context.Context, id string) (bool, error)
	UpdateDisplayName(ctx context.Context, id, displayName string) error
	UpdateAvatarURL(ctx context.Context, id, avatarURL string) error
	SetAdminByEmail(ctx context.Context, email string, isAdmin bool) error
	ListAvatarURLs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// ProfileService encapsulates profile use-cases, including the
// authorization predicate shared by the request gate and admin
// handlers.
type ProfileService struct {
	repo ProfileRepository
}

func NewProfileService(repo ProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

func (s *ProfileService) Get(ctx context.Context, id string) (types.Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// CheckAdmin resolves the user's admin flag with no caching, so a
// revoked admin loses access on the very next request.
func (s *ProfileService) CheckAdmin(ctx context.Context, userID string) AdminStatus {
	isAdmin, err := s.repo.IsAdmin(ctx, userID)
	if err != nil {
		return AdminUnknown
	}
	if !isAdmin {
		return AdminDenied
	}
	return AdminGranted
}

// IsAdmin collapses the tri-state to a boolean, denying on lookup
// failure.
func (s *ProfileService) IsAdmin(ctx context.Context, userID string) bool {
	return s.CheckAdmin(ctx, userID) == AdminGranted
}

func (s *ProfileService) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return ErrEmptyDisplayName
	}
	return s.repo.UpdateDisplayName(ctx, id, displayName)
}

func (s *ProfileService) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	return s.repo.UpdateAvatarURL(ctx, id, avatarURL)
}

// Promote flips the admin flag for the account owning email.
func (s *ProfileService) Promote(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return store.ErrNotFound
	}
	return s.repo.SetAdminByEmail(ctx, email, true)
}

func (s *ProfileService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
