package services

import (
	"context"
	"errors"

	"github.com/mediavault/apiserver/internal/store"
	"github.com/mediavault/apiserver/types"
)

// SavedRepository defines persistence operations for saved items.
type SavedRepository interface {
	Insert(ctx context.Context, userID, assetID string) error
	Delete(ctx context.Context, userID, assetID string) (bool, error)
	Exists(ctx context.Context, userID, assetID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]types.MediaAsset, error)
}

// SavedService encapsulates the save-toggle flow.
type SavedService struct {
	repo SavedRepository
}

func NewSavedService(repo SavedRepository) *SavedService {
	return &SavedService{repo: repo}
}

// Toggle flips the saved state based on the caller's believed current
// state and returns the new state. The flow is idempotent against
// races: a duplicate insert is swallowed as "already saved" and a
// delete of a missing row is still an unsave.
func (s *SavedService) Toggle(ctx context.Context, userID, assetID string, isSaved bool) (bool, error) {
	if isSaved {
		if _, err := s.repo.Delete(ctx, userID, assetID); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.repo.Insert(ctx, userID, assetID); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// IsSaved reports the current saved state for a (user, asset) pair.
func (s *SavedService) IsSaved(ctx context.Context, userID, assetID string) (bool, error) {
	return s.repo.Exists(ctx, userID, assetID)
}

// ListByUser returns the user's saved assets.
func (s *SavedService) ListByUser(ctx context.Context, userID string) ([]types.MediaAsset, error) {
	return s.repo.ListByUser(ctx, userID)
}
