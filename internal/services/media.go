package services

import (
	"context"

	"github.com/mediavault/apiserver/internal/mq"
	"github.com/mediavault/apiserver/internal/store"
	"github.com/mediavault/apiserver/types"
	"go.uber.org/zap"
)

// MediaRepository defines persistence operations for media assets.
type MediaRepository interface {
	List(ctx context.Context, filter store.MediaFilter, offset, limit int) ([]types.MediaAsset, int, error)
	Get(ctx context.Context, id string) (types.MediaAsset, error)
	Create(ctx context.Context, asset types.MediaAsset) (types.MediaAsset, error)
	Update(ctx context.Context, asset types.MediaAsset) (types.MediaAsset, error)
	Delete(ctx context.Context, id string) error
	CountByType(ctx context.Context, assetType string) (int, error)
	ListFileURLs(ctx context.Context) ([]string, error)
}

// EventPublisher publishes asset lifecycle events. Nil disables events.
type EventPublisher interface {
	PublishAssetEvent(ctx context.Context, channel string, event mq.AssetEvent) (string, error)
}

// MediaStats summarizes the catalog for the admin dashboard.
type MediaStats struct {
	Images int `json:"images"`
	Videos int `json:"videos"`
	Users  int `json:"users"`
}

// MediaService encapsulates media use-cases.
type MediaService struct {
	repo     MediaRepository
	profiles *ProfileService
	events   EventPublisher
	logger   *zap.SugaredLogger
}

func NewMediaService(repo MediaRepository, profiles *ProfileService, events EventPublisher, logger *zap.SugaredLogger) *MediaService {
	return &MediaService{
		repo:     repo,
		profiles: profiles,
		events:   events,
		logger:   logger,
	}
}

func (s *MediaService) List(ctx context.Context, filter store.MediaFilter, offset, limit int) ([]types.MediaAsset, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, filter, offset, limit)
}

func (s *MediaService) Get(ctx context.Context, id string) (types.MediaAsset, error) {
	return s.repo.Get(ctx, id)
}

func (s *MediaService) Update(ctx context.Context, asset types.MediaAsset) (types.MediaAsset, error) {
	return s.repo.Update(ctx, asset)
}

// Delete removes the metadata row only. The stored object becomes an
// orphan; the reconcile sweep collects it later.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	asset, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishEvent(ctx, mq.ChannelAssetDeleted, asset)
	return nil
}

func (s *MediaService) Stats(ctx context.Context) (MediaStats, error) {
	images, err := s.repo.CountByType(ctx, types.AssetTypeImage)
	if err != nil {
		return MediaStats{}, err
	}
	videos, err := s.repo.CountByType(ctx, types.AssetTypeVideo)
	if err != nil {
		return MediaStats{}, err
	}
	users, err := s.profiles.Count(ctx)
	if err != nil {
		return MediaStats{}, err
	}
	return MediaStats{Images: images, Videos: videos, Users: users}, nil
}

func (s *MediaService) publishEvent(ctx context.Context, channel string, asset types.MediaAsset) {
	if s.events == nil {
		return
	}
	event := mq.AssetEvent{
		AssetID:   asset.ID,
		AssetType: asset.AssetType,
		FileURL:   asset.FileURL,
	}
	if asset.UploaderID != nil {
		event.UploaderID = *asset.UploaderID
	}
	if _, err := s.events.PublishAssetEvent(ctx, channel, event); err != nil && s.logger != nil {
		s.logger.Warnw("asset event publish failed", "channel", channel, "asset_id", asset.ID, "error", err)
	}
}
