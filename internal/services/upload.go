package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mediavault/apiserver/internal/mq"
	"github.com/mediavault/apiserver/types"
	"go.uber.org/zap"
)

// ErrValidation marks upload rejections that happen before any remote
// call. No object or row exists when it is returned.
var ErrValidation = errors.New("validation failed")

// ObjectStore is the slice of the storage API the upload flow needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PublicURL(key string) string
}

// UploadRequest carries a file and its metadata into the upload flow.
type UploadRequest struct {
	File        io.Reader
	Size        int64
	Filename    string
	ContentType string

	Title         string
	Description   string
	CategoryID    int
	IsRecommended bool
	UploaderID    string
}

// UploadService turns an uploaded file plus metadata into a media
// asset. The flow is store-object, resolve-URL, write-row, strictly in
// that order, with no compensation: a failure after the object is
// stored leaves an orphan for the reconcile sweep.
type UploadService struct {
	storage ObjectStore
	media   MediaRepository
	events  EventPublisher
	logger  *zap.SugaredLogger
}

func NewUploadService(storage ObjectStore, media MediaRepository, events EventPublisher, logger *zap.SugaredLogger) *UploadService {
	return &UploadService{
		storage: storage,
		media:   media,
		events:  events,
		logger:  logger,
	}
}

// Upload runs the flow. Validation failures never touch storage.
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (types.MediaAsset, error) {
	if err := validateUpload(req); err != nil {
		return types.MediaAsset{}, err
	}

	key := objectKey(req.Filename)
	if err := s.storage.Put(ctx, key, req.File, req.Size, req.ContentType); err != nil {
		return types.MediaAsset{}, fmt.Errorf("store file: %w", err)
	}

	fileURL := s.storage.PublicURL(key)
	if strings.TrimSpace(fileURL) == "" {
		return types.MediaAsset{}, errors.New("resolve url: empty public url")
	}

	categoryID := req.CategoryID
	uploaderID := req.UploaderID
	asset := types.MediaAsset{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		FileURL:       fileURL,
		Format:        fileExtension(req.Filename),
		AssetType:     InferAssetType(req.ContentType),
		CategoryID:    &categoryID,
		UploaderID:    &uploaderID,
		IsRecommended: req.IsRecommended,
	}

	created, err := s.media.Create(ctx, asset)
	if err != nil {
		return types.MediaAsset{}, fmt.Errorf("write record: %w", err)
	}

	s.publishUploaded(ctx, created)
	return created, nil
}

func (s *UploadService) publishUploaded(ctx context.Context, asset types.MediaAsset) {
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
	if _, err := s.events.PublishAssetEvent(ctx, mq.ChannelAssetUploaded, event); err != nil && s.logger != nil {
		s.logger.Warnw("asset event publish failed", "asset_id", asset.ID, "error", err)
	}
}

func validateUpload(req UploadRequest) error {
	if req.File == nil {
		return fmt.Errorf("%w: file is required", ErrValidation)
	}
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.CategoryID < 1 {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}
	return nil
}

// InferAssetType maps a declared MIME type to an asset type. Anything
// that is not video/* is treated as an image.
func InferAssetType(contentType string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/") {
		return types.AssetTypeVideo
	}
	return types.AssetTypeImage
}

// UploadAvatar stores a profile image under the avatars/ prefix and
// returns its public URL. Callers own updating the profile row, so a
// failed update leaves the object orphaned like any other upload.
func (s *UploadService) UploadAvatar(ctx context.Context, file io.Reader, size int64, filename, contentType string) (string, error) {
	if file == nil {
		return "", fmt.Errorf("%w: file is required", ErrValidation)
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/") {
		return "", fmt.Errorf("%w: avatar must be an image", ErrValidation)
	}

	key := "avatars/" + objectKey(filename)
	if err := s.storage.Put(ctx, key, file, size, contentType); err != nil {
		return "", fmt.Errorf("store file: %w", err)
	}

	avatarURL := s.storage.PublicURL(key)
	if strings.TrimSpace(avatarURL) == "" {
		return "", errors.New("resolve url: empty public url")
	}
	return avatarURL, nil
}

// objectKey builds a collision-resistant storage key preserving the
// upload's extension: <randomhex>_<unixnano>[.ext].
func objectKey(filename string) string {
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	key := fmt.Sprintf("%s_%d", hex.EncodeToString(buf[:]), time.Now().UnixNano())
	if ext := fileExtension(filename); ext != "" {
		key += "." + ext
	}
	return key
}

func fileExtension(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	return strings.ToLower(ext)
}
