package services

import (
	"context"
	"strings"
	"time"

	"github.com/mediavault/apiserver/internal/storage"
	"go.uber.org/zap"
)

// ObjectLister is the slice of the storage API the reconciler needs.
type ObjectLister interface {
	List(ctx context.Context) ([]storage.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// ReferenceSource yields URLs that keep stored objects alive.
type ReferenceSource func(ctx context.Context) ([]string, error)

// ReconcileReport summarizes one sweep.
type ReconcileReport struct {
	Scanned int
	Orphans []string
	Deleted int
}

// ReconcileService finds stored objects with no referencing database
// row. Uploads and deletes are not transactional across the object
// store and the row store, so orphans accumulate; this sweep is the
// out-of-band cleanup for them.
type ReconcileService struct {
	storage ObjectLister
	sources []ReferenceSource
	logger  *zap.SugaredLogger
}

func NewReconcileService(objStore ObjectLister, logger *zap.SugaredLogger, sources ...ReferenceSource) *ReconcileService {
	return &ReconcileService{
		storage: objStore,
		sources: sources,
		logger:  logger,
	}
}

// Sweep deletes unreferenced objects older than grace. With dryRun the
// orphans are reported but kept. Objects younger than grace are never
// touched: an in-flight upload may not have written its row yet.
func (s *ReconcileService) Sweep(ctx context.Context, grace time.Duration, dryRun bool) (ReconcileReport, error) {
	objects, err := s.storage.List(ctx)
	if err != nil {
		return ReconcileReport{}, err
	}

	var urls []string
	for _, source := range s.sources {
		sourceURLs, err := source(ctx)
		if err != nil {
			return ReconcileReport{}, err
		}
		urls = append(urls, sourceURLs...)
	}

	cutoff := time.Now().Add(-grace)
	report := ReconcileReport{Scanned: len(objects)}
	for _, object := range objects {
		if object.LastModified.After(cutoff) {
			continue
		}
		if isReferenced(urls, object.Key) {
			continue
		}
		report.Orphans = append(report.Orphans, object.Key)
		if dryRun {
			continue
		}
		if err := s.storage.Delete(ctx, object.Key); err != nil {
			if s.logger != nil {
				s.logger.Warnw("orphan delete failed", "key", object.Key, "error", err)
			}
			continue
		}
		report.Deleted++
	}
	return report, nil
}

// isReferenced reports whether any stored URL points at the key. Keys
// may contain a path prefix (avatars/...), so the whole key is matched
// as a URL path suffix.
func isReferenced(urls []string, key string) bool {
	for _, rawURL := range urls {
		if strings.HasSuffix(rawURL, "/"+key) {
			return true
		}
	}
	return false
}
