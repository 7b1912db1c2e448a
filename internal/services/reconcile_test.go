package services

import (
	"context"
	"testing"
	"time"

	"github.com/mediavault/apiserver/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectLister struct {
	objects []storage.ObjectInfo
	deleted []string
}

func (f *fakeObjectLister) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	return f.objects, nil
}

func (f *fakeObjectLister) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func staticSource(urls ...string) ReferenceSource {
	return func(ctx context.Context) ([]string, error) {
		return urls, nil
	}
}

func TestSweepDeletesOnlyOrphans(t *testing.T) {
	old := time.Now().Add(-48 * time.Hour)
	lister := &fakeObjectLister{objects: []storage.ObjectInfo{
		{Key: "abc123_1.jpg", LastModified: old},
		{Key: "def456_2.mp4", LastModified: old},
		{Key: "avatars/ghi789_3.png", LastModified: old},
	}}
	svc := NewReconcileService(lister, nil,
		staticSource("https://cdn.example.com/media/abc123_1.jpg"),
		staticSource("https://cdn.example.com/media/avatars/ghi789_3.png"),
	)

	report, err := svc.Sweep(context.Background(), 24*time.Hour, false)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, []string{"def456_2.mp4"}, report.Orphans)
	assert.Equal(t, 1, report.Deleted)
	assert.Equal(t, []string{"def456_2.mp4"}, lister.deleted)
}

func TestSweepSkipsRecentObjects(t *testing.T) {
	lister := &fakeObjectLister{objects: []storage.ObjectInfo{
		{Key: "fresh_upload.jpg", LastModified: time.Now()},
	}}
	svc := NewReconcileService(lister, nil, staticSource())

	// A just-stored object may belong to an upload whose row insert
	// has not landed yet.
	report, err := svc.Sweep(context.Background(), 24*time.Hour, false)
	require.NoError(t, err)

	assert.Empty(t, report.Orphans)
	assert.Empty(t, lister.deleted)
}

func TestSweepDryRunKeepsObjects(t *testing.T) {
	lister := &fakeObjectLister{objects: []storage.ObjectInfo{
		{Key: "orphan.jpg", LastModified: time.Now().Add(-48 * time.Hour)},
	}}
	svc := NewReconcileService(lister, nil, staticSource())

	report, err := svc.Sweep(context.Background(), 24*time.Hour, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"orphan.jpg"}, report.Orphans)
	assert.Equal(t, 0, report.Deleted)
	assert.Empty(t, lister.deleted)
}
