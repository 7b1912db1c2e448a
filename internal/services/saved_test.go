package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mediavault/apiserver/internal/store"
	"github.com/mediavault/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSavedRepo struct {
	rows      map[string]bool
	insertErr error
	deleteErr error
}

func newFakeSavedRepo() *fakeSavedRepo {
	return &fakeSavedRepo{rows: make(map[string]bool)}
}

func (f *fakeSavedRepo) key(userID, assetID string) string {
	return userID + "/" + assetID
}

func (f *fakeSavedRepo) Insert(ctx context.Context, userID, assetID string) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if f.rows[f.key(userID, assetID)] {
		return store.ErrDuplicate
	}
	f.rows[f.key(userID, assetID)] = true
	return nil
}

func (f *fakeSavedRepo) Delete(ctx context.Context, userID, assetID string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	existed := f.rows[f.key(userID, assetID)]
	delete(f.rows, f.key(userID, assetID))
	return existed, nil
}

func (f *fakeSavedRepo) Exists(ctx context.Context, userID, assetID string) (bool, error) {
	return f.rows[f.key(userID, assetID)], nil
}

func (f *fakeSavedRepo) ListByUser(ctx context.Context, userID string) ([]types.MediaAsset, error) {
	return nil, nil
}

func TestToggleSaveThenUnsave(t *testing.T) {
	repo := newFakeSavedRepo()
	svc := NewSavedService(repo)
	ctx := context.Background()

	saved, err := svc.Toggle(ctx, "user-1", "asset-1", false)
	require.NoError(t, err)
	assert.True(t, saved)

	exists, err := svc.IsSaved(ctx, "user-1", "asset-1")
	require.NoError(t, err)
	assert.True(t, exists)

	saved, err = svc.Toggle(ctx, "user-1", "asset-1", true)
	require.NoError(t, err)
	assert.False(t, saved)

	exists, err = svc.IsSaved(ctx, "user-1", "asset-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestToggleDuplicateInsertIsAlreadySaved(t *testing.T) {
	repo := newFakeSavedRepo()
	repo.rows[repo.key("user-1", "asset-1")] = true
	svc := NewSavedService(repo)

	// The caller believes the item is unsaved, but another tab saved
	// it first. The unique constraint fires and the toggle reports
	// the item as saved rather than failing.
	saved, err := svc.Toggle(context.Background(), "user-1", "asset-1", false)
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestToggleUnsaveMissingRowSucceeds(t *testing.T) {
	repo := newFakeSavedRepo()
	svc := NewSavedService(repo)

	saved, err := svc.Toggle(context.Background(), "user-1", "asset-1", true)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestToggleInsertFailure(t *testing.T) {
	repo := newFakeSavedRepo()
	repo.insertErr = errors.New("connection reset")
	svc := NewSavedService(repo)

	saved, err := svc.Toggle(context.Background(), "user-1", "asset-1", false)
	require.Error(t, err)
	assert.False(t, saved)
}

func TestToggleDeleteFailureStaysSaved(t *testing.T) {
	repo := newFakeSavedRepo()
	repo.rows[repo.key("user-1", "asset-1")] = true
	repo.deleteErr = errors.New("connection reset")
	svc := NewSavedService(repo)

	saved, err := svc.Toggle(context.Background(), "user-1", "asset-1", true)
	require.Error(t, err)
	assert.True(t, saved)
}
