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

type fakeProfileRepo struct {
	profiles map[string]types.Profile
	isAdmin  map[string]bool
	adminErr error
	promoted []string
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: make(map[string]types.Profile),
		isAdmin:  make(map[string]bool),
	}
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (types.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return types.Profile{}, store.ErrNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) IsAdmin(ctx context.Context, id string) (bool, error) {
	if f.adminErr != nil {
		return false, f.adminErr
	}
	isAdmin, ok := f.isAdmin[id]
	if !ok {
		return false, store.ErrNotFound
	}
	return isAdmin, nil
}

func (f *fakeProfileRepo) UpdateDisplayName(ctx context.Context, id, displayName string) error {
	profile, ok := f.profiles[id]
	if !ok {
		return store.ErrNotFound
	}
	profile.DisplayName = displayName
	f.profiles[id] = profile
	return nil
}

func (f *fakeProfileRepo) UpdateAvatarURL(ctx context.Context, id, avatarURL string) error {
	profile, ok := f.profiles[id]
	if !ok {
		return store.ErrNotFound
	}
	profile.AvatarURL = avatarURL
	f.profiles[id] = profile
	return nil
}

func (f *fakeProfileRepo) SetAdminByEmail(ctx context.Context, email string, isAdmin bool) error {
	f.promoted = append(f.promoted, email)
	return nil
}

func (f *fakeProfileRepo) ListAvatarURLs(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (f *fakeProfileRepo) Count(ctx context.Context) (int, error) {
	return len(f.profiles), nil
}

func TestCheckAdminGranted(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.isAdmin["user-1"] = true
	svc := NewProfileService(repo)

	assert.Equal(t, AdminGranted, svc.CheckAdmin(context.Background(), "user-1"))
	assert.True(t, svc.IsAdmin(context.Background(), "user-1"))
}

func TestCheckAdminDenied(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.isAdmin["user-1"] = false
	svc := NewProfileService(repo)

	assert.Equal(t, AdminDenied, svc.CheckAdmin(context.Background(), "user-1"))
	assert.False(t, svc.IsAdmin(context.Background(), "user-1"))
}

func TestCheckAdminMissingProfileIsUnknown(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo)

	assert.Equal(t, AdminUnknown, svc.CheckAdmin(context.Background(), "ghost"))
	assert.False(t, svc.IsAdmin(context.Background(), "ghost"))
}

func TestCheckAdminLookupErrorIsUnknown(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.isAdmin["user-1"] = true
	repo.adminErr = errors.New("connection reset")
	svc := NewProfileService(repo)

	// An admin whose flag cannot be read right now is still refused.
	assert.Equal(t, AdminUnknown, svc.CheckAdmin(context.Background(), "user-1"))
	assert.False(t, svc.IsAdmin(context.Background(), "user-1"))
}

func TestUpdateDisplayNameRejectsBlank(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.profiles["user-1"] = types.Profile{ID: "user-1", DisplayName: "Before"}
	svc := NewProfileService(repo)

	err := svc.UpdateDisplayName(context.Background(), "user-1", "   ")
	require.ErrorIs(t, err, ErrEmptyDisplayName)
	assert.Equal(t, "Before", repo.profiles["user-1"].DisplayName)
}

func TestUpdateDisplayNameTrims(t *testing.T) {
	repo := newFakeProfileRepo()
	repo.profiles["user-1"] = types.Profile{ID: "user-1"}
	svc := NewProfileService(repo)

	require.NoError(t, svc.UpdateDisplayName(context.Background(), "user-1", "  New Name  "))
	assert.Equal(t, "New Name", repo.profiles["user-1"].DisplayName)
}

func TestPromoteEmptyEmail(t *testing.T) {
	svc := NewProfileService(newFakeProfileRepo())

	err := svc.Promote(context.Background(), "   ")
	require.ErrorIs(t, err, store.ErrNotFound)
}
