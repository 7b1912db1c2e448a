package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mediavault/apiserver/internal/services"
	"github.com/mediavault/apiserver/internal/store"
	"github.com/mediavault/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSavedRepo struct {
	rows map[string]bool
}

func newMemSavedRepo() *memSavedRepo {
	return &memSavedRepo{rows: make(map[string]bool)}
}

func (f *memSavedRepo) Insert(ctx context.Context, userID, assetID string) error {
	if f.rows[userID+"/"+assetID] {
		return store.ErrDuplicate
	}
	f.rows[userID+"/"+assetID] = true
	return nil
}

func (f *memSavedRepo) Delete(ctx context.Context, userID, assetID string) (bool, error) {
	existed := f.rows[userID+"/"+assetID]
	delete(f.rows, userID+"/"+assetID)
	return existed, nil
}

func (f *memSavedRepo) Exists(ctx context.Context, userID, assetID string) (bool, error) {
	return f.rows[userID+"/"+assetID], nil
}

func (f *memSavedRepo) ListByUser(ctx context.Context, userID string) ([]types.MediaAsset, error) {
	return nil, nil
}

func toggleRequest(t *testing.T, assetID, userID string, believedSaved bool) *http.Request {
	t.Helper()
	body, err := json.Marshal(ToggleSaveRequest{Saved: believedSaved})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/media/"+assetID+"/save", bytes.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("assetID", assetID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	if userID != "" {
		ctx = withUser(ctx, userID)
	}
	return req.WithContext(ctx)
}

func TestToggleSaveRequiresPrincipal(t *testing.T) {
	handler := NewMediaHandler(nil, services.NewSavedService(newMemSavedRepo()))

	rec := httptest.NewRecorder()
	handler.ToggleSave(rec, toggleRequest(t, "asset-1", "", false))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestToggleSaveRoundTrip(t *testing.T) {
	repo := newMemSavedRepo()
	handler := NewMediaHandler(nil, services.NewSavedService(repo))

	rec := httptest.NewRecorder()
	handler.ToggleSave(rec, toggleRequest(t, "asset-1", "user-1", false))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ToggleSaveResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Saved)

	rec = httptest.NewRecorder()
	handler.ToggleSave(rec, toggleRequest(t, "asset-1", "user-1", true))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Saved)
	assert.Empty(t, repo.rows)
}

func TestToggleSaveStaleBelievedState(t *testing.T) {
	repo := newMemSavedRepo()
	repo.rows["user-1/asset-1"] = true
	handler := NewMediaHandler(nil, services.NewSavedService(repo))

	// Client thinks the item is unsaved but the row already exists.
	rec := httptest.NewRecorder()
	handler.ToggleSave(rec, toggleRequest(t, "asset-1", "user-1", false))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ToggleSaveResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Saved)
}
