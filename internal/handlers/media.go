package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mediavault/apiserver/internal/services"
	"github.com/mediavault/apiserver/internal/store"
	"github.com/mediavault/apiserver/types"
)

// MediaHandler provides HTTP handlers for browsing assets and the
// save toggle.
type MediaHandler struct {
	media *services.MediaService
	saved *services.SavedService
}

// NewMediaHandler constructs a handler with the provided services.
func NewMediaHandler(media *services.MediaService, saved *services.SavedService) *MediaHandler {
	return &MediaHandler{media: media, saved: saved}
}

// MediaRouter registers media browsing and save routes on the given router.
func MediaRouter(r chi.Router, media *services.MediaService, saved *services.SavedService) {
	handler := NewMediaHandler(media, saved)

	r.Get("/", handler.ListMedia)
	r.Route("/{assetID}", func(r chi.Router) {
		r.Get("/", handler.GetMedia)
		r.Post("/save", handler.ToggleSave)
	})
}

func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := parseMediaFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.media.List(r.Context(), filter, offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list media")
		return
	}

	writeJSON(w, http.StatusOK, MediaListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	assetID, err := parseAssetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	asset, err := h.media.Get(r.Context(), assetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "media not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load media")
		return
	}

	resp := MediaDetailResponse{Asset: asset}
	if userID, err := userIDFromContext(r.Context()); err == nil {
		saved, err := h.saved.IsSaved(r.Context(), userID, assetID)
		if err == nil {
			resp.Saved = &saved
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ToggleSave flips the save state of an asset for the current user.
// The client sends the state it believes is current; the response
// carries the state after the toggle.
func (h *MediaHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	assetID, err := parseAssetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req ToggleSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	saved, err := h.saved.Toggle(r.Context(), userID, assetID, req.Saved)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update saved state")
		return
	}

	writeJSON(w, http.StatusOK, ToggleSaveResponse{Saved: saved})
}

// HomeHandler serves the landing feed. The gate guarantees a session
// before this runs.
func HomeHandler(media *services.MediaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := userIDFromContext(r.Context()); err != nil {
			http.Redirect(w, r, loginPath, http.StatusFound)
			return
		}

		items, total, err := media.List(r.Context(), store.MediaFilter{Recommended: true}, 0, defaultLimit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load feed")
			return
		}
		writeJSON(w, http.StatusOK, MediaListResponse{
			Items: items,
			Page:  defaultPage,
			Limit: defaultLimit,
			Total: total,
		})
	}
}

// LoginPageHandler answers the destination of unauthenticated
// redirects so clients land on a stable endpoint.
func LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"login": "POST /auth/login"})
	}
}

func parseMediaFilter(r *http.Request) (store.MediaFilter, error) {
	var filter store.MediaFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		if raw != types.AssetTypeImage && raw != types.AssetTypeVideo {
			return filter, errors.New("invalid type")
		}
		filter.AssetType = raw
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			return filter, errors.New("invalid category")
		}
		filter.CategoryID = id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("recommended")); raw != "" {
		recommended, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, errors.New("invalid recommended")
		}
		filter.Recommended = recommended
	}
	return filter, nil
}

func parseAssetID(r *http.Request) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "assetID"))
	if raw == "" {
		return "", errors.New("invalid asset id")
	}
	return raw, nil
}

type MediaListResponse struct {
	Items []types.MediaAsset `json:"items"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
	Total int                `json:"total"`
}

type MediaDetailResponse struct {
	Asset types.MediaAsset `json:"asset"`
	Saved *bool            `json:"saved,omitempty"`
}

type ToggleSaveRequest struct {
	Saved bool `json:"saved"`
}

type ToggleSaveResponse struct {
	Saved bool `json:"saved"`
}
