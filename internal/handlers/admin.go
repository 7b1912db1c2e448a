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
)

const (
	maxMultipartMemory = 32 << 20
	maxUploadBytes     = 512 << 20

	formFieldFile        = "file"
	formFieldTitle       = "title"
	formFieldDesc        = "description"
	formFieldCategory    = "category_id"
	formFieldRecommended = "is_recommended"
)

// AdminHandler provides the curation endpoints behind the admin gate.
type AdminHandler struct {
	media   *services.MediaService
	uploads *services.UploadService
}

// AdminRouter registers admin routes on the given router. The caller
// wires the admin middleware; routes here assume an admin principal.
func AdminRouter(r chi.Router, media *services.MediaService, uploads *services.UploadService) {
	handler := &AdminHandler{media: media, uploads: uploads}

	r.Get("/stats", handler.Stats)
	r.Get("/media", handler.ListMedia)
	r.Post("/upload", handler.Upload)
	r.Route("/media/{assetID}", func(r chi.Router) {
		r.Patch("/", handler.UpdateMedia)
		r.Delete("/", handler.DeleteMedia)
	})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.media.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, MediaListResponse{Items: items, Page: page, Limit: limit, Total: total})
}

// Upload accepts a multipart file plus metadata fields and runs the
// upload flow. Step failures after validation surface as 500s with
// the failing step named in the message.
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if h.uploads == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile(formFieldFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	categoryID := 0
	if raw := strings.TrimSpace(r.FormValue(formFieldCategory)); raw != "" {
		categoryID, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
	}
	recommended := false
	if raw := strings.TrimSpace(r.FormValue(formFieldRecommended)); raw != "" {
		recommended, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid is_recommended")
			return
		}
	}

	asset, err := h.uploads.Upload(r.Context(), services.UploadRequest{
		File:          file,
		Size:          header.Size,
		Filename:      header.Filename,
		ContentType:   header.Header.Get("Content-Type"),
		Title:         r.FormValue(formFieldTitle),
		Description:   r.FormValue(formFieldDesc),
		CategoryID:    categoryID,
		IsRecommended: recommended,
		UploaderID:    userID,
	})
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, asset)
}

func (h *AdminHandler) UpdateMedia(w http.ResponseWriter, r *http.Request) {
	assetID, err := parseAssetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateMediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
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

	if req.Title != nil {
		asset.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		asset.Description = strings.TrimSpace(*req.Description)
	}
	if req.CategoryID != nil {
		asset.CategoryID = req.CategoryID
	}
	if req.IsRecommended != nil {
		asset.IsRecommended = *req.IsRecommended
	}
	if asset.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	updated, err := h.media.Update(r.Context(), asset)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "media not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update media")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteMedia removes the metadata row. The stored object is left for
// the reconcile sweep.
func (h *AdminHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	assetID, err := parseAssetID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.media.Delete(r.Context(), assetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "media not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete media")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type UpdateMediaRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	CategoryID    *int    `json:"category_id"`
	IsRecommended *bool   `json:"is_recommended"`
}
