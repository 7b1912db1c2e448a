package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mediavault/apiserver/internal/services"
	"github.com/mediavault/apiserver/types"
)

// SavedHandler lists the current user's saved assets.
type SavedHandler struct {
	saved *services.SavedService
}

// SavedRouter registers the saved-items routes on the given router.
func SavedRouter(r chi.Router, saved *services.SavedService) {
	handler := &SavedHandler{saved: saved}

	r.Get("/", handler.ListSaved)
}

func (h *SavedHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.saved.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list saved items")
		return
	}
	if items == nil {
		items = []types.MediaAsset{}
	}

	writeJSON(w, http.StatusOK, SavedListResponse{Items: items, Total: len(items)})
}

type SavedListResponse struct {
	Items []types.MediaAsset `json:"items"`
	Total int                `json:"total"`
}
