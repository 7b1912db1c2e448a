package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mediavault/apiserver/internal/services"
	"github.com/mediavault/apiserver/types"
)

// CategoryRouter registers category routes on the given router.
func CategoryRouter(r chi.Router, categories *services.CategoryService) {
	handler := &CategoryHandler{categories: categories}

	r.Get("/", handler.ListCategories)
}

type CategoryHandler struct {
	categories *services.CategoryService
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	assetType := strings.TrimSpace(r.URL.Query().Get("type"))
	if assetType != "" && assetType != types.AssetTypeImage && assetType != types.AssetTypeVideo {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}

	items, err := h.categories.List(r.Context(), assetType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if items == nil {
		items = []types.Category{}
	}
	writeJSON(w, http.StatusOK, CategoryListResponse{Items: items})
}

type CategoryListResponse struct {
	Items []types.Category `json:"items"`
}
