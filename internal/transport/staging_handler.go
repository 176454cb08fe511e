package transport

import (
	"mime"
	"net/http"
	"strconv"

	"storefront-admin/internal/productform"
	"storefront-admin/internal/staging"

	"github.com/go-chi/chi/v5"
)

// StagingHandler serves pending uploads back to the form for previews
type StagingHandler struct {
	store *staging.Store
}

func NewStagingHandler(store *staging.Store) *StagingHandler {
	return &StagingHandler{store: store}
}

func (h *StagingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/staging/{id}", h.Preview)
}

func (h *StagingHandler) Preview(w http.ResponseWriter, r *http.Request) {
	file, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	// Only images render inline; anything else downloads
	if productform.IsImage(file.ContentType) {
		w.Header().Set("Content-Type", file.ContentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Length", strconv.Itoa(file.Size()))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(file.Data)
}
