package transport

import (
	"net/http"
	"strconv"
	"strings"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"
	"storefront-admin/internal/middleware"
	"storefront-admin/internal/service"
	"storefront-admin/internal/session"

	"github.com/go-chi/chi/v5"
)

// CategoryHandler handles category listing and the inline add/edit form
type CategoryHandler struct {
	*Pages
	catalog  *service.CatalogService
	maxBytes int64
}

func NewCategoryHandler(pages *Pages, catalog *service.CatalogService, maxBytes int64) *CategoryHandler {
	return &CategoryHandler{Pages: pages, catalog: catalog, maxBytes: maxBytes}
}

func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/{id}", h.Update)
		r.Post("/{id}/delete", h.Delete)
	})
}

// categoryForm is the posted category form
type categoryForm struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	IsActive    bool   `json:"isActive"`
}

type categoryListView struct {
	Categories []domain.Category
	Editing    *domain.Category
}

// List shows the categories. ?edit={id} opens the form on one of them.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to load categories"); handled {
			return
		}
	}

	view := categoryListView{
		Categories: service.Filter(categories, r.URL.Query().Get("q"), func(c domain.Category) string { return c.Name }),
	}
	if edit := r.URL.Query().Get("edit"); edit != "" {
		for i := range categories {
			if categories[i].ID == edit {
				view.Editing = &categories[i]
				break
			}
		}
	}

	h.render(w, r, "categories.html", "Categories", view, toasts(notice)...)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r, "/categories")
	if !ok {
		return
	}

	if err := h.catalog.CreateCategory(r.Context(), form); err != nil {
		h.fail(w, r, err, "/categories")
		return
	}
	h.done(w, r, "Category created!", "/categories")
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	form, ok := h.decode(w, r, "/categories?edit="+id)
	if !ok {
		return
	}

	if err := h.catalog.UpdateCategory(r.Context(), id, form); err != nil {
		h.fail(w, r, err, "/categories?edit="+id)
		return
	}
	h.done(w, r, "Category updated!", "/categories")
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		h.fail(w, r, err, "/categories")
		return
	}
	h.done(w, r, "Category deleted", "/categories")
}

// decode validates the posted form and builds the backend submission.
func (h *CategoryHandler) decode(w http.ResponseWriter, r *http.Request, back string) (*backend.Multipart, bool) {
	if err := parseForm(w, r, h.maxBytes); err != nil {
		h.invalid(w, r, "Invalid form submission", back)
		return nil, false
	}

	input := categoryForm{
		Name:        strings.TrimSpace(r.PostForm.Get("name")),
		Description: strings.TrimSpace(r.PostForm.Get("description")),
		IsActive:    r.PostForm.Get("isActive") != "",
	}
	if err := middleware.ValidateStruct(input); err != nil {
		h.invalid(w, r, middleware.FirstValidationMessage(err), back)
		return nil, false
	}

	image, err := formFile(r, "image")
	if err != nil {
		h.invalid(w, r, "Could not read the selected image", back)
		return nil, false
	}

	form := backend.NewMultipart()
	form.AddField("name", input.Name)
	form.AddField("description", input.Description)
	form.AddField("isActive", strconv.FormatBool(input.IsActive))
	attach(form, "image", image)
	return form, true
}
