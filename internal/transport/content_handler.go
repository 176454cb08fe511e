package transport

import (
	"net/http"
	"strings"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"
	"storefront-admin/internal/middleware"
	"storefront-admin/internal/service"
	"storefront-admin/internal/session"

	"github.com/go-chi/chi/v5"
)

// ContentHandler manages blog posts and homepage slides
type ContentHandler struct {
	*Pages
	api      *backend.Client
	maxBytes int64
}

func NewContentHandler(pages *Pages, api *backend.Client, maxBytes int64) *ContentHandler {
	return &ContentHandler{Pages: pages, api: api, maxBytes: maxBytes}
}

func (h *ContentHandler) RegisterRoutes(r chi.Router) {
	r.Route("/blogs", func(r chi.Router) {
		r.Get("/", h.Blogs)
		r.Post("/", h.CreateBlog)
		r.Post("/{id}", h.UpdateBlog)
		r.Post("/{id}/delete", h.DeleteBlog)
	})
	r.Route("/sliders", func(r chi.Router) {
		r.Get("/", h.Sliders)
		r.Post("/", h.CreateSlider)
		r.Post("/{id}", h.UpdateSlider)
		r.Post("/{id}/delete", h.DeleteSlider)
	})
}

type blogForm struct {
	Title   string            `json:"title" validate:"required"`
	Content string            `json:"content" validate:"required"`
	Status  domain.BlogStatus `json:"status" validate:"oneof=Draft Published"`
	Author  string            `json:"author"`
	Tags    []string          `json:"tags"`
}

type blogListView struct {
	Blogs   []domain.Blog
	Editing *domain.Blog
}

func (h *ContentHandler) Blogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.api.ListBlogs(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to load blogs"); handled {
			return
		}
	}

	view := blogListView{
		Blogs: service.Filter(blogs, r.URL.Query().Get("q"),
			func(b domain.Blog) string { return b.Title },
			func(b domain.Blog) string { return b.Author },
		),
	}
	if edit := r.URL.Query().Get("edit"); edit != "" {
		for i := range blogs {
			if blogs[i].ID == edit {
				view.Editing = &blogs[i]
				break
			}
		}
	}

	h.render(w, r, "blogs.html", "Blogs", view, toasts(notice)...)
}

func (h *ContentHandler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeBlog(w, r, "/blogs")
	if !ok {
		return
	}

	if err := h.api.CreateBlog(r.Context(), form); err != nil {
		h.fail(w, r, err, "/blogs")
		return
	}
	h.done(w, r, "Blog created!", "/blogs")
}

func (h *ContentHandler) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	form, ok := h.decodeBlog(w, r, "/blogs?edit="+id)
	if !ok {
		return
	}

	if err := h.api.UpdateBlog(r.Context(), id, form); err != nil {
		h.fail(w, r, err, "/blogs?edit="+id)
		return
	}
	h.done(w, r, "Blog updated!", "/blogs")
}

func (h *ContentHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	if err := h.api.DeleteBlog(r.Context(), id); err != nil {
		h.fail(w, r, err, "/blogs")
		return
	}
	h.done(w, r, "Blog deleted", "/blogs")
}

func (h *ContentHandler) decodeBlog(w http.ResponseWriter, r *http.Request, back string) (*backend.Multipart, bool) {
	if err := parseForm(w, r, h.maxBytes); err != nil {
		h.invalid(w, r, "Invalid form submission", back)
		return nil, false
	}

	input := blogForm{
		Title:   strings.TrimSpace(r.PostForm.Get("title")),
		Content: strings.TrimSpace(r.PostForm.Get("content")),
		Status:  domain.BlogStatus(r.PostForm.Get("status")),
		Author:  strings.TrimSpace(r.PostForm.Get("author")),
		Tags:    splitTags(r.PostForm.Get("tags")),
	}
	if input.Status == "" {
		input.Status = domain.BlogDraft
	}
	if input.Author == "" {
		input.Author = domain.DefaultBlogAuthor
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
	form.AddField("title", input.Title)
	form.AddField("content", input.Content)
	form.AddField("status", string(input.Status))
	form.AddField("author", input.Author)
	if err := form.AddJSONField("tags", input.Tags); err != nil {
		h.invalid(w, r, "Invalid tags", back)
		return nil, false
	}
	attach(form, "image", image)
	return form, true
}

// splitTags parses a comma separated tag list, dropping blanks.
func splitTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

type sliderListView struct {
	Sliders []domain.Slider
	Editing *domain.Slider
}

func (h *ContentHandler) Sliders(w http.ResponseWriter, r *http.Request) {
	sliders, err := h.api.ListSliders(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to load sliders"); handled {
			return
		}
	}

	view := sliderListView{Sliders: sliders}
	if edit := r.URL.Query().Get("edit"); edit != "" {
		for i := range sliders {
			if sliders[i].ID == edit {
				view.Editing = &sliders[i]
				break
			}
		}
	}

	h.render(w, r, "sliders.html", "Sliders", view, toasts(notice)...)
}

func (h *ContentHandler) CreateSlider(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeSlider(w, r, "/sliders")
	if !ok {
		return
	}

	if err := h.api.CreateSlider(r.Context(), form); err != nil {
		h.fail(w, r, err, "/sliders")
		return
	}
	h.done(w, r, "Slider created", "/sliders")
}

func (h *ContentHandler) UpdateSlider(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	form, ok := h.decodeSlider(w, r, "/sliders?edit="+id)
	if !ok {
		return
	}

	if err := h.api.UpdateSlider(r.Context(), id, form); err != nil {
		h.fail(w, r, err, "/sliders?edit="+id)
		return
	}
	h.done(w, r, "Slider updated", "/sliders")
}

func (h *ContentHandler) DeleteSlider(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	if err := h.api.DeleteSlider(r.Context(), id); err != nil {
		h.fail(w, r, err, "/sliders")
		return
	}
	h.done(w, r, "Deleted", "/sliders")
}

var sliderFields = []string{"title", "subtitle", "description", "product", "tag"}

func (h *ContentHandler) decodeSlider(w http.ResponseWriter, r *http.Request, back string) (*backend.Multipart, bool) {
	if err := parseForm(w, r, h.maxBytes); err != nil {
		h.invalid(w, r, "Invalid form submission", back)
		return nil, false
	}

	if strings.TrimSpace(r.PostForm.Get("title")) == "" {
		h.invalid(w, r, "Please enter a title", back)
		return nil, false
	}
	if strings.TrimSpace(r.PostForm.Get("subtitle")) == "" {
		h.invalid(w, r, "Please enter a subtitle", back)
		return nil, false
	}

	image, err := formFile(r, "image")
	if err != nil {
		h.invalid(w, r, "Could not read the selected image", back)
		return nil, false
	}

	form := backend.NewMultipart()
	for _, field := range sliderFields {
		form.AddField(field, strings.TrimSpace(r.PostForm.Get(field)))
	}
	attach(form, "image", image)
	return form, true
}
