package transport

import (
	"net/http"
	"strings"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"
	"storefront-admin/internal/middleware"
	"storefront-admin/internal/session"

	"github.com/go-chi/chi/v5"
)

// SiteHandler manages the storefront's singleton settings: logo, sale
// banner and contact details
type SiteHandler struct {
	*Pages
	api      *backend.Client
	maxBytes int64
}

func NewSiteHandler(pages *Pages, api *backend.Client, maxBytes int64) *SiteHandler {
	return &SiteHandler{Pages: pages, api: api, maxBytes: maxBytes}
}

func (h *SiteHandler) RegisterRoutes(r chi.Router) {
	r.Get("/logo", h.Logo)
	r.Post("/logo", h.UploadLogo)
	r.Post("/logo/delete", h.DeleteLogo)

	r.Get("/sale-banner", h.SaleBanner)
	r.Post("/sale-banner", h.UploadSaleBanner)
	r.Post("/sale-banner/delete", h.DeleteSaleBanner)

	r.Get("/contact", h.Contact)
	r.Post("/contact", h.UpdateContact)
}

func (h *SiteHandler) Logo(w http.ResponseWriter, r *http.Request) {
	logo, err := h.api.Logo(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to load logo"); handled {
			return
		}
		logo = &domain.Logo{}
	}
	h.render(w, r, "logo.html", "Logo", logo, toasts(notice)...)
}

// UploadLogo replaces the logo file, its description, or both
func (h *SiteHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, h.maxBytes); err != nil {
		h.invalid(w, r, "Invalid form submission", "/logo")
		return
	}

	file, err := formFile(r, "file")
	if err != nil {
		h.invalid(w, r, "Could not read the selected logo", "/logo")
		return
	}
	description := strings.TrimSpace(r.PostForm.Get("description"))
	if file == nil && description == "" {
		h.invalid(w, r, "No update to perform.", "/logo")
		return
	}

	form := backend.NewMultipart()
	attach(form, "file", file)
	form.AddField("description", description)

	if _, err := h.api.UploadLogo(r.Context(), form); err != nil {
		h.fail(w, r, err, "/logo")
		return
	}
	h.done(w, r, "Logo updated!", "/logo")
}

func (h *SiteHandler) DeleteLogo(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeleteLogo(r.Context()); err != nil {
		h.fail(w, r, err, "/logo")
		return
	}
	h.done(w, r, "Logo removed successfully", "/logo")
}

func (h *SiteHandler) SaleBanner(w http.ResponseWriter, r *http.Request) {
	banner, err := h.api.SaleBanner(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to load sale banner"); handled {
			return
		}
		banner = &domain.SaleBanner{}
	}
	h.render(w, r, "sale_banner.html", "Sale banner", banner, toasts(notice)...)
}

func (h *SiteHandler) UploadSaleBanner(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r, h.maxBytes); err != nil {
		h.invalid(w, r, "Invalid form submission", "/sale-banner")
		return
	}

	file, err := formFile(r, "file")
	if err != nil {
		h.invalid(w, r, "Could not read the selected banner", "/sale-banner")
		return
	}
	if file == nil {
		h.invalid(w, r, "Please select a sale banner first", "/sale-banner")
		return
	}

	form := backend.NewMultipart()
	attach(form, "file", file)

	if _, err := h.api.UploadSaleBanner(r.Context(), form); err != nil {
		h.fail(w, r, err, "/sale-banner")
		return
	}
	h.done(w, r, "Sale banner uploaded successfully!", "/sale-banner")
}

func (h *SiteHandler) DeleteSaleBanner(w http.ResponseWriter, r *http.Request) {
	if err := h.api.DeleteSaleBanner(r.Context()); err != nil {
		h.fail(w, r, err, "/sale-banner")
		return
	}
	h.done(w, r, "Sale banner deleted", "/sale-banner")
}

func (h *SiteHandler) Contact(w http.ResponseWriter, r *http.Request) {
	settings, err := h.api.ContactSettings(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to load contact details"); handled {
			return
		}
		settings = &domain.ContactSettings{}
	}
	h.render(w, r, "contact.html", "Contact details", settings, toasts(notice)...)
}

func (h *SiteHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "Invalid form submission", "/contact")
		return
	}

	settings := domain.ContactSettings{
		Email:   strings.TrimSpace(r.PostForm.Get("email")),
		Phone:   strings.TrimSpace(r.PostForm.Get("phone")),
		Address: strings.TrimSpace(r.PostForm.Get("address")),
	}
	if err := middleware.ValidateStruct(settings); err != nil {
		h.invalid(w, r, middleware.FirstValidationMessage(err), "/contact")
		return
	}

	if err := h.api.UpdateContactSettings(r.Context(), settings); err != nil {
		h.fail(w, r, err, "/contact")
		return
	}
	h.done(w, r, "Contact details updated!", "/contact")
}
