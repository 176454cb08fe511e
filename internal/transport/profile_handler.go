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

// ProfileHandler lets the signed-in admin edit their own account
type ProfileHandler struct {
	*Pages
	api *backend.Client
}

func NewProfileHandler(pages *Pages, api *backend.Client) *ProfileHandler {
	return &ProfileHandler{Pages: pages, api: api}
}

func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Get("/profile", h.Profile)
	r.Post("/profile", h.UpdateProfile)
	r.Post("/profile/password", h.ChangePassword)
}

// Profile shows the admin returned by admin/me. A rejected token signs the
// admin out.
func (h *ProfileHandler) Profile(w http.ResponseWriter, r *http.Request) {
	admin, err := h.api.Me(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to load profile"); handled {
			return
		}
		admin = &domain.Admin{}
	}
	h.render(w, r, "profile.html", "Profile", admin, toasts(notice)...)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "Invalid form submission", "/profile")
		return
	}

	update := backend.ProfileUpdate{
		Name:    strings.TrimSpace(r.PostForm.Get("name")),
		Email:   strings.TrimSpace(r.PostForm.Get("email")),
		Phone:   strings.TrimSpace(r.PostForm.Get("phone")),
		Address: strings.TrimSpace(r.PostForm.Get("address")),
	}
	if err := middleware.ValidateStruct(update); err != nil {
		h.invalid(w, r, middleware.FirstValidationMessage(err), "/profile")
		return
	}

	id, ok := h.adminID(w, r)
	if !ok {
		return
	}
	if _, err := h.api.UpdateProfile(r.Context(), id, update); err != nil {
		h.fail(w, r, err, "/profile")
		return
	}
	h.done(w, r, "Profile updated successfully!", "/profile")
}

func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "Invalid form submission", "/profile")
		return
	}

	change := backend.PasswordChange{
		CurrentPassword: r.PostForm.Get("currentPassword"),
		NewPassword:     r.PostForm.Get("newPassword"),
	}
	if change.CurrentPassword == "" || change.NewPassword == "" {
		h.invalid(w, r, "Please fill both password fields", "/profile")
		return
	}
	if err := middleware.ValidateStruct(change); err != nil {
		h.invalid(w, r, "Password must be at least 6 characters", "/profile")
		return
	}

	id, ok := h.adminID(w, r)
	if !ok {
		return
	}
	if err := h.api.ChangePassword(r.Context(), id, change); err != nil {
		h.fail(w, r, err, "/profile")
		return
	}
	h.done(w, r, "Password updated successfully!", "/profile")
}

// adminID prefers the id carried by the token and asks admin/me otherwise.
func (h *ProfileHandler) adminID(w http.ResponseWriter, r *http.Request) (string, bool) {
	if admin, ok := middleware.AdminFromContext(r.Context()); ok && admin.ID != "" {
		return admin.ID, true
	}

	me, err := h.api.Me(r.Context())
	if err != nil {
		h.fail(w, r, err, "/profile")
		return "", false
	}
	return me.ID, true
}
