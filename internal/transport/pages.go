package transport

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"
	"storefront-admin/internal/logger"
	"storefront-admin/internal/middleware"
	"storefront-admin/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

const SessionExpiredMessage = "Session expired. Please log in again."

// PageData is what every page template receives
type PageData struct {
	Title     string
	Brand     string
	SignedIn  bool
	Menu      string
	Flashes   []session.Flash
	CSRFField template.HTML
	Admin     middleware.Admin
	Query     string
	Data      interface{}
}

// Pages renders templates and turns backend outcomes into toasts and redirects.
// Every handler embeds it.
type Pages struct {
	views    *TemplateCache
	sessions *session.Manager
	brand    string
	logger   *zap.Logger
}

func NewPages(views *TemplateCache, sessions *session.Manager, brand string, logger *zap.Logger) *Pages {
	return &Pages{views: views, sessions: sessions, brand: brand, logger: logger}
}

// render writes a page with status 200
func (p *Pages) render(w http.ResponseWriter, r *http.Request, name, title string, data interface{}, now ...session.Flash) {
	p.renderStatus(w, r, http.StatusOK, name, title, data, now...)
}

// renderStatus writes a page. now holds toasts for this response only,
// shown after the ones carried over in the session.
func (p *Pages) renderStatus(w http.ResponseWriter, r *http.Request, status int, name, title string, data interface{}, now ...session.Flash) {
	tmpl := p.views.Get(name)
	if tmpl == nil {
		p.logger.Error("Template not found", zap.String("template", name))
		http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	menu := middleware.MenuSection(r.URL.Path)
	if menu == "" {
		menu = p.sessions.Menu(r)
	}
	admin, _ := middleware.AdminFromContext(r.Context())

	page := PageData{
		Title:     title,
		Brand:     p.brand,
		SignedIn:  p.sessions.Token(r) != "",
		Menu:      menu,
		Flashes:   append(p.sessions.Flashes(w, r), now...),
		CSRFField: csrf.TemplateField(r),
		Admin:     admin,
		Query:     r.URL.Query().Get("q"),
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		logger.ForRequest(r.Context(), p.logger).Error("Failed to render template",
			zap.String("template", name),
			zap.Error(err),
		)
		http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (p *Pages) flash(w http.ResponseWriter, r *http.Request, flashType, message string) {
	if err := p.sessions.AddFlash(w, r, flashType, message); err != nil {
		p.logger.Error("Failed to save flash", zap.Error(err))
	}
}

// done reports a successful mutation and sends the admin back to path,
// which re-fetches the list.
func (p *Pages) done(w http.ResponseWriter, r *http.Request, message, path string) {
	p.flash(w, r, session.FlashSuccess, message)
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// invalid rejects a form before anything reaches the backend.
func (p *Pages) invalid(w http.ResponseWriter, r *http.Request, message, path string) {
	middleware.SkipActivity(r.Context())
	p.flash(w, r, session.FlashError, message)
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// fail reports a failed mutation with the backend's message.
func (p *Pages) fail(w http.ResponseWriter, r *http.Request, err error, path string) {
	if p.expired(w, r, err) {
		return
	}

	message := backend.Message(err)
	logger.ForRequest(r.Context(), p.logger).Warn("Backend call failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	middleware.MarkActivityFailed(r.Context(), message)
	p.flash(w, r, session.FlashError, message)
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// expired signs the admin out when the backend rejected the token.
func (p *Pages) expired(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}

	middleware.MarkActivityFailed(r.Context(), SessionExpiredMessage)
	if err := p.sessions.ClearToken(w, r); err != nil {
		p.logger.Error("Failed to clear session", zap.Error(err))
	}
	p.flash(w, r, session.FlashError, SessionExpiredMessage)
	http.Redirect(w, r, middleware.SignInPath, http.StatusSeeOther)
	return true
}

// loadError turns a failed page load into a toast. handled is true when the
// admin was signed out and nothing else should be written.
func (p *Pages) loadError(w http.ResponseWriter, r *http.Request, err error, message string) (flash session.Flash, handled bool) {
	if p.expired(w, r, err) {
		return session.Flash{}, true
	}
	logger.ForRequest(r.Context(), p.logger).Warn(message, zap.Error(err))
	return session.Flash{Type: session.FlashError, Message: message}, false
}

// objectID reads the {id} route parameter. Malformed ids get a 404 page
// without a backend round trip.
func (p *Pages) objectID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !domain.ValidID(id) {
		middleware.SkipActivity(r.Context())
		p.renderStatus(w, r, http.StatusNotFound, "not_found.html", "Not found", nil)
		return "", false
	}
	return id, true
}

// toasts collects the non-empty flashes for a render call.
func toasts(flashes ...session.Flash) []session.Flash {
	var out []session.Flash
	for _, f := range flashes {
		if f.Message != "" {
			out = append(out, f)
		}
	}
	return out
}

// returnTo is the local path posted in "next", or fallback. Absolute and
// protocol-relative URLs are ignored.
func returnTo(r *http.Request, fallback string) string {
	next := r.PostFormValue("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
