// Package session keeps the admin's bearer token, flash messages and the
// remembered sidebar section in a signed cookie.
package session

import (
	"encoding/gob"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	CookieName = "admin-session"

	tokenKey = "adminToken"
	menuKey  = "menu"
)

// Flash types understood by the layout template.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot notification shown on the next rendered page
type Flash struct {
	Type    string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// Options configures the session cookie.
type Options struct {
	Secure bool
	Domain string
	MaxAge time.Duration
}

// Manager reads and writes the admin session
type Manager struct {
	store *sessions.CookieStore
}

func NewManager(key []byte, opts Options) *Manager {
	store := sessions.NewCookieStore(key)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	store.Options.Secure = opts.Secure
	if opts.Domain != "" {
		store.Options.Domain = opts.Domain
	}
	if opts.MaxAge > 0 {
		store.MaxAge(int(opts.MaxAge.Seconds()))
	}
	return &Manager{store: store}
}

func (m *Manager) get(r *http.Request) *sessions.Session {
	// A tampered or stale cookie yields a fresh session alongside the error.
	s, _ := m.store.Get(r, CookieName)
	return s
}

// Token returns the stored bearer token, or "" when signed out.
func (m *Manager) Token(r *http.Request) string {
	token, _ := m.get(r).Values[tokenKey].(string)
	return token
}

// SetToken stores the token returned by the backend on sign-in.
func (m *Manager) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	s := m.get(r)
	s.Values[tokenKey] = token
	return s.Save(r, w)
}

// ClearToken signs the admin out but keeps pending flashes.
func (m *Manager) ClearToken(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	delete(s.Values, tokenKey)
	delete(s.Values, menuKey)
	return s.Save(r, w)
}

// AddFlash queues a notification for the next page.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, flashType, message string) error {
	s := m.get(r)
	s.AddFlash(Flash{Type: flashType, Message: message})
	return s.Save(r, w)
}

// Flashes returns and consumes the queued notifications.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	s := m.get(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}

	flashes := make([]Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	s.Save(r, w)
	return flashes
}

// Menu returns the remembered sidebar section.
func (m *Manager) Menu(r *http.Request) string {
	menu, _ := m.get(r).Values[menuKey].(string)
	return menu
}

// SetMenu remembers the sidebar section the admin last opened.
func (m *Manager) SetMenu(w http.ResponseWriter, r *http.Request, menu string) error {
	s := m.get(r)
	if current, _ := s.Values[menuKey].(string); current == menu {
		return nil
	}
	s.Values[menuKey] = menu
	return s.Save(r, w)
}
