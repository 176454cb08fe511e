package transport

import (
	"errors"
	"net/http"
	"strings"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/middleware"
	"storefront-admin/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthHandler handles sign-in, registration and sign-out
type AuthHandler struct {
	*Pages
	api *backend.Client
}

func NewAuthHandler(pages *Pages, api *backend.Client) *AuthHandler {
	return &AuthHandler{Pages: pages, api: api}
}

// RegisterRoutes registers the public auth routes. limiter guards the
// credential posts.
func (h *AuthHandler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Get("/signin", h.SignInPage)
		r.With(limiter).Post("/signin", h.SignIn)
		r.Get("/register", h.RegisterPage)
		r.With(limiter).Post("/register", h.Register)
		r.Post("/signout", h.SignOut)
	})
}

func (h *AuthHandler) SignInPage(w http.ResponseWriter, r *http.Request) {
	if h.sessions.Token(r) != "" {
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}
	h.render(w, r, "signin.html", "Sign in", nil)
}

// SignIn exchanges the posted credentials for a token and stores it in the session
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "Invalid form submission", middleware.SignInPath)
		return
	}

	creds := backend.Credentials{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	if creds.Email == "" || creds.Password == "" {
		h.invalid(w, r, "Please enter both email and password", middleware.SignInPath)
		return
	}
	if err := middleware.ValidateStruct(creds); err != nil {
		h.invalid(w, r, middleware.FirstValidationMessage(err), middleware.SignInPath)
		return
	}

	token, err := h.api.Login(r.Context(), creds)
	if err != nil {
		h.logger.Info("Sign-in rejected", zap.String("email", creds.Email), zap.Error(err))
		message := backend.Message(err)
		if errors.Is(err, backend.ErrUnauthorized) {
			message = "Invalid email or password"
		}
		h.invalid(w, r, message, middleware.SignInPath)
		return
	}

	if err := h.sessions.SetToken(w, r, token); err != nil {
		h.logger.Error("Failed to store session", zap.Error(err))
		h.invalid(w, r, "Could not start your session. Please try again.", middleware.SignInPath)
		return
	}

	h.logger.Info("Admin signed in", zap.String("email", creds.Email))
	h.done(w, r, "Login successful!", "/products")
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "register.html", "Register", nil)
}

// Register creates a new admin account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "Invalid form submission", "/auth/register")
		return
	}

	reg := backend.Registration{
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	confirm := r.PostForm.Get("confirmPassword")

	if reg.Name == "" || reg.Email == "" || reg.Password == "" || confirm == "" {
		h.invalid(w, r, "Please fill in all fields", "/auth/register")
		return
	}
	if reg.Password != confirm {
		h.invalid(w, r, "Passwords do not match", "/auth/register")
		return
	}
	if err := middleware.ValidateStruct(reg); err != nil {
		h.invalid(w, r, middleware.FirstValidationMessage(err), "/auth/register")
		return
	}

	if err := h.api.Register(r.Context(), reg); err != nil {
		h.invalid(w, r, backend.Message(err), "/auth/register")
		return
	}

	h.done(w, r, "Admin registered successfully!", middleware.SignInPath)
}

// SignOut forgets the token. The backend keeps no session to revoke.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.ClearToken(w, r); err != nil {
		h.logger.Error("Failed to clear session", zap.Error(err))
	}
	h.flash(w, r, session.FlashInfo, "You have been signed out")
	http.Redirect(w, r, middleware.SignInPath, http.StatusSeeOther)
}

// TooManyAttempts answers sign-in and register posts blocked by the rate limiter.
func (h *AuthHandler) TooManyAttempts(w http.ResponseWriter, r *http.Request) {
	h.flash(w, r, session.FlashError, "Too many attempts. Please wait a minute and try again.")
	http.Redirect(w, r, r.URL.Path, http.StatusSeeOther)
}
