package middleware

import (
	"context"
	"net/http"
	"strings"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	AdminKey    contextKey = "admin"
	activityKey contextKey = "activity"
)

// SignInPath is where signed-out admins are sent
const SignInPath = "/auth/signin"

// Admin identifies the signed-in admin for logging and the activity trail
type Admin struct {
	ID    string
	Email string
}

// RequireSession sends signed-out visitors to the sign-in page and makes the
// stored bearer token available to the backend client.
// The token is not verified or refreshed here; the backend rejects stale
// tokens with 401 and handlers sign the admin out when that happens.
func RequireSession(sessions *session.Manager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessions.Token(r)
			if token == "" {
				logger.Debug("No admin session", zap.String("path", r.URL.Path))

				if !wantsHTML(r) && strings.HasPrefix(r.URL.Path, "/api/") {
					RespondWithError(w, http.StatusUnauthorized, "not signed in")
					return
				}

				if err := sessions.AddFlash(w, r, session.FlashInfo, "Please sign in to continue."); err != nil {
					logger.Error("Failed to save flash", zap.Error(err))
				}
				http.Redirect(w, r, SignInPath, http.StatusSeeOther)
				return
			}

			ctx := backend.WithToken(r.Context(), token)
			ctx = context.WithValue(ctx, AdminKey, adminFromToken(token))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// adminFromToken reads the identity claims without verifying the signature.
// The dashboard does not hold the backend's signing key.
func adminFromToken(token string) Admin {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Admin{}
	}

	var admin Admin
	for _, key := range []string{"id", "_id", "sub", "adminId", "userId"} {
		if v, ok := claims[key].(string); ok && v != "" {
			admin.ID = v
			break
		}
	}
	admin.Email, _ = claims["email"].(string)
	return admin
}

// AdminFromContext extracts the signed-in admin from request context
func AdminFromContext(ctx context.Context) (Admin, bool) {
	admin, ok := ctx.Value(AdminKey).(Admin)
	return admin, ok
}

// Sections of the sidebar that are remembered between visits
var menuSections = map[string]bool{
	"products":    true,
	"categories":  true,
	"orders":      true,
	"customers":   true,
	"inquiries":   true,
	"blogs":       true,
	"sliders":     true,
	"logo":        true,
	"sale-banner": true,
	"contact":     true,
	"profile":     true,
	"reports":     true,
	"activity":    true,
}

// MenuSection returns the sidebar section a path belongs to, or "".
func MenuSection(path string) string {
	section := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
	if menuSections[section] {
		return section
	}
	return ""
}

// RememberMenu stores the sidebar section of every page the admin opens.
func RememberMenu(sessions *session.Manager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				if section := MenuSection(r.URL.Path); section != "" {
					if err := sessions.SetMenu(w, r, section); err != nil {
						logger.Warn("Failed to remember menu", zap.Error(err))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
