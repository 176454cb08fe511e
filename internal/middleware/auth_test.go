package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSessions() *session.Manager {
	return session.NewManager([]byte(strings.Repeat("k", 32)), session.Options{MaxAge: time.Hour})
}

// signedIn returns a request carrying a session cookie that holds token.
func signedIn(t *testing.T, sessions *session.Manager, method, path, token string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, sessions.SetToken(rec, httptest.NewRequest(http.MethodGet, "/", nil), token))

	req := httptest.NewRequest(method, path, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestProperty_PagesRedirectWithoutSession(t *testing.T) {
	properties := gopter.NewProperties(nil)
	sessions := newSessions()

	properties.Property("signed-out requests are sent to the sign-in page", prop.ForAll(
		func(section string, method string) bool {
			reached := false
			handler := RequireSession(sessions, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
			}))

			req := httptest.NewRequest(method, "/"+section, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return !reached && w.Code == http.StatusSeeOther && w.Header().Get("Location") == SignInPath
		},
		gen.OneConstOf("products", "orders", "customers", "reports", "logo"),
		gen.OneConstOf(http.MethodGet, http.MethodPost),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRequireSession_APIAnswers401(t *testing.T) {
	handler := RequireSession(newSessions(), zap.NewNop())(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/reports/overview", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireSession_ExposesTokenAndAdmin(t *testing.T) {
	sessions := newSessions()
	token := signToken(t, jwt.MapClaims{"id": "64b7f0c2a1b2c3d4e5f60001", "email": "admin@example.com"})

	var gotToken string
	var gotAdmin Admin
	handler := RequireSession(sessions, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = backend.Token(r.Context())
		gotAdmin, _ = AdminFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, signedIn(t, sessions, http.MethodGet, "/products", token))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, token, gotToken)
	assert.Equal(t, Admin{ID: "64b7f0c2a1b2c3d4e5f60001", Email: "admin@example.com"}, gotAdmin)
}

func TestRequireSession_OpaqueTokenStillPasses(t *testing.T) {
	sessions := newSessions()

	var gotAdmin Admin
	handler := RequireSession(sessions, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAdmin, _ = AdminFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, signedIn(t, sessions, http.MethodGet, "/orders", "not-a-jwt"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Admin{}, gotAdmin)
}

func TestAdminFromToken_ClaimFallbacks(t *testing.T) {
	assert.Equal(t, "u1", adminFromToken(signToken(t, jwt.MapClaims{"_id": "u1"})).ID)
	assert.Equal(t, "u2", adminFromToken(signToken(t, jwt.MapClaims{"sub": "u2"})).ID)
	assert.Equal(t, "u3", adminFromToken(signToken(t, jwt.MapClaims{"id": "u3", "sub": "other"})).ID)
}

func TestMenuSection(t *testing.T) {
	assert.Equal(t, "products", MenuSection("/products/64b7/edit"))
	assert.Equal(t, "sale-banner", MenuSection("/sale-banner"))
	assert.Equal(t, "", MenuSection("/staging/abc"))
	assert.Equal(t, "", MenuSection("/"))
}

func TestRememberMenu(t *testing.T) {
	sessions := newSessions()
	handler := RememberMenu(sessions, zap.NewNop())(http.HandlerFunc(okHandler))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/42", nil))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		next.AddCookie(c)
	}
	assert.Equal(t, "orders", sessions.Menu(next))
}
