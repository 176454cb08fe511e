package transport

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIn_StoresTokenAndForwardsIt(t *testing.T) {
	app := newTestApp(t)

	app.signIn(t)

	res := app.get(t, "/products")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, "Login successful!")
	assert.Contains(t, res.Body, "Desk Lamp")
	assert.Equal(t, "Bearer "+adminToken, app.backend.lastAuth())

	// The toast is shown once
	res = app.get(t, "/products")
	assert.NotContains(t, res.Body, "Login successful!")
}

func TestSignIn_RejectedCredentials(t *testing.T) {
	app := newTestApp(t)

	res := app.post(t, "/auth/signin", url.Values{
		"email":    {"admin@example.com"},
		"password": {"wrong"},
	})
	require.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/auth/signin", res.Location)

	res = app.follow(t, res)
	assert.Contains(t, res.Body, "Invalid email or password")

	res = app.get(t, "/products")
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/auth/signin", res.Location)
}

func TestSignIn_MissingFieldsNeverReachBackend(t *testing.T) {
	app := newTestApp(t)

	res := app.post(t, "/auth/signin", url.Values{"email": {"admin@example.com"}})
	res = app.follow(t, res)

	assert.Contains(t, res.Body, "Please enter both email and password")
	assert.Zero(t, app.backend.callCount())
}

func TestSignInPage_RedirectsWhenSignedIn(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	res := app.get(t, "/auth/signin")
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/products", res.Location)
}

func TestSignOut(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	res := app.post(t, "/auth/signout", nil)
	res = app.follow(t, res)
	assert.Contains(t, res.Body, "You have been signed out")

	res = app.get(t, "/products")
	assert.Equal(t, http.StatusSeeOther, res.Status)
}

func TestRegister_PasswordsMustMatch(t *testing.T) {
	app := newTestApp(t)

	res := app.post(t, "/auth/register", url.Values{
		"name":            {"Grace"},
		"email":           {"grace@example.com"},
		"password":        {"secret1"},
		"confirmPassword": {"secret2"},
	})
	require.Equal(t, "/auth/register", res.Location)

	res = app.follow(t, res)
	assert.Contains(t, res.Body, "Passwords do not match")
	assert.Zero(t, app.backend.callCount())
}

func TestExpiredToken_SignsOut(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)
	app.backend.setExpired(true)

	res := app.get(t, "/products")
	require.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/auth/signin", res.Location)

	res = app.follow(t, res)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Contains(t, res.Body, SessionExpiredMessage)

	// The token is gone, so nothing else reaches the backend
	calls := app.backend.callCount()
	res = app.get(t, "/orders")
	assert.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/auth/signin", res.Location)
	assert.Equal(t, calls, app.backend.callCount())
}

func TestProtectedPage_RequiresSession(t *testing.T) {
	app := newTestApp(t)

	res := app.get(t, "/orders")
	require.Equal(t, http.StatusSeeOther, res.Status)

	res = app.follow(t, res)
	assert.Contains(t, res.Body, "Please sign in to continue.")
}
