package transport

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadLogo_NothingToUpdate(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	res := app.postMultipart(t, "/logo", url.Values{"description": {"  "}})
	require.Equal(t, http.StatusSeeOther, res.Status)
	assert.Equal(t, "/logo", res.Location)
	assert.False(t, app.backend.called("POST /api/logo/upload"))

	res = app.follow(t, res)
	assert.Contains(t, res.Body, "No update to perform.")
}

func TestUploadLogo_DescriptionOnly(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	res := app.postMultipart(t, "/logo", url.Values{"description": {"Lumen wordmark"}})
	require.Equal(t, http.StatusSeeOther, res.Status)

	sub, ok := app.backend.lastForm()
	require.True(t, ok)
	assert.Equal(t, "Lumen wordmark", sub.Values.Get("description"))
	assert.Empty(t, sub.Files["file"])

	res = app.follow(t, res)
	assert.Contains(t, res.Body, "Logo updated!")
}

func TestUploadLogo_WithFile(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	res := app.postMultipart(t, "/logo", nil,
		testFile{Field: "file", Filename: "logo.png", Data: []byte("logo-bytes")},
	)
	require.Equal(t, http.StatusSeeOther, res.Status)

	sub, ok := app.backend.lastForm()
	require.True(t, ok)
	assert.Equal(t, []string{"logo.png"}, sub.Files["file"])
}

func TestCreateSlider_RequiresTitleThenSubtitle(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)

	res := app.follow(t, app.postMultipart(t, "/sliders", url.Values{"subtitle": {"Autumn sale"}}))
	assert.Contains(t, res.Body, "Please enter a title")

	res = app.follow(t, app.postMultipart(t, "/sliders", url.Values{"title": {"Autumn"}}))
	assert.Contains(t, res.Body, "Please enter a subtitle")

	assert.False(t, app.backend.called("POST /api/sliders"))
}

func TestMalformedIDs_NotFound(t *testing.T) {
	app := newTestApp(t)
	app.signIn(t)
	calls := app.backend.callCount()

	for _, path := range []string{
		"/orders/123/delete",
		"/customers/abc/delete",
		"/blogs/xyz/delete",
		"/categories/zzzzzzzzzzzzzzzzzzzzzzzz/delete",
	} {
		res := app.post(t, path, nil)
		assert.Equal(t, http.StatusNotFound, res.Status, path)
	}
	assert.Equal(t, calls, app.backend.callCount())
}
