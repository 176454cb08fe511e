package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"storefront-admin/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryRecorder struct {
	mu      sync.Mutex
	entries []*domain.ActivityLog
	err     error
}

func (m *memoryRecorder) Create(ctx context.Context, entry *domain.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return m.err
}

func TestActivityAction(t *testing.T) {
	cases := []struct {
		method, path   string
		resource, verb string
	}{
		{http.MethodPost, "/products/new", "product", "created"},
		{http.MethodPost, "/products/abc/edit", "product", "updated"},
		{http.MethodPost, "/products/abc/delete", "product", "deleted"},
		{http.MethodPost, "/products/bulk-delete", "product", "deleted"},
		{http.MethodPost, "/categories", "category", "created"},
		{http.MethodPost, "/categories/abc", "category", "updated"},
		{http.MethodPost, "/orders/abc/status", "order", "updated"},
		{http.MethodPost, "/logo", "logo", "updated"},
		{http.MethodPost, "/sale-banner/delete", "sale_banner", "deleted"},
		{http.MethodPost, "/profile/password", "profile", "updated"},
	}
	for _, tc := range cases {
		resource, verb, ok := ActivityAction(tc.method, tc.path)
		require.True(t, ok, tc.path)
		assert.Equal(t, tc.resource, resource, tc.path)
		assert.Equal(t, tc.verb, verb, tc.path)
	}

	for _, skipped := range [][2]string{
		{http.MethodGet, "/products/abc/edit"},
		{http.MethodPost, "/auth/signin"},
		{http.MethodPost, "/staging/abc"},
	} {
		_, _, ok := ActivityAction(skipped[0], skipped[1])
		assert.False(t, ok, skipped[1])
	}
}

func activityRouter(recorder ActivityRecorder, handler http.HandlerFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(ActivityLog(recorder, zap.NewNop()))
	r.Post("/products/{id}/delete", handler)
	r.Get("/products", okHandler)
	return r
}

func TestActivityLog_RecordsSuccess(t *testing.T) {
	recorder := &memoryRecorder{}
	router := activityRouter(recorder, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/products", http.StatusSeeOther)
	})

	req := httptest.NewRequest(http.MethodPost, "/products/64b7f0c2a1b2c3d4e5f60718/delete", nil)
	req.RemoteAddr = "203.0.113.9:4431"
	req.Header.Set("User-Agent", "test-agent")
	req = req.WithContext(context.WithValue(req.Context(), AdminKey, Admin{ID: "a1", Email: "admin@example.com"}))
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, "deleted_product", entry.Action)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", entry.ResourceID)
	assert.Equal(t, domain.ActivitySuccess, entry.Status)
	assert.Equal(t, "a1", entry.AdminID)
	assert.Equal(t, "admin@example.com", entry.AdminEmail)
	assert.Equal(t, "203.0.113.9", entry.IPAddress)
	assert.Equal(t, "test-agent", entry.UserAgent)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestActivityLog_MarkedFailure(t *testing.T) {
	recorder := &memoryRecorder{}
	router := activityRouter(recorder, func(w http.ResponseWriter, r *http.Request) {
		MarkActivityFailed(r.Context(), "Product not found")
		http.Redirect(w, r, "/products", http.StatusSeeOther)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/products/x/delete", nil))

	require.Len(t, recorder.entries, 1)
	assert.Equal(t, domain.ActivityFailed, recorder.entries[0].Status)
	assert.Equal(t, "Product not found", recorder.entries[0].ErrorMessage)
}

func TestActivityLog_SkipsReadsAndSkippedRequests(t *testing.T) {
	recorder := &memoryRecorder{}
	router := activityRouter(recorder, func(w http.ResponseWriter, r *http.Request) {
		SkipActivity(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/products/x/delete", nil))

	assert.Empty(t, recorder.entries)
}

func TestActivityLog_RecorderErrorDoesNotFailRequest(t *testing.T) {
	recorder := &memoryRecorder{err: errors.New("db down")}
	router := activityRouter(recorder, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/products", http.StatusSeeOther)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/products/x/delete", nil))

	assert.Equal(t, http.StatusSeeOther, w.Code)
}
