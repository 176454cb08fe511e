package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"storefront-admin/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityRecorder persists activity log entries
type ActivityRecorder interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
}

type activityState struct {
	skip    bool
	failed  bool
	message string
}

// Resource names recorded for each top-level section
var resourceTypes = map[string]string{
	"products":    "product",
	"categories":  "category",
	"orders":      "order",
	"customers":   "customer",
	"inquiries":   "inquiry",
	"blogs":       "blog",
	"sliders":     "slider",
	"logo":        "logo",
	"sale-banner": "sale_banner",
	"contact":     "contact_settings",
	"profile":     "profile",
}

// Sections holding a single document, where a POST to the root updates it
var singletons = map[string]bool{
	"logo":        true,
	"sale-banner": true,
	"contact":     true,
	"profile":     true,
}

// MarkActivityFailed records the current request as failed even though it
// answered with a redirect.
func MarkActivityFailed(ctx context.Context, message string) {
	if state, ok := ctx.Value(activityKey).(*activityState); ok {
		state.failed = true
		state.message = message
	}
}

// SkipActivity excludes the current request from the activity log.
// Used by form round trips that do not reach the backend.
func SkipActivity(ctx context.Context) {
	if state, ok := ctx.Value(activityKey).(*activityState); ok {
		state.skip = true
	}
}

// ActivityAction maps a mutating request onto a resource type and verb,
// e.g. POST /products/{id}/delete -> ("product", "deleted").
func ActivityAction(method, path string) (resourceType, verb string, ok bool) {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return "", "", false
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	resourceType, ok = resourceTypes[segments[0]]
	if !ok {
		return "", "", false
	}

	last := segments[len(segments)-1]
	switch {
	case method == http.MethodDelete, last == "delete", last == "bulk-delete":
		verb = "deleted"
	case last == "new", len(segments) == 1 && !singletons[segments[0]]:
		verb = "created"
	default:
		verb = "updated"
	}
	return resourceType, verb, true
}

// ActivityLog records every mutating request made through the dashboard
// once it has completed. Recording failures are logged only.
func ActivityLog(recorder ActivityRecorder, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			resourceType, verb, ok := ActivityAction(r.Method, r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			state := &activityState{}
			r = r.WithContext(context.WithValue(r.Context(), activityKey, state))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			if state.skip {
				return
			}

			entry := &domain.ActivityLog{
				ID:           uuid.New(),
				Action:       verb + "_" + resourceType,
				ResourceType: resourceType,
				ResourceID:   chi.URLParam(r, "id"),
				Status:       domain.ActivitySuccess,
				IPAddress:    clientIP(r),
				UserAgent:    r.UserAgent(),
				CreatedAt:    time.Now().UTC(),
			}
			if admin, ok := AdminFromContext(r.Context()); ok {
				entry.AdminID = admin.ID
				entry.AdminEmail = admin.Email
			}
			if state.failed || ww.Status() >= http.StatusBadRequest {
				entry.Status = domain.ActivityFailed
				entry.ErrorMessage = state.message
				if entry.ErrorMessage == "" {
					entry.ErrorMessage = http.StatusText(ww.Status())
				}
			}

			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
			defer cancel()

			if err := recorder.Create(ctx, entry); err != nil {
				logger.Error("Failed to record activity",
					zap.Error(err),
					zap.String("action", entry.Action),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}
		})
	}
}
