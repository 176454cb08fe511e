package transport

import (
	"net/http"
	"strconv"

	"storefront-admin/internal/domain"
	"storefront-admin/internal/logger"
	"storefront-admin/internal/repository"
	"storefront-admin/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ActivityHandler shows the audit trail of admin actions
type ActivityHandler struct {
	*Pages
	logs repository.ActivityLogRepository
}

func NewActivityHandler(pages *Pages, logs repository.ActivityLogRepository) *ActivityHandler {
	return &ActivityHandler{Pages: pages, logs: logs}
}

func (h *ActivityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/activity", h.List)
}

type activityView struct {
	Entries      []*domain.ActivityLog
	ResourceType string
	ResourceID   string
	Limit        int
}

// List shows the newest entries. ?type=&id= narrows to one resource.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view := activityView{
		ResourceType: query.Get("type"),
		ResourceID:   query.Get("id"),
		Limit:        repository.DefaultActivityLimit,
	}
	if n, err := strconv.Atoi(query.Get("limit")); err == nil && n > 0 {
		view.Limit = n
	}

	var err error
	if view.ResourceType != "" {
		view.Entries, err = h.logs.ListByResource(r.Context(), view.ResourceType, view.ResourceID, view.Limit)
	} else {
		view.Entries, err = h.logs.ListRecent(r.Context(), view.Limit)
	}

	var notices []session.Flash
	if err != nil {
		logger.ForRequest(r.Context(), h.logger).Error("Failed to load activity log", zap.Error(err))
		notices = append(notices, session.Flash{Type: session.FlashError, Message: "Failed to load activity log"})
	}

	h.render(w, r, "activity.html", "Activity", view, notices...)
}
