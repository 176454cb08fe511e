package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"
	"storefront-admin/internal/logger"
	"storefront-admin/internal/middleware"
	"storefront-admin/internal/service"
	"storefront-admin/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportHandler serves the dashboard summary and the monthly sales report
type ReportHandler struct {
	*Pages
	reports *service.ReportService
}

func NewReportHandler(pages *Pages, reports *service.ReportService) *ReportHandler {
	return &ReportHandler{Pages: pages, reports: reports}
}

func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports", h.Overview)
	r.Get("/reports/monthly", h.Monthly)
}

// RegisterAPIRoutes registers the JSON endpoints used by the chart.
func (h *ReportHandler) RegisterAPIRoutes(r chi.Router) {
	r.Get("/reports/overview", h.OverviewJSON)
}

func (h *ReportHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.reports.Overview(r.Context())
	var notices []session.Flash
	if err != nil {
		notice, handled := h.loadError(w, r, err, "Failed to load report")
		if handled {
			return
		}
		notices = append(notices, notice)
		overview = &service.Overview{}
	}
	for _, warning := range overview.Warnings {
		notices = append(notices, session.Flash{Type: session.FlashInfo, Message: warning})
	}
	h.render(w, r, "reports.html", "Reports", overview, notices...)
}

func (h *ReportHandler) OverviewJSON(w http.ResponseWriter, r *http.Request) {
	overview, err := h.reports.Overview(r.Context())
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			middleware.RespondWithError(w, http.StatusUnauthorized, SessionExpiredMessage)
			return
		}
		logger.ForRequest(r.Context(), h.logger).Warn("Failed to load report", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to load report")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, overview)
}

type monthlyView struct {
	Report *domain.MonthlyReport
	Month  int
	Year   int
	Months []string
}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Monthly shows orders for ?month= (0-11) and ?year=, defaulting to the
// current month.
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	view := monthlyView{Month: int(now.Month()) - 1, Year: now.Year(), Months: monthNames}

	query := r.URL.Query()
	var notices []session.Flash
	if raw := query.Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			month = -1
		}
		view.Month = month
	}
	if raw := query.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			year = 0
		}
		view.Year = year
	}

	report, err := h.reports.Monthly(r.Context(), view.Month, view.Year)
	switch {
	case errors.Is(err, service.ErrInvalidPeriod):
		notices = append(notices, session.Flash{Type: session.FlashError, Message: "Please choose a valid month and year"})
	case err != nil:
		notice, handled := h.loadError(w, r, err, "Failed to load monthly report")
		if handled {
			return
		}
		notices = append(notices, notice)
	default:
		view.Report = report
	}

	h.render(w, r, "monthly_report.html", "Monthly report", view, notices...)
}
