package transport

import (
	"net/http"
	"strconv"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"
	"storefront-admin/internal/invoice"
	"storefront-admin/internal/logger"
	"storefront-admin/internal/middleware"
	"storefront-admin/internal/service"
	"storefront-admin/internal/session"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OrderHandler handles order listing, fulfilment status and invoices
type OrderHandler struct {
	*Pages
	api *backend.Client
}

func NewOrderHandler(pages *Pages, api *backend.Client) *OrderHandler {
	return &OrderHandler{Pages: pages, api: api}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Detail)
		r.Get("/{id}/invoice.pdf", h.Invoice)
		r.Post("/{id}/status", h.UpdateStatus)
		r.Post("/{id}/delete", h.Delete)
	})
}

type orderListView struct {
	Orders []domain.Order
	Total  int
}

// List shows every order, filtered by customer name or email with ?q=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.api.ListOrders(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to load orders"); handled {
			return
		}
	}

	matched := service.Filter(orders, r.URL.Query().Get("q"),
		func(o domain.Order) string { return o.CustomerName },
		func(o domain.Order) string { return o.Email },
	)
	h.render(w, r, "orders.html", "Orders", orderListView{Orders: matched, Total: len(orders)}, toasts(notice)...)
}

func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, "order.html", "Order "+order.ID, order)
}

// Invoice downloads the order as a PDF
func (h *OrderHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	order, ok := h.load(w, r)
	if !ok {
		return
	}

	pdf, err := invoice.Generate(order, h.brand)
	if err != nil {
		logger.ForRequest(r.Context(), h.logger).Error("Failed to generate invoice",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
		h.flash(w, r, session.FlashError, "Failed to generate invoice")
		http.Redirect(w, r, "/orders/"+order.ID, http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+invoice.Filename(order)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(pdf.Len()))
	pdf.WriteTo(w)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "Invalid form submission", "/orders")
		return
	}
	back := returnTo(r, "/orders")

	status := domain.OrderStatus(r.PostForm.Get("status"))
	if !status.Valid() {
		h.invalid(w, r, "Invalid order status", back)
		return
	}

	if err := h.api.UpdateOrderStatus(r.Context(), id, status); err != nil {
		h.fail(w, r, err, back)
		return
	}
	h.done(w, r, "Order status updated", back)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	if err := h.api.DeleteOrder(r.Context(), id); err != nil {
		h.fail(w, r, err, "/orders")
		return
	}
	h.done(w, r, "Order deleted", "/orders")
}

// load fetches the {id} order or answers the request itself.
func (h *OrderHandler) load(w http.ResponseWriter, r *http.Request) (*domain.Order, bool) {
	id, ok := h.objectID(w, r)
	if !ok {
		return nil, false
	}

	order, err := h.api.GetOrder(r.Context(), id)
	if err != nil {
		if h.expired(w, r, err) {
			return nil, false
		}
		middleware.SkipActivity(r.Context())
		logger.ForRequest(r.Context(), h.logger).Warn("Failed to load order", zap.String("id", id), zap.Error(err))
		h.flash(w, r, session.FlashError, backend.Message(err))
		http.Redirect(w, r, "/orders", http.StatusSeeOther)
		return nil, false
	}
	return order, true
}
