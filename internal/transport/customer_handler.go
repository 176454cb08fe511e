package transport

import (
	"net/http"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"
	"storefront-admin/internal/service"
	"storefront-admin/internal/session"

	"github.com/go-chi/chi/v5"
)

// CustomerHandler lists storefront users and inquiries
type CustomerHandler struct {
	*Pages
	api *backend.Client
}

func NewCustomerHandler(pages *Pages, api *backend.Client) *CustomerHandler {
	return &CustomerHandler{Pages: pages, api: api}
}

func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.Customers)
		r.Post("/{id}/delete", h.DeleteCustomer)
	})
	r.Route("/inquiries", func(r chi.Router) {
		r.Get("/", h.Inquiries)
		r.Post("/{id}/status", h.UpdateInquiryStatus)
		r.Post("/{id}/delete", h.DeleteInquiry)
	})
}

type customerListView struct {
	Customers []domain.Customer
	Total     int
}

func (h *CustomerHandler) Customers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.api.ListCustomers(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to load customers"); handled {
			return
		}
	}

	matched := service.Filter(customers, r.URL.Query().Get("q"),
		func(c domain.Customer) string { return c.DisplayName },
		func(c domain.Customer) string { return c.Email },
	)
	h.render(w, r, "customers.html", "Customers", customerListView{Customers: matched, Total: len(customers)}, toasts(notice)...)
}

func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	if err := h.api.DeleteCustomer(r.Context(), id); err != nil {
		h.fail(w, r, err, "/customers")
		return
	}
	h.done(w, r, "User deleted successfully!", "/customers")
}

type inquiryListView struct {
	Inquiries []domain.Inquiry
	Total     int
	Unread    int
}

func (h *CustomerHandler) Inquiries(w http.ResponseWriter, r *http.Request) {
	inquiries, err := h.api.ListInquiries(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to fetch inquiries"); handled {
			return
		}
	}

	view := inquiryListView{
		Inquiries: service.Filter(inquiries, r.URL.Query().Get("q"),
			func(i domain.Inquiry) string { return i.Name },
			func(i domain.Inquiry) string { return i.Email },
		),
		Total: len(inquiries),
	}
	for _, i := range inquiries {
		if i.Status == domain.InquiryNew {
			view.Unread++
		}
	}
	h.render(w, r, "inquiries.html", "Inquiries", view, toasts(notice)...)
}

func (h *CustomerHandler) UpdateInquiryStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "Invalid form submission", "/inquiries")
		return
	}

	status := domain.InquiryStatus(r.PostForm.Get("status"))
	if !status.Valid() {
		h.invalid(w, r, "Invalid inquiry status", "/inquiries")
		return
	}

	if err := h.api.UpdateInquiryStatus(r.Context(), id, status); err != nil {
		h.fail(w, r, err, "/inquiries")
		return
	}
	h.done(w, r, "Status updated", "/inquiries")
}

func (h *CustomerHandler) DeleteInquiry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	if err := h.api.DeleteInquiry(r.Context(), id); err != nil {
		h.fail(w, r, err, "/inquiries")
		return
	}
	h.done(w, r, "Inquiry deleted", "/inquiries")
}
