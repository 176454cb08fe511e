package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront-admin/internal/domain"
)

func (c *Client) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders := []domain.Order{}
	if err := c.getJSON(ctx, "orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if err := c.getJSON(ctx, resource("orders", id), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	body := map[string]domain.OrderStatus{"status": status}
	return c.sendJSON(ctx, http.MethodPut, resource("orders", id, "status"), body, nil)
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.delete(ctx, resource("orders", id))
}

// MonthlyReport fetches order totals for a zero based month.
func (c *Client) MonthlyReport(ctx context.Context, month, year int) (*domain.MonthlyReport, error) {
	query := url.Values{}
	query.Set("month", strconv.Itoa(month))
	query.Set("year", strconv.Itoa(year))

	report := domain.MonthlyReport{Month: month, Year: year}
	if err := c.getJSON(ctx, "orders/monthly-report", query, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *Client) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	customers := []domain.Customer{}
	if err := c.getJSON(ctx, "users", nil, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	return c.delete(ctx, resource("users", id))
}

func (c *Client) ListInquiries(ctx context.Context) ([]domain.Inquiry, error) {
	inquiries := []domain.Inquiry{}
	if err := c.getJSON(ctx, "inquiries", nil, &inquiries); err != nil {
		return nil, err
	}
	return inquiries, nil
}

func (c *Client) UpdateInquiryStatus(ctx context.Context, id string, status domain.InquiryStatus) error {
	body := map[string]domain.InquiryStatus{"status": status}
	return c.sendJSON(ctx, http.MethodPut, resource("inquiries", id, "status"), body, nil)
}

func (c *Client) DeleteInquiry(ctx context.Context, id string) error {
	return c.delete(ctx, resource("inquiries", id))
}

// Report returns the backend's pre-aggregated summary.
func (c *Client) Report(ctx context.Context) (*domain.Report, error) {
	var report domain.Report
	if err := c.getJSON(ctx, "reports", nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
