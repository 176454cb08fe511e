package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidPeriod = errors.New("month must be 0-11 and year 2000-2100")

// ReportAPI is the part of the backend client the reports page needs
type ReportAPI interface {
	Report(ctx context.Context) (*domain.Report, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
	ListInquiries(ctx context.Context) ([]domain.Inquiry, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	MonthlyReport(ctx context.Context, month, year int) (*domain.MonthlyReport, error)
}

// StatusCount is the number of orders in one fulfillment status
type StatusCount struct {
	Status domain.OrderStatus `json:"status"`
	Count  int                `json:"count"`
}

// ChartBar is one bar of the overview chart. Percent is relative to the
// tallest bar.
type ChartBar struct {
	Label   string `json:"label"`
	Value   int    `json:"value"`
	Percent int    `json:"percent"`
}

// Overview is the reports page summary
type Overview struct {
	Month             string          `json:"month"`
	TotalProducts     int             `json:"totalProducts"`
	TotalCustomers    int             `json:"totalCustomers"`
	InquiriesReceived int             `json:"inquiriesReceived"`
	TotalOrders       int             `json:"totalOrders"`
	Revenue           decimal.Decimal `json:"revenue"`
	InventoryValue    decimal.Decimal `json:"inventoryValue"`
	OrdersByStatus    []StatusCount   `json:"ordersByStatus"`
	Chart             []ChartBar      `json:"chart"`
	Warnings          []string        `json:"warnings,omitempty"`
}

// ReportService assembles dashboard figures from the backend
type ReportService struct {
	api    ReportAPI
	logger *zap.Logger
	now    func() time.Time
}

func NewReportService(api ReportAPI, logger *zap.Logger) *ReportService {
	return &ReportService{api: api, logger: logger, now: time.Now}
}

// Overview fetches the pre-aggregated report and the collections in
// parallel. A count comes from its collection when that fetch succeeded and
// from the report otherwise. It fails only when the session expired or
// every source failed.
func (s *ReportService) Overview(ctx context.Context) (*Overview, error) {
	var (
		report    *domain.Report
		products  []domain.Product
		customers []domain.Customer
		inquiries []domain.Inquiry
		orders    []domain.Order

		reportErr, productsErr, customersErr, inquiriesErr, ordersErr error
	)

	var g errgroup.Group
	g.Go(func() error { report, reportErr = s.api.Report(ctx); return nil })
	g.Go(func() error { products, productsErr = s.api.ListProducts(ctx); return nil })
	g.Go(func() error { customers, customersErr = s.api.ListCustomers(ctx); return nil })
	g.Go(func() error { inquiries, inquiriesErr = s.api.ListInquiries(ctx); return nil })
	g.Go(func() error { orders, ordersErr = s.api.ListOrders(ctx); return nil })
	g.Wait()

	errs := []error{reportErr, productsErr, customersErr, inquiriesErr, ordersErr}
	failed := 0
	for _, err := range errs {
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, err
		}
		if err != nil {
			failed++
		}
	}
	if failed == len(errs) {
		return nil, fmt.Errorf("failed to load reports: %w", reportErr)
	}

	if report == nil {
		report = &domain.Report{}
	}

	overview := &Overview{
		Month:          report.Month,
		Revenue:        decimal.Zero,
		InventoryValue: decimal.Zero,
	}
	if overview.Month == "" {
		overview.Month = s.now().Format("January 2006")
	}

	warn := func(source string, err error) {
		s.logger.Warn("Report source unavailable", zap.String("source", source), zap.Error(err))
		overview.Warnings = append(overview.Warnings, fmt.Sprintf("%s: %s", source, backend.Message(err)))
	}

	if reportErr != nil {
		warn("summary", reportErr)
	}

	overview.TotalProducts = report.TotalProducts
	if productsErr == nil {
		overview.TotalProducts = len(products)
		overview.InventoryValue = InventoryValue(products)
	} else {
		warn("products", productsErr)
	}

	overview.TotalCustomers = report.TotalCustomers
	if customersErr == nil {
		overview.TotalCustomers = len(customers)
	} else {
		warn("customers", customersErr)
	}

	overview.InquiriesReceived = report.InquiriesReceived
	if inquiriesErr == nil {
		overview.InquiriesReceived = len(inquiries)
	} else {
		warn("inquiries", inquiriesErr)
	}

	overview.TotalOrders = report.TotalOrders
	if ordersErr == nil {
		overview.TotalOrders = len(orders)
		overview.Revenue = Revenue(orders)
		overview.OrdersByStatus = OrdersByStatus(orders)
	} else {
		warn("orders", ordersErr)
	}

	overview.Chart = Chart(
		ChartBar{Label: "Products", Value: overview.TotalProducts},
		ChartBar{Label: "Customers", Value: overview.TotalCustomers},
		ChartBar{Label: "Inquiries", Value: overview.InquiriesReceived},
		ChartBar{Label: "Orders", Value: overview.TotalOrders},
	)

	return overview, nil
}

// Monthly returns the order summary of one month. month is zero based.
func (s *ReportService) Monthly(ctx context.Context, month, year int) (*domain.MonthlyReport, error) {
	if month < 0 || month > 11 || year < 2000 || year > 2100 {
		return nil, ErrInvalidPeriod
	}
	return s.api.MonthlyReport(ctx, month, year)
}

// InventoryValue sums price times stock over every product.
func InventoryValue(products []domain.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.InventoryValue())
	}
	return total
}

// Revenue sums the totals of orders that were not cancelled. Orders without
// a total fall back to the sum of their lines.
func Revenue(orders []domain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Status == domain.OrderCancelled {
			continue
		}
		amount := o.TotalAmount
		if amount.IsZero() {
			amount = o.ItemsSubtotal()
		}
		total = total.Add(amount)
	}
	return total
}

// OrdersByStatus counts orders per status in display order. Statuses the
// dashboard does not know are appended after the known ones.
func OrdersByStatus(orders []domain.Order) []StatusCount {
	counts := map[domain.OrderStatus]int{}
	var unknown []domain.OrderStatus
	for _, o := range orders {
		if _, seen := counts[o.Status]; !seen && !o.Status.Valid() {
			unknown = append(unknown, o.Status)
		}
		counts[o.Status]++
	}

	result := make([]StatusCount, 0, len(domain.OrderStatuses)+len(unknown))
	for _, status := range append(append([]domain.OrderStatus{}, domain.OrderStatuses...), unknown...) {
		result = append(result, StatusCount{Status: status, Count: counts[status]})
	}
	return result
}

// Chart scales bars against the largest value.
func Chart(bars ...ChartBar) []ChartBar {
	tallest := 0
	for _, b := range bars {
		if b.Value > tallest {
			tallest = b.Value
		}
	}
	for i := range bars {
		if tallest > 0 {
			bars[i].Percent = bars[i].Value * 100 / tallest
		}
	}
	return bars
}
