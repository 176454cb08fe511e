package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func reportBackend(overrides map[string]http.HandlerFunc) chi.Router {
	routes := map[string]http.HandlerFunc{
		"/api/reports": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"month":"May 2024","totalProducts":40,"totalCustomers":30,"inquiriesReceived":20,"totalOrders":10}`))
		},
		"/api/products": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"_id":"p1","name":"Lamp","price":"10.10","stock":3},{"_id":"p2","name":"Chair","price":"0.20","stock":5}]`))
		},
		"/api/users": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"_id":"u1","displayName":"Ada"}]`))
		},
		"/api/inquiries": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"_id":"i1"},{"_id":"i2"}]`))
		},
		"/api/orders": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[
				{"_id":"o1","status":"Delivered","totalAmount":"99.99"},
				{"_id":"o2","status":"Cancelled","totalAmount":"50"},
				{"_id":"o3","status":"Processing","items":[{"name":"Lamp","price":"10.10","quantity":2}]}
			]`))
		},
	}
	for path, h := range overrides {
		routes[path] = h
	}

	r := chi.NewRouter()
	for path, h := range routes {
		r.Get(path, h)
	}
	return r
}

func failing(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`{"message":"unavailable"}`))
	}
}

func TestReportService_CountsPreferCollections(t *testing.T) {
	svc := NewReportService(newBackend(t, reportBackend(nil)), zap.NewNop())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "May 2024", overview.Month)
	assert.Equal(t, 2, overview.TotalProducts)
	assert.Equal(t, 1, overview.TotalCustomers)
	assert.Equal(t, 2, overview.InquiriesReceived)
	assert.Equal(t, 3, overview.TotalOrders)
	assert.True(t, decimal.RequireFromString("31.30").Equal(overview.InventoryValue), overview.InventoryValue.String())
	assert.True(t, decimal.RequireFromString("120.19").Equal(overview.Revenue), overview.Revenue.String())
	assert.Empty(t, overview.Warnings)

	require.Len(t, overview.Chart, 4)
	assert.Equal(t, ChartBar{Label: "Orders", Value: 3, Percent: 100}, overview.Chart[3])
	assert.Equal(t, ChartBar{Label: "Customers", Value: 1, Percent: 33}, overview.Chart[1])
}

func TestReportService_FallsBackToSummary(t *testing.T) {
	svc := NewReportService(newBackend(t, reportBackend(map[string]http.HandlerFunc{
		"/api/users":  failing(http.StatusInternalServerError),
		"/api/orders": failing(http.StatusBadGateway),
	})), zap.NewNop())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, overview.TotalProducts)
	assert.Equal(t, 30, overview.TotalCustomers)
	assert.Equal(t, 10, overview.TotalOrders)
	assert.True(t, overview.Revenue.IsZero())
	assert.Len(t, overview.Warnings, 2)
}

func TestReportService_SummaryMissing(t *testing.T) {
	svc := NewReportService(newBackend(t, reportBackend(map[string]http.HandlerFunc{
		"/api/reports": failing(http.StatusNotFound),
	})), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC) }

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "March 2024", overview.Month)
	assert.Equal(t, 2, overview.TotalProducts)
}

func TestReportService_UnauthorizedWins(t *testing.T) {
	svc := NewReportService(newBackend(t, reportBackend(map[string]http.HandlerFunc{
		"/api/products": failing(http.StatusUnauthorized),
	})), zap.NewNop())

	_, err := svc.Overview(context.Background())
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestReportService_AllSourcesDown(t *testing.T) {
	down := failing(http.StatusServiceUnavailable)
	svc := NewReportService(newBackend(t, reportBackend(map[string]http.HandlerFunc{
		"/api/reports":   down,
		"/api/products":  down,
		"/api/users":     down,
		"/api/inquiries": down,
		"/api/orders":    down,
	})), zap.NewNop())

	_, err := svc.Overview(context.Background())
	assert.Error(t, err)
}

func TestReportService_MonthlyValidatesPeriod(t *testing.T) {
	var gotQuery string
	r := chi.NewRouter()
	r.Get("/api/orders/monthly-report", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"month":4,"year":2024,"totalOrders":7,"totalItemsSold":12,"totalRevenue":250.5}`))
	})
	svc := NewReportService(newBackend(t, r), zap.NewNop())

	for _, bad := range [][2]int{{-1, 2024}, {12, 2024}, {0, 1999}, {0, 2101}} {
		_, err := svc.Monthly(context.Background(), bad[0], bad[1])
		assert.True(t, errors.Is(err, ErrInvalidPeriod), bad)
	}
	assert.Empty(t, gotQuery)

	report, err := svc.Monthly(context.Background(), 4, 2024)
	require.NoError(t, err)
	assert.Equal(t, 7, report.TotalOrders)
	assert.Equal(t, 5, report.MonthLabel())
	assert.Contains(t, gotQuery, "month=4")
	assert.Contains(t, gotQuery, "year=2024")
}

func TestOrdersByStatus(t *testing.T) {
	counts := OrdersByStatus([]domain.Order{
		{Status: domain.OrderShipped},
		{Status: domain.OrderShipped},
		{Status: "Returned"},
	})

	assert.Equal(t, []StatusCount{
		{Status: domain.OrderProcessing, Count: 0},
		{Status: domain.OrderShipped, Count: 2},
		{Status: domain.OrderDelivered, Count: 0},
		{Status: domain.OrderCancelled, Count: 0},
		{Status: "Returned", Count: 1},
	}, counts)
}

func TestChart_AllZero(t *testing.T) {
	bars := Chart(ChartBar{Label: "A"}, ChartBar{Label: "B"})
	assert.Equal(t, 0, bars[0].Percent)
	assert.Equal(t, 0, bars[1].Percent)
}
