package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"
	"storefront-admin/internal/middleware"
	"storefront-admin/internal/repository"
	"storefront-admin/internal/service"
	"storefront-admin/internal/session"
	"storefront-admin/internal/staging"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	lampID     = "64b7f0c2a1b2c3d4e5f60718"
	chairID    = "64b7f0c2a1b2c3d4e5f60719"
	lightingID = "64b7f0c2a1b2c3d4e5f60720"
	orderID    = "64b7f0c2a1b2c3d4e5f60721"

	adminToken    = "token-abc"
	adminPassword = "secret"
	lampImage     = "https://cdn.example.com/lamp.jpg"
)

// submission is a multipart request the fake backend received
type submission struct {
	Values url.Values
	Files  map[string][]string
}

// fakeBackend is an in-memory stand-in for the store's REST API
type fakeBackend struct {
	mu         sync.Mutex
	products   []domain.Product
	orders     []domain.Order
	calls      []string
	auth       []string
	forms      []submission
	expired    bool
	failDelete map[string]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products: []domain.Product{
			{
				ID:          lampID,
				Name:        "Desk Lamp",
				Price:       decimal.RequireFromString("49.50"),
				Description: "Brass desk lamp",
				Categories:  domain.CategoryRefs{{ID: lightingID, Name: "Lighting"}},
				InStock:     true,
				Stock:       5,
				Specs:       domain.Specs{Features: []string{"Dimmable"}},
				Images:      []string{lampImage},
			},
			{
				ID:          chairID,
				Name:        "Reading Chair",
				Price:       decimal.RequireFromString("120"),
				Description: "Oak frame",
				Categories:  domain.CategoryRefs{{ID: lightingID}},
				Stock:       2,
			},
		},
		orders: []domain.Order{
			{
				ID:            orderID,
				CustomerName:  "Ada Lovelace",
				Email:         "ada@example.com",
				Items:         []domain.OrderItem{{Name: "Desk Lamp", Quantity: 2, Price: decimal.RequireFromString("49.50")}},
				Subtotal:      decimal.RequireFromString("99"),
				TotalAmount:   decimal.RequireFromString("99"),
				PaymentMethod: "card",
				PaymentStatus: "paid",
				Status:        domain.OrderProcessing,
			},
		},
		failDelete: map[string]bool{},
	}
}

func (f *fakeBackend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(f.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/admin/login", f.login)

		r.Get("/products", f.listProducts)
		r.Post("/products", f.saveProduct)
		r.Get("/products/{id}", f.getProduct)
		r.Put("/products/{id}", f.saveProduct)
		r.Delete("/products/{id}", f.deleteProduct)

		r.Get("/categories", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []domain.Category{{ID: lightingID, Name: "Lighting", IsActive: true}})
		})

		r.Get("/orders", f.listOrders)
		r.Get("/orders/{id}", f.getOrder)
		r.Put("/orders/{id}/status", f.updateOrderStatus)

		r.Get("/logo", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, domain.Logo{})
		})
		r.Post("/logo/upload", func(w http.ResponseWriter, r *http.Request) {
			f.capture(r)
			writeJSON(w, http.StatusOK, domain.Logo{})
		})
	})

	return r
}

func (f *fakeBackend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		expired := f.expired
		f.mu.Unlock()

		if expired && r.URL.Path != "/api/admin/login" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "jwt expired"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds backend.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Password != adminPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": adminToken})
}

func (f *fakeBackend) listProducts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.products)
}

func (f *fakeBackend) getProduct(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.ID == chi.URLParam(r, "id") {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
}

func (f *fakeBackend) saveProduct(w http.ResponseWriter, r *http.Request) {
	f.capture(r)
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (f *fakeBackend) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete[id] {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Delete failed"})
		return
	}
	kept := f.products[:0]
	for _, p := range f.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.products = kept
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeBackend) listOrders(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.orders)
}

func (f *fakeBackend) getOrder(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == chi.URLParam(r, "id") {
			writeJSON(w, http.StatusOK, o)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
}

func (f *fakeBackend) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == chi.URLParam(r, "id") {
			f.orders[i].Status = body.Status
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// capture keeps the fields and file names of a multipart request.
func (f *fakeBackend) capture(r *http.Request) {
	sub := submission{Values: url.Values{}, Files: map[string][]string{}}
	if err := r.ParseMultipartForm(32 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			sub.Values[k] = v
		}
		for k, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				sub.Files[k] = append(sub.Files[k], fh.Filename)
			}
		}
	}

	f.mu.Lock()
	f.forms = append(f.forms, sub)
	f.mu.Unlock()
}

func (f *fakeBackend) setExpired(expired bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = expired
}

func (f *fakeBackend) failDeleting(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDelete[id] = true
}

func (f *fakeBackend) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) lastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.auth) == 0 {
		return ""
	}
	return f.auth[len(f.auth)-1]
}

func (f *fakeBackend) lastForm() (submission, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.forms) == 0 {
		return submission{}, false
	}
	return f.forms[len(f.forms)-1], true
}

func (f *fakeBackend) orderStatus(id string) domain.OrderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			return o.Status
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// testApp is the dashboard wired to a fake backend, driven by a browser-like client
type testApp struct {
	url      string
	client   *http.Client
	backend  *fakeBackend
	staging  *staging.Store
	activity repository.ActivityLogRepository
}

// newTestApp mirrors the server's routing without the CSRF layer, which
// leaves csrf.TemplateField empty.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	fake := newFakeBackend()
	api := httptest.NewServer(fake.routes())
	t.Cleanup(api.Close)

	logger := zap.NewNop()
	client, err := backend.New(api.URL+"/api/", 5*time.Second, logger)
	require.NoError(t, err)

	views := NewTemplateCache()
	require.NoError(t, views.Load())

	sessions := session.NewManager([]byte(strings.Repeat("k", 32)), session.Options{MaxAge: time.Hour})
	pages := NewPages(views, sessions, "Lumen Store", logger)
	catalog := service.NewCatalogService(client, nil, 0, logger)
	reports := service.NewReportService(client, logger)
	store := staging.NewStore(time.Hour, 0, logger)
	activity := repository.NewMemoryActivityLogRepository(100)

	noLimit := func(next http.Handler) http.Handler { return next }
	reportHandler := NewReportHandler(pages, reports)

	r := chi.NewRouter()
	NewAuthHandler(pages, client).RegisterRoutes(r, noLimit)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions, logger))
		reportHandler.RegisterAPIRoutes(r)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sessions, logger))
		r.Use(middleware.RememberMenu(sessions, logger))
		r.Use(middleware.ActivityLog(activity, logger))

		NewProductHandler(pages, client, catalog, store, 10, 8<<20).RegisterRoutes(r)
		NewCategoryHandler(pages, catalog, 8<<20).RegisterRoutes(r)
		NewOrderHandler(pages, client).RegisterRoutes(r)
		NewCustomerHandler(pages, client).RegisterRoutes(r)
		NewContentHandler(pages, client, 8<<20).RegisterRoutes(r)
		NewSiteHandler(pages, client, 8<<20).RegisterRoutes(r)
		NewProfileHandler(pages, client).RegisterRoutes(r)
		reportHandler.RegisterRoutes(r)
		NewActivityHandler(pages, activity).RegisterRoutes(r)
		NewStagingHandler(store).RegisterRoutes(r)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	browser := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testApp{
		url:      srv.URL,
		client:   browser,
		backend:  fake,
		staging:  store,
		activity: activity,
	}
}

// page is a finished response with its body read
type page struct {
	Status   int
	Location string
	Header   http.Header
	Body     string
}

func (a *testApp) do(t *testing.T, req *http.Request) page {
	t.Helper()
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html")
	}

	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return page{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Header:   resp.Header,
		Body:     string(body),
	}
}

func (a *testApp) get(t *testing.T, path string) page {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.url+path, nil)
	require.NoError(t, err)
	return a.do(t, req)
}

func (a *testApp) post(t *testing.T, path string, values url.Values) page {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.url+path, strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req)
}

// testFile is a file part of a multipart post
type testFile struct {
	Field    string
	Filename string
	Data     []byte
}

// pngData is tag behind a PNG signature, enough for content sniffing.
func pngData(tag string) []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), tag...)
}

func pngFile(filename, tag string) testFile {
	return testFile{Field: "files", Filename: filename, Data: pngData(tag)}
}

func (a *testApp) postMultipart(t *testing.T, path string, values url.Values, files ...testFile) page {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, vs := range values {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Filename)
		require.NoError(t, err)
		_, err = part.Write(f.Data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, a.url+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(t, req)
}

// signIn posts valid credentials and drops the success toast.
func (a *testApp) signIn(t *testing.T) {
	t.Helper()
	res := a.post(t, "/auth/signin", url.Values{
		"email":    {"admin@example.com"},
		"password": {adminPassword},
	})
	require.Equal(t, http.StatusSeeOther, res.Status)
	require.Equal(t, "/products", res.Location)
}

// follow reads the page a redirect points at, showing its flashes.
func (a *testApp) follow(t *testing.T, res page) page {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, res.Status, res.Body)
	return a.get(t, res.Location)
}

var pendingImagePattern = regexp.MustCompile(`name="pendingImage" value="([^"]+)"`)

func pendingImageIDs(body string) []string {
	var ids []string
	for _, m := range pendingImagePattern.FindAllStringSubmatch(body, -1) {
		ids = append(ids, m[1])
	}
	return ids
}
