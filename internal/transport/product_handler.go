package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront-admin/internal/backend"
	"storefront-admin/internal/domain"
	"storefront-admin/internal/logger"
	"storefront-admin/internal/middleware"
	"storefront-admin/internal/productform"
	"storefront-admin/internal/service"
	"storefront-admin/internal/session"
	"storefront-admin/internal/staging"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductHandler handles the product list, inventory and the add/edit form
type ProductHandler struct {
	*Pages
	api       *backend.Client
	catalog   *service.CatalogService
	staging   *staging.Store
	maxImages int
	maxBytes  int64
}

func NewProductHandler(pages *Pages, api *backend.Client, catalog *service.CatalogService, store *staging.Store, maxImages int, maxBytes int64) *ProductHandler {
	return &ProductHandler{
		Pages:     pages,
		api:       api,
		catalog:   catalog,
		staging:   store,
		maxImages: maxImages,
		maxBytes:  maxBytes,
	}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/bulk-delete", h.BulkDelete)
		r.Get("/inventory", h.Inventory)
		r.Get("/new", h.NewForm)
		r.Post("/new", h.Create)
		r.Get("/{id}/edit", h.EditForm)
		r.Post("/{id}/edit", h.Update)
		r.Post("/{id}/delete", h.Delete)
		r.Post("/{id}/stock", h.UpdateStock)
		r.Post("/{id}/status", h.UpdateStatus)
	})
}

type productListView struct {
	Products []domain.Product
	Total    int
}

// List shows every product, filtered by name with ?q=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.api.ListProducts(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to load products"); handled {
			return
		}
	}

	matched := service.Filter(products, r.URL.Query().Get("q"), func(p domain.Product) string { return p.Name })
	h.render(w, r, "products.html", "Products", productListView{
		Products: matched,
		Total:    len(products),
	}, toasts(notice)...)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	if err := h.api.DeleteProduct(r.Context(), id); err != nil {
		h.fail(w, r, err, "/products")
		return
	}
	h.done(w, r, "Product deleted successfully!", "/products")
}

// BulkDelete deletes every checked product. Deletes are independent, so a
// partial failure leaves the rest deleted.
func (h *ProductHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "Invalid form submission", "/products")
		return
	}

	var ids []string
	for _, id := range r.PostForm["ids"] {
		if domain.ValidID(id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		h.invalid(w, r, "Please select at least one product", "/products")
		return
	}

	result := h.catalog.BulkDeleteProducts(r.Context(), ids)
	if result.Unauthorized() {
		h.expired(w, r, backend.ErrUnauthorized)
		return
	}

	if len(result.Failed) > 0 {
		middleware.MarkActivityFailed(r.Context(), result.Summary())
		h.flash(w, r, session.FlashError, result.Summary())
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}
	h.done(w, r, result.Summary(), "/products")
}

type inventoryView struct {
	Products   []domain.Product
	TotalValue decimal.Decimal
	TotalStock int
}

// Inventory lists stock levels and the value of everything on hand
func (h *ProductHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	products, err := h.api.ListProducts(r.Context())
	var notice session.Flash
	if err != nil {
		var handled bool
		if notice, handled = h.loadError(w, r, err, "Failed to load inventory"); handled {
			return
		}
	}

	view := inventoryView{
		Products:   service.Filter(products, r.URL.Query().Get("q"), func(p domain.Product) string { return p.Name }),
		TotalValue: service.InventoryValue(products),
	}
	for _, p := range products {
		view.TotalStock += p.Stock
	}
	h.render(w, r, "inventory.html", "Inventory", view, toasts(notice)...)
}

func (h *ProductHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "Invalid form submission", "/products/inventory")
		return
	}

	stock, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("stock")))
	if err != nil || stock < 0 {
		h.invalid(w, r, "Stock quantity cannot be negative", "/products/inventory")
		return
	}

	if err := h.api.UpdateStock(r.Context(), id, stock); err != nil {
		h.fail(w, r, err, "/products/inventory")
		return
	}
	h.done(w, r, "Stock updated successfully!", "/products/inventory")
}

func (h *ProductHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.invalid(w, r, "Invalid form submission", "/products/inventory")
		return
	}

	inStock, err := strconv.ParseBool(r.PostForm.Get("inStock"))
	if err != nil {
		h.invalid(w, r, "Invalid stock status", "/products/inventory")
		return
	}

	if err := h.api.UpdateStockStatus(r.Context(), id, inStock); err != nil {
		h.fail(w, r, err, "/products/inventory")
		return
	}
	h.done(w, r, "Stock status updated successfully!", "/products/inventory")
}

type productFormView struct {
	Draft      *productform.Draft
	Categories []domain.Category
	Action     string
}

func (h *ProductHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, productform.NewDraft(h.maxImages))
}

func (h *ProductHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}

	product, err := h.api.GetProduct(r.Context(), id)
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		logger.ForRequest(r.Context(), h.logger).Warn("Failed to load product", zap.String("id", id), zap.Error(err))
		h.flash(w, r, session.FlashError, backend.Message(err))
		http.Redirect(w, r, "/products", http.StatusSeeOther)
		return
	}

	h.renderForm(w, r, http.StatusOK, productform.FromProduct(*product, h.maxImages))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, "")
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	h.submit(w, r, id)
}

// submit handles every post of the product form. Buttons other than save
// edit the draft and re-render it; save validates and sends it.
func (h *ProductHandler) submit(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()
	log := logger.ForRequest(ctx, h.logger)

	back := "/products/new"
	if id != "" {
		back = "/products/" + id + "/edit"
	}

	if err := parseForm(w, r, h.maxBytes); err != nil {
		log.Warn("Failed to parse product form", zap.Error(err))
		message := "Invalid form submission"
		if errors.Is(err, ErrUploadTooLarge) {
			message = "The selected files are too large"
		}
		h.invalid(w, r, message, back)
		return
	}

	draft := productform.DecodeForm(r.PostForm, id, h.maxImages, h.staging)

	var notices []session.Flash
	if draft.ExpiredUploads > 0 {
		notices = append(notices, session.Flash{Type: session.FlashError, Message: "A selected file expired. Please choose it again."})
	}

	uploads, err := formFiles(r, productform.KeyFiles)
	unreadable := err != nil
	if unreadable {
		log.Warn("Failed to read product uploads", zap.Error(err))
		notices = append(notices, session.Flash{Type: session.FlashError, Message: "Could not read the selected files"})
	}
	rejected, replaced := draft.AddFiles(h.stage(uploads))
	h.release(rejected)
	h.release(replaced)
	notices = append(notices, rejectionNotices(rejected, draft.MaxImages)...)

	op, err := productform.ParseOp(r.PostForm.Get(productform.KeyOp))
	if err != nil {
		log.Warn("Unknown product form action", zap.Error(err))
		op = productform.Op{Kind: productform.OpUpload}
	}
	discarded, err := draft.Apply(op)
	h.release(discarded)
	if err != nil {
		log.Debug("Product form action ignored", zap.String("op", string(op.Kind)), zap.Error(err))
	}

	if op.Kind != productform.OpSave {
		middleware.SkipActivity(ctx)
		h.renderForm(w, r, http.StatusOK, draft, notices...)
		return
	}

	if err := draft.Validate(); err != nil {
		middleware.SkipActivity(ctx)
		h.renderForm(w, r, http.StatusUnprocessableEntity, draft,
			append(notices, session.Flash{Type: session.FlashError, Message: err.Error()})...)
		return
	}
	// Every chosen file must reach the backend or the admin is told why not
	if draft.ExpiredUploads > 0 || len(rejected) > 0 || unreadable {
		middleware.SkipActivity(ctx)
		h.renderForm(w, r, http.StatusUnprocessableEntity, draft, notices...)
		return
	}

	form, err := draft.Multipart(h.staging)
	if err != nil {
		middleware.SkipActivity(ctx)
		log.Warn("Failed to build product submission", zap.Error(err))
		h.renderForm(w, r, http.StatusUnprocessableEntity, draft,
			append(notices, session.Flash{Type: session.FlashError, Message: "A selected file expired. Please choose it again."})...)
		return
	}

	message := "Product added successfully!"
	if draft.IsEdit() {
		err = h.api.UpdateProduct(ctx, id, form)
		message = "Product updated successfully!"
	} else {
		err = h.api.CreateProduct(ctx, form)
	}
	if err != nil {
		if h.expired(w, r, err) {
			return
		}
		log.Warn("Failed to save product", zap.String("id", id), zap.Error(err))
		middleware.MarkActivityFailed(ctx, backend.Message(err))
		h.renderForm(w, r, http.StatusBadGateway, draft,
			append(notices, session.Flash{Type: session.FlashError, Message: backend.Message(err)})...)
		return
	}

	h.staging.Delete(draft.StagedIDs()...)
	h.done(w, r, message, "/products")
}

// rejectionNotices explains why chosen files were left out of the draft.
func rejectionNotices(rejected []productform.PendingFile, maxImages int) []session.Flash {
	var notImage, overCap bool
	for _, f := range rejected {
		if productform.IsImage(f.ContentType) {
			overCap = true
		} else {
			notImage = true
		}
	}

	var notices []session.Flash
	if notImage {
		notices = append(notices, session.Flash{Type: session.FlashError, Message: "Only image files can be uploaded"})
	}
	if overCap {
		notices = append(notices, session.Flash{
			Type:    session.FlashError,
			Message: fmt.Sprintf("You can upload up to %d images", maxImages),
		})
	}
	return notices
}

func (h *ProductHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, draft *productform.Draft, now ...session.Flash) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		notice, handled := h.loadError(w, r, err, "Failed to load categories")
		if handled {
			return
		}
		now = append(now, notice)
	}

	view := productFormView{Draft: draft, Categories: categories, Action: "/products/new"}
	title := "Add product"
	if draft.IsEdit() {
		view.Action = "/products/" + draft.ID + "/edit"
		title = "Edit product"
	}
	h.renderStatus(w, r, status, "product_form.html", title, view, now...)
}

// stage moves fresh uploads into the staging store so they survive the
// re-render.
func (h *ProductHandler) stage(uploads []upload) []productform.PendingFile {
	pending := make([]productform.PendingFile, 0, len(uploads))
	for _, u := range uploads {
		file, err := h.staging.Put(u.Filename, u.ContentType, u.Data)
		if err != nil {
			h.logger.Warn("Failed to stage upload", zap.String("filename", u.Filename), zap.Error(err))
			continue
		}
		pending = append(pending, productform.PendingFile{
			StagingID:   file.ID,
			Filename:    file.Filename,
			ContentType: file.ContentType,
			Size:        file.Size(),
		})
	}
	return pending
}

func (h *ProductHandler) release(files []productform.PendingFile) {
	if len(files) == 0 {
		return
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.StagingID)
	}
	h.staging.Delete(ids...)
}
