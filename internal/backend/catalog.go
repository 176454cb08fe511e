package backend

import (
	"context"
	"net/http"

	"storefront-admin/internal/domain"
)

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	if err := c.getJSON(ctx, "products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := c.getJSON(ctx, resource("products", id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct posts a product form with its image and model parts.
func (c *Client) CreateProduct(ctx context.Context, form *Multipart) error {
	return c.sendMultipart(ctx, http.MethodPost, "products", form, nil)
}

// UpdateProduct replaces a product; the form carries the kept image list.
func (c *Client) UpdateProduct(ctx context.Context, id string, form *Multipart) error {
	return c.sendMultipart(ctx, http.MethodPut, resource("products", id), form, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.delete(ctx, resource("products", id))
}

// UpdateStock sets the units on hand for a product.
func (c *Client) UpdateStock(ctx context.Context, id string, stock int) error {
	body := map[string]int{"stock": stock}
	return c.sendJSON(ctx, http.MethodPut, resource("products", id, "stock"), body, nil)
}

// UpdateStockStatus flips the in-stock flag shown on the storefront.
func (c *Client) UpdateStockStatus(ctx context.Context, id string, inStock bool) error {
	body := map[string]bool{"inStock": inStock}
	return c.sendJSON(ctx, http.MethodPut, resource("products", id, "status"), body, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	if err := c.getJSON(ctx, "categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var category domain.Category
	if err := c.getJSON(ctx, resource("categories", id), nil, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) CreateCategory(ctx context.Context, form *Multipart) error {
	return c.sendMultipart(ctx, http.MethodPost, "categories", form, nil)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, form *Multipart) error {
	return c.sendMultipart(ctx, http.MethodPut, resource("categories", id), form, nil)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.delete(ctx, resource("categories", id))
}
