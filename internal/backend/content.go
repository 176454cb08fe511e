package backend

import (
	"context"
	"errors"
	"net/http"

	"storefront-admin/internal/domain"
)

func (c *Client) ListBlogs(ctx context.Context) ([]domain.Blog, error) {
	blogs := []domain.Blog{}
	if err := c.getJSON(ctx, "blogs", nil, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

func (c *Client) CreateBlog(ctx context.Context, form *Multipart) error {
	return c.sendMultipart(ctx, http.MethodPost, "blogs", form, nil)
}

func (c *Client) UpdateBlog(ctx context.Context, id string, form *Multipart) error {
	return c.sendMultipart(ctx, http.MethodPut, resource("blogs", id), form, nil)
}

func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	return c.delete(ctx, resource("blogs", id))
}

func (c *Client) ListSliders(ctx context.Context) ([]domain.Slider, error) {
	sliders := []domain.Slider{}
	if err := c.getJSON(ctx, "sliders", nil, &sliders); err != nil {
		return nil, err
	}
	return sliders, nil
}

func (c *Client) CreateSlider(ctx context.Context, form *Multipart) error {
	return c.sendMultipart(ctx, http.MethodPost, "sliders", form, nil)
}

func (c *Client) UpdateSlider(ctx context.Context, id string, form *Multipart) error {
	return c.sendMultipart(ctx, http.MethodPut, resource("sliders", id), form, nil)
}

func (c *Client) DeleteSlider(ctx context.Context, id string) error {
	return c.delete(ctx, resource("sliders", id))
}

// Logo returns the current logo. A missing logo is not an error.
func (c *Client) Logo(ctx context.Context) (*domain.Logo, error) {
	var logo domain.Logo
	if err := c.getJSON(ctx, "logo", nil, &logo); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &logo, nil
}

// UploadLogo replaces the logo file and/or its description.
func (c *Client) UploadLogo(ctx context.Context, form *Multipart) (*domain.Logo, error) {
	var logo domain.Logo
	if err := c.sendMultipart(ctx, http.MethodPost, "logo/upload", form, &logo); err != nil {
		return nil, err
	}
	return &logo, nil
}

func (c *Client) DeleteLogo(ctx context.Context) error {
	return c.delete(ctx, "logo/delete")
}

type bannerEnvelope struct {
	Banner domain.SaleBanner `json:"banner"`
}

// SaleBanner returns the current banner. A missing banner is not an error.
func (c *Client) SaleBanner(ctx context.Context) (*domain.SaleBanner, error) {
	var resp bannerEnvelope
	if err := c.getJSON(ctx, "sale-banner", nil, &resp); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &resp.Banner, nil
}

func (c *Client) UploadSaleBanner(ctx context.Context, form *Multipart) (*domain.SaleBanner, error) {
	var resp bannerEnvelope
	if err := c.sendMultipart(ctx, http.MethodPost, "sale-banner/upload", form, &resp); err != nil {
		return nil, err
	}
	return &resp.Banner, nil
}

func (c *Client) DeleteSaleBanner(ctx context.Context) error {
	return c.delete(ctx, "sale-banner")
}

func (c *Client) ContactSettings(ctx context.Context) (*domain.ContactSettings, error) {
	var settings domain.ContactSettings
	if err := c.getJSON(ctx, "contact-settings", nil, &settings); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return &settings, nil
}

func (c *Client) UpdateContactSettings(ctx context.Context, settings domain.ContactSettings) error {
	return c.sendJSON(ctx, http.MethodPut, "contact-settings", settings, nil)
}
