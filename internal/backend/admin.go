package backend

import (
	"context"
	"errors"
	"net/http"

	"storefront-admin/internal/domain"
)

// Credentials is the sign-in payload
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the admin sign-up payload
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ProfileUpdate is the self-service profile payload
type ProfileUpdate struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,numeric,len=10"`
	Address string `json:"address" validate:"required"`
}

// PasswordChange is the payload for rotating the admin password
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

var ErrNoToken = errors.New("login response did not include a token")

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, "admin/login", creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrNoToken
	}
	return resp.Token, nil
}

// Register creates a new admin account.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.sendJSON(ctx, http.MethodPost, "admin/register", reg, nil)
}

// Me returns the admin owning the context token.
func (c *Client) Me(ctx context.Context) (*domain.Admin, error) {
	var admin domain.Admin
	if err := c.getJSON(ctx, "admin/me", nil, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

// UpdateProfile saves the admin's own profile fields.
func (c *Client) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.Admin, error) {
	var admin domain.Admin
	if err := c.sendJSON(ctx, http.MethodPut, resource("admin", id), update, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

// ChangePassword replaces the admin's password.
func (c *Client) ChangePassword(ctx context.Context, id string, change PasswordChange) error {
	return c.sendJSON(ctx, http.MethodPut, resource("admin", id, "password"), change, nil)
}
