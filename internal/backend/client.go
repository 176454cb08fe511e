// Package backend is the typed client for the storefront REST API. Every
// call is made with the signed-in admin's bearer token taken from the
// request context.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("session expired")
	ErrNotFound     = errors.New("resource not found")
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets callers match auth and lookup failures with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Message extracts a user-facing message from err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Request failed. Please try again."
}

type tokenKey struct{}

// WithToken returns a context whose backend calls carry token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// Token returns the bearer token stored by WithToken.
func Token(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client talks to the storefront REST API under a single base URL
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for baseURL. Endpoint paths are resolved relative
// to it, so the base should end in a slash.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse backend url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}

	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// BaseURL returns the API root every endpoint is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string, query url.Values) (string, error) {
	// The leading "./" keeps ids containing ':' from parsing as a scheme.
	ref, err := url.Parse("./" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("failed to build endpoint %q: %w", path, err)
	}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out interface{}) error {
	target, err := c.endpoint(path, query)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := Token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("failed to call backend: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, method, path, nil, bytes.NewReader(body), "application/json", out)
}

func (c *Client) sendMultipart(ctx context.Context, method, path string, form *Multipart, out interface{}) error {
	body, contentType, err := form.Encode()
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, nil, body, contentType, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, "", nil)
}

// resource joins a collection path and an escaped id.
func resource(collection, id string, rest ...string) string {
	parts := append([]string{collection, url.PathEscape(id)}, rest...)
	return strings.Join(parts, "/")
}
