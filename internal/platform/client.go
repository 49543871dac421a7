// Package platform talks to the remote Gamingty platform API, which owns the
// server-side copy of every user's wishlist.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/gamingty/storefront/pkg/errors"
	"github.com/gamingty/storefront/pkg/httpclient"
)

// envelope is the platform API response shape. A status other than "success"
// means the request was processed and rejected; data carries the full
// wishlist map after any successful read or mutation.
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

const statusSuccess = "success"

// Config holds platform API client configuration.
type Config struct {
	BaseURL string
}

// Client calls the platform wishlist endpoints through a circuit-breaker
// protected HTTP client. Every method returns the server's wishlist payload
// verbatim; normalization happens in the domain layer.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a platform API client.
func NewClient(cfg Config, hc *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		http:    hc,
		baseURL: cfg.BaseURL,
		logger:  logger,
	}
}

// GetWishlist fetches the caller's full wishlist.
func (c *Client) GetWishlist(ctx context.Context, token string) (json.RawMessage, error) {
	return c.call(ctx, http.MethodGet, "/api/wishlist", token, nil)
}

// AddProduct saves a product into the given category.
func (c *Client) AddProduct(ctx context.Context, token, productID, category string) (json.RawMessage, error) {
	body := map[string]string{"productId": productID, "category": category}
	return c.call(ctx, http.MethodPost, "/api/wishlist/product", token, body)
}

// RemoveProduct deletes a product from the given category.
func (c *Client) RemoveProduct(ctx context.Context, token, category, productID string) (json.RawMessage, error) {
	body := map[string]string{"category": category, "productId": productID}
	return c.call(ctx, http.MethodPost, "/api/wishlist/product/remove", token, body)
}

// MoveProduct relocates a product between categories.
func (c *Client) MoveProduct(ctx context.Context, token, productID, from, to string) (json.RawMessage, error) {
	body := map[string]string{"productId": productID, "from": from, "to": to}
	return c.call(ctx, http.MethodPost, "/api/wishlist/product/move", token, body)
}

// AddCategory creates a new empty category.
func (c *Client) AddCategory(ctx context.Context, token, name string) (json.RawMessage, error) {
	body := map[string]string{"name": name}
	return c.call(ctx, http.MethodPost, "/api/wishlist/category", token, body)
}

// EditCategory renames a category.
func (c *Client) EditCategory(ctx context.Context, token, oldName, newName string) (json.RawMessage, error) {
	body := map[string]string{"oldName": oldName, "newName": newName}
	return c.call(ctx, http.MethodPost, "/api/wishlist/category/edit", token, body)
}

// DeleteCategory removes a category and its contents.
func (c *Client) DeleteCategory(ctx context.Context, token, name string) (json.RawMessage, error) {
	body := map[string]string{"name": name}
	return c.call(ctx, http.MethodPost, "/api/wishlist/category/delete", token, body)
}

// call performs one platform request and unwraps the response envelope.
// Transport failures (including an open breaker) map to UPSTREAM_UNAVAILABLE;
// a non-success envelope maps to REMOTE_REJECTED carrying the server message.
func (c *Client) call(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create platform request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "platform request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.UpstreamUnavailable(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.UpstreamUnavailable(fmt.Errorf("read platform response: %w", err))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.UpstreamUnavailable(fmt.Errorf("decode platform response: %w", err))
	}

	if env.Status != statusSuccess {
		c.logger.InfoContext(ctx, "platform rejected request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("http_status", resp.StatusCode),
			slog.String("message", env.Message),
		)
		return nil, apperrors.RemoteRejected(env.Message)
	}

	return env.Data, nil
}
