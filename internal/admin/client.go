package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/kaifgrit/Rifakat/internal/auth"
	"github.com/kaifgrit/Rifakat/internal/domain"
	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
	"github.com/kaifgrit/Rifakat/pkg/httpclient"
)

var (
	// ErrSessionExpired is returned when the API rejects the stored token.
	// The token has been cleared by then.
	ErrSessionExpired = apperrors.Unauthorized("Your session has expired. Please log in again.")
	// ErrNotLoggedIn is returned when no token is stored.
	ErrNotLoggedIn = apperrors.Unauthorized("Not logged in. Please log in first.")
	// ErrNoSelection is returned by BatchDelete for an empty id list.
	ErrNoSelection = apperrors.InvalidInput("Please select products to delete.")
)

// BatchResult is the API's answer to a batch delete.
type BatchResult struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

// Client performs the dashboard operations against the catalog API.
type Client struct {
	baseURL string
	http    httpclient.Doer
	tokens  TokenStore
	logger  *slog.Logger
}

// NewClient creates a dashboard client for the API rooted at baseURL.
func NewClient(baseURL string, doer httpclient.Doer, tokens TokenStore, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		tokens:  tokens,
		logger:  logger,
	}
}

// Login exchanges the admin credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, username, password string) (*auth.Token, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, fmt.Errorf("marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call catalog API: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp)
	}
	defer resp.Body.Close()

	var token auth.Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if err := c.tokens.Save(token.Token); err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "logged in", slog.String("username", username), slog.Time("expires_at", token.ExpiresAt))
	return &token, nil
}

// Logout forgets the stored token.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// Products lists every product.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// Delete removes one product and its images.
func (c *Client) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	c.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id))
	return nil
}

// BatchDelete removes the products with the given ids.
func (c *Client) BatchDelete(ctx context.Context, ids []string) (*BatchResult, error) {
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}

	var result BatchResult
	if err := c.do(ctx, http.MethodDelete, "/api/products/batch", map[string][]string{"ids": ids}, &result); err != nil {
		return nil, fmt.Errorf("delete %d products: %w", len(ids), err)
	}
	c.logger.InfoContext(ctx, "products deleted",
		slog.Int("requested", len(ids)),
		slog.Int64("deleted", result.DeletedCount),
	)
	return &result, nil
}

// do sends an authenticated request and decodes a 2xx body into dst when
// dst is not nil. 401 and 403 clear the stored token.
func (c *Client) do(ctx context.Context, method, path string, in, dst any) error {
	token, err := c.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNotLoggedIn
	}

	var body io.Reader = http.NoBody
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call catalog API: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		apiErr := httpclient.ParseResponseError(resp)
		c.logger.WarnContext(ctx, "session rejected, clearing token",
			slog.Int("status", resp.StatusCode),
			slog.String("error", apiErr.Error()),
		)
		if err := c.tokens.Clear(); err != nil {
			c.logger.WarnContext(ctx, "failed to clear token", slog.String("error", err.Error()))
		}
		return ErrSessionExpired
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return httpclient.ParseResponseError(resp)
	}
	defer resp.Body.Close()

	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
