package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kaifgrit/Rifakat/internal/domain"
	"github.com/kaifgrit/Rifakat/pkg/httpclient"
)

// Client reads the public product endpoints of the catalog API.
type Client struct {
	baseURL string
	http    httpclient.Doer
}

// NewClient creates a client for the API rooted at baseURL, e.g.
// "http://localhost:5000".
func NewClient(baseURL string, doer httpclient.Doer) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: doer}
}

// ListProducts returns the products of category in the order the API
// returns them. An empty category lists everything.
func (c *Client) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	u := c.baseURL + "/api/products"
	if category != "" {
		u += "?" + url.Values{"category": {category}}.Encode()
	}

	var products []domain.Product
	if err := c.get(ctx, u, &products); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// GetProduct returns a single product.
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, c.baseURL+"/api/products/"+url.PathEscape(id), &p); err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

func (c *Client) get(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call catalog API: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
