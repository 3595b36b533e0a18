// Package search keeps a full-text index of the catalog, fed by product
// events, and answers free-text product searches from it.
package search

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Sort orders for search results.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// Limits on the number of results per search.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Document is the indexed form of a product.
type Document struct {
	ID          string   `json:"id"`
	ProductName string   `json:"productName"`
	Brand       string   `json:"brand,omitempty"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	ColorNames  []string `json:"colorNames,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

// Query is a free-text search with optional exact filters.
type Query struct {
	Text     string
	Category string
	Brands   []string
	Sort     string
	Limit    int
}

// Normalize trims the text, applies the default sort and clamps Limit.
func (q Query) Normalize() (Query, error) {
	q.Text = strings.TrimSpace(q.Text)
	if q.Sort == "" {
		q.Sort = SortRelevance
	}
	if !slices.Contains([]string{SortRelevance, SortPriceAsc, SortPriceDesc}, q.Sort) {
		return q, fmt.Errorf("sort must be one of %s, %s, %s", SortRelevance, SortPriceAsc, SortPriceDesc)
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultLimit
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}
	return q, nil
}

// Result is one page of matches.
type Result struct {
	Products []Document `json:"products"`
	Total    int        `json:"total"`
}

// Engine stores documents and searches them.
type Engine interface {
	Index(ctx context.Context, doc *Document) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q Query) (*Result, error)
}
