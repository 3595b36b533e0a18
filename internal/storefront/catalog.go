package storefront

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kaifgrit/Rifakat/internal/domain"
)

// SortKey orders a catalog view.
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortBrandAsc  SortKey = "brand-asc"
	SortBrandDesc SortKey = "brand-desc"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortDefault, SortPriceAsc, SortPriceDesc, SortBrandAsc, SortBrandDesc}

// ParseSortKey accepts any of SortKeys. An empty string is SortDefault.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortDefault, nil
	}
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(SortKeys, key) {
		return "", fmt.Errorf("unknown sort %q", s)
	}
	return key, nil
}

// ProductLister fetches the products of one category.
type ProductLister interface {
	ListProducts(ctx context.Context, category string) ([]domain.Product, error)
}

// Catalog is the state of one category page: the unfiltered products as
// fetched, the brand facet and the current brand and sort selection.
// A Catalog has a single owner and is not safe for concurrent use.
type Catalog struct {
	source   ProductLister
	category string
	products []domain.Product
	brands   []string
	selected []string
	sort     SortKey
	view     []domain.Product
}

// NewCatalog creates an empty catalog backed by source.
func NewCatalog(source ProductLister) *Catalog {
	return &Catalog{source: source, sort: SortDefault}
}

// Refresh fetches category and replaces the product set. The brand facet
// is recomputed and the brand selection cleared; the sort key is kept.
// On error the previous state is left as it was.
func (c *Catalog) Refresh(ctx context.Context, category string) error {
	products, err := c.source.ListProducts(ctx, category)
	if err != nil {
		return err
	}
	c.category = category
	c.products = products
	c.brands = BrandFacet(products)
	c.selected = nil
	c.apply()
	return nil
}

// Category returns the category of the last successful Refresh.
func (c *Catalog) Category() string { return c.category }

// Brands returns the brand facet.
func (c *Catalog) Brands() []string { return c.brands }

// Sort returns the current sort key.
func (c *Catalog) Sort() SortKey { return c.sort }

// SetBrands selects brands and re-applies the view. No brands means no
// brand filter.
func (c *Catalog) SetBrands(brands ...string) {
	c.selected = append([]string(nil), brands...)
	c.apply()
}

// SetSort changes the sort key and re-applies the view.
func (c *Catalog) SetSort(key SortKey) {
	c.sort = key
	c.apply()
}

// Clear resets the brand selection and the sort key.
func (c *Catalog) Clear() {
	c.selected = nil
	c.sort = SortDefault
	c.apply()
}

// View returns the filtered and sorted products.
func (c *Catalog) View() []domain.Product { return c.view }

func (c *Catalog) apply() {
	c.view = ApplyView(c.products, c.selected, c.sort)
}

// BrandFacet returns the distinct brands of products, with domain.BrandOther
// standing in for products without one, sorted.
func BrandFacet(products []domain.Product) []string {
	brands := make([]string, 0, len(products))
	for i := range products {
		brands = append(brands, products[i].BrandOrOther())
	}
	slices.Sort(brands)
	return slices.Compact(brands)
}

// ApplyView filters products to brands (none selected keeps all) and sorts
// the result by key. Equal elements keep their fetched order. products is
// not modified.
func ApplyView(products []domain.Product, brands []string, key SortKey) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if len(brands) == 0 || slices.Contains(brands, p.BrandOrOther()) {
			out = append(out, p)
		}
	}

	switch key {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return cmp.Compare(b.Price, a.Price) })
	case SortBrandAsc:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return strings.Compare(a.BrandOrOther(), b.BrandOrOther())
		})
	case SortBrandDesc:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return strings.Compare(b.BrandOrOther(), a.BrandOrOther())
		})
	}
	return out
}
