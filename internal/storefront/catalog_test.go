package storefront

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaifgrit/Rifakat/internal/domain"
)

type stubLister struct {
	products []domain.Product
	err      error
	calls    []string
}

func (s *stubLister) ListProducts(_ context.Context, category string) ([]domain.Product, error) {
	s.calls = append(s.calls, category)
	return s.products, s.err
}

func product(id, brand string, price float64) domain.Product {
	return domain.Product{
		ID:          id,
		ProductName: "Shoe " + id,
		Brand:       brand,
		Price:       price,
		Category:    "Sneakers",
		Colors:      []domain.ColorVariant{{ColorName: "Black", ImageURLs: []string{"https://img/" + id}}},
	}
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func sneakers() []domain.Product {
	return []domain.Product{
		product("n1", "Nike", 3000),
		product("a1", "Adidas", 2000),
		product("x1", "", 1500),
		product("n2", "Nike", 1000),
	}
}

func TestBrandFacet(t *testing.T) {
	assert.Equal(t, []string{"Adidas", "Nike", "Other"}, BrandFacet(sneakers()))
	assert.Empty(t, BrandFacet(nil))
}

func TestApplyView_Sorts(t *testing.T) {
	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortDefault, []string{"n1", "a1", "x1", "n2"}},
		{SortPriceAsc, []string{"n2", "x1", "a1", "n1"}},
		{SortPriceDesc, []string{"n1", "a1", "x1", "n2"}},
		{SortBrandAsc, []string{"a1", "n1", "n2", "x1"}},
		{SortBrandDesc, []string{"x1", "n1", "n2", "a1"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(ApplyView(sneakers(), nil, tt.key)))
		})
	}
}

func TestApplyView_BrandFilter(t *testing.T) {
	in := sneakers()

	got := ApplyView(in, []string{"Nike", "Other"}, SortPriceAsc)

	assert.Equal(t, []string{"n2", "x1", "n1"}, ids(got))
	assert.Equal(t, []string{"n1", "a1", "x1", "n2"}, ids(in), "input must not be reordered")
	assert.Empty(t, ApplyView(in, []string{"Puma"}, SortDefault))
}

func TestApplyView_BrandSortIsCaseSensitive(t *testing.T) {
	in := []domain.Product{product("l", "asics", 1), product("u", "Bata", 1)}

	assert.Equal(t, []string{"u", "l"}, ids(ApplyView(in, nil, SortBrandAsc)))
}

func TestCatalog_Scenario(t *testing.T) {
	lister := &stubLister{products: sneakers()}
	c := NewCatalog(lister)

	require.NoError(t, c.Refresh(context.Background(), "Sneakers"))
	assert.Equal(t, []string{"Sneakers"}, lister.calls)
	assert.Equal(t, "Sneakers", c.Category())
	assert.Equal(t, []string{"Adidas", "Nike", "Other"}, c.Brands())
	assert.Len(t, c.View(), 4)

	c.SetBrands("Nike")
	assert.Equal(t, []string{"n1", "n2"}, ids(c.View()))

	c.SetSort(SortPriceAsc)
	assert.Equal(t, []string{"n2", "n1"}, ids(c.View()))

	c.Clear()
	assert.Equal(t, SortDefault, c.Sort())
	assert.Equal(t, []string{"n1", "a1", "x1", "n2"}, ids(c.View()))
	assert.Len(t, lister.calls, 1, "filtering must not refetch")
}

func TestCatalog_NikePriceAscScenario(t *testing.T) {
	lister := &stubLister{products: []domain.Product{
		product("s1", "Nike", 2000),
		product("s2", "Adidas", 1500),
		product("s3", "Nike", 3000),
	}}
	c := NewCatalog(lister)
	require.NoError(t, c.Refresh(context.Background(), "Sneakers"))

	c.SetBrands("Nike")
	c.SetSort(SortPriceAsc)

	view := c.View()
	prices := make([]float64, len(view))
	for i, p := range view {
		prices[i] = p.Price
	}
	assert.Equal(t, []float64{2000, 3000}, prices)

	var buf bytes.Buffer
	require.NoError(t, RenderView(&buf, view))
	assert.True(t, strings.HasPrefix(buf.String(), "2 Products\n"))
}

func TestApplyView_Deterministic(t *testing.T) {
	in := []domain.Product{
		product("a", "Nike", 2000),
		product("b", "Adidas", 1500),
		product("c", "Nike", 2000),
		product("d", "", 1500),
	}

	for _, key := range SortKeys {
		first := ApplyView(in, nil, key)
		second := ApplyView(in, nil, key)
		assert.Equal(t, ids(first), ids(second), string(key))
	}

	asc := ids(ApplyView(in[:2], nil, SortPriceAsc))
	desc := ids(ApplyView(in[:2], nil, SortPriceDesc))
	assert.Equal(t, []string{"b", "a"}, asc)
	assert.Equal(t, []string{"a", "b"}, desc)
}

func TestCatalog_RefreshKeepsSortAndClearsBrands(t *testing.T) {
	lister := &stubLister{products: sneakers()}
	c := NewCatalog(lister)
	require.NoError(t, c.Refresh(context.Background(), "Sneakers"))
	c.SetBrands("Adidas")
	c.SetSort(SortPriceDesc)

	require.NoError(t, c.Refresh(context.Background(), "Sneakers"))

	assert.Equal(t, SortPriceDesc, c.Sort())
	assert.Equal(t, []string{"n1", "a1", "x1", "n2"}, ids(c.View()))
}

func TestCatalog_RefreshFailureKeepsState(t *testing.T) {
	lister := &stubLister{products: sneakers()}
	c := NewCatalog(lister)
	require.NoError(t, c.Refresh(context.Background(), "Sneakers"))

	lister.err = errors.New("connection refused")
	lister.products = nil
	err := c.Refresh(context.Background(), "Boots")

	require.Error(t, err)
	assert.Equal(t, "Sneakers", c.Category())
	assert.Len(t, c.View(), 4)
	assert.Equal(t, []string{"Adidas", "Nike", "Other"}, c.Brands())
}

func TestParseSortKey(t *testing.T) {
	for _, s := range []string{"", "default", "price-asc", "PRICE-DESC", " brand-asc ", "brand-desc"} {
		_, err := ParseSortKey(s)
		assert.NoError(t, err, s)
	}

	key, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortDefault, key)

	_, err = ParseSortKey("newest")
	assert.ErrorContains(t, err, "unknown sort")
}
