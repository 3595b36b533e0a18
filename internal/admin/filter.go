package admin

import (
	"strings"

	"github.com/kaifgrit/Rifakat/internal/domain"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// FilterProducts keeps products of category (AllCategories or "" keeps
// every category) whose name or brand contains search, ignoring case and
// surrounding space. The input order is kept.
func FilterProducts(products []domain.Product, category, search string) []domain.Product {
	search = strings.ToLower(strings.TrimSpace(search))

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && category != AllCategories && p.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.ProductName), search) &&
			!strings.Contains(strings.ToLower(p.Brand), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}
