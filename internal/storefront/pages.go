package storefront

import (
	"strings"

	"github.com/kaifgrit/Rifakat/pkg/slug"
)

// PageDescription is shown under every category page header.
const PageDescription = "Filter and sort to find the perfect pair for your style."

// Page is a storefront category page.
type Page struct {
	Slug     string
	Category string
	Header   string
	keyword  string
}

var pages = []Page{
	{Slug: "sneakers", Category: "Sneakers", Header: "Our Sneaker Collection", keyword: "sneaker"},
	{Slug: "boots", Category: "Boots", Header: "Our Boot Collection", keyword: "boot"},
	{Slug: "sandals", Category: "Sandals", Header: "Our Sandal Collection", keyword: "sandal"},
	{Slug: "slippers", Category: "Slippers", Header: "Our Slipper Collection", keyword: "slipper"},
	{Slug: "formal-shoes", Category: "Formal Shoes", Header: "Our Formal Shoe Collection", keyword: "formal"},
}

// Pages returns the category pages in menu order.
func Pages() []Page {
	return append([]Page(nil), pages...)
}

// PageFor finds the page for a page title or slug such as "Sneakers",
// "formal-shoes" or "Boots | Rifakat". The first page whose keyword occurs
// in the slugged title wins.
func PageFor(title string) (Page, bool) {
	s := slug.Generate(title)
	if s == "" {
		return Page{}, false
	}
	for _, p := range pages {
		if strings.Contains(s, p.keyword) {
			return p, true
		}
	}
	return Page{}, false
}
