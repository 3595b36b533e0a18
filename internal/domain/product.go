package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
)

// BrandOther is the facet label used for products without a brand.
const BrandOther = "Other"

// Product is a catalog entry. Every product has at least one color and every
// color has at least one image.
type Product struct {
	ID          string         `json:"id"`
	ProductName string         `json:"productName"`
	Brand       string         `json:"brand,omitempty"`
	Price       float64        `json:"price"`
	Category    string         `json:"category"`
	Colors      []ColorVariant `json:"colors"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// ColorVariant is one purchasable color of a product.
type ColorVariant struct {
	ColorName    string   `json:"colorName,omitempty"`
	ColorHexCode string   `json:"colorHexCode,omitempty"`
	ImageURLs    []string `json:"imageUrls"`
	Sizes        []string `json:"sizes,omitempty"`
}

// HasSizes reports whether buying this color requires picking a size.
func (c ColorVariant) HasSizes() bool {
	return len(c.Sizes) > 0
}

// BrandOrOther returns the brand, or BrandOther when the product has none.
func (p *Product) BrandOrOther() string {
	if p.Brand == "" {
		return BrandOther
	}
	return p.Brand
}

// ImageURLs returns every image URL across all colors, in color order.
func (p *Product) ImageURLs() []string {
	var urls []string
	for _, c := range p.Colors {
		urls = append(urls, c.ImageURLs...)
	}
	return urls
}

// Validate enforces the stored-record constraints. All violations are
// collected into a single "Validation failed" error.
func (p *Product) Validate() error {
	var msgs []string
	if strings.TrimSpace(p.ProductName) == "" {
		msgs = append(msgs, "productName is required")
	}
	if p.Price <= 0 {
		msgs = append(msgs, fmt.Sprintf("price must be a positive number, got %v", p.Price))
	}
	if strings.TrimSpace(p.Category) == "" {
		msgs = append(msgs, "category is required")
	}
	if len(p.Colors) == 0 {
		msgs = append(msgs, "colors must contain at least one color")
	}
	for i, c := range p.Colors {
		if len(c.ImageURLs) == 0 {
			msgs = append(msgs, fmt.Sprintf("colors[%d].imageUrls must contain at least one image", i))
		}
		for j, u := range c.ImageURLs {
			if !isAbsoluteURL(u) {
				msgs = append(msgs, fmt.Sprintf("colors[%d].imageUrls[%d] must be an absolute URL", i, j))
			}
		}
		for j, s := range c.Sizes {
			if strings.TrimSpace(s) == "" {
				msgs = append(msgs, fmt.Sprintf("colors[%d].sizes[%d] must not be blank", i, j))
			}
		}
	}
	if len(msgs) > 0 {
		return apperrors.Validation(msgs...)
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
