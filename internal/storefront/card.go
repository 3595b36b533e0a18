package storefront

import (
	"fmt"
	"slices"

	"github.com/kaifgrit/Rifakat/internal/domain"
	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
)

// Display defaults for fields a product may leave empty.
const (
	PlaceholderImage  = "https://via.placeholder.com/400x400.png?text=No+Image"
	DefaultSwatchHex  = "#ffffff"
	DefaultColorName  = "Default"
	GenericBrand      = "Generic"
	SizeNotApplicable = "Not Applicable"
	NoSizesMessage    = "Sizes not available for this color"
)

var (
	// ErrSizeRequired is returned by ComposeOrder when the active color has
	// sizes and none is selected.
	ErrSizeRequired = apperrors.InvalidInput("Please select a size before purchasing.")
	// ErrNoSuchColor is returned for a color index outside the product.
	ErrNoSuchColor = apperrors.InvalidInput("No such color")
	// ErrNoSuchSize is returned for a size the active color does not offer.
	ErrNoSuchSize = apperrors.InvalidInput("Size not available for this color")
)

// Swatch is one color button on a card.
type Swatch struct {
	Index  int
	Label  string
	Hex    string
	Active bool
}

// Card is the selection state of one product card: the active color and
// the chosen size. Color 0 is active and no size is chosen initially.
// A Card has a single owner and is not safe for concurrent use.
type Card struct {
	product domain.Product
	color   int
	size    string
}

// NewCard creates a card for p.
func NewCard(p domain.Product) *Card {
	return &Card{product: p}
}

// Product returns the product shown on the card.
func (c *Card) Product() domain.Product { return c.product }

// ColorIndex returns the active color index.
func (c *Card) ColorIndex() int { return c.color }

// Size returns the chosen size, or "" when none is chosen.
func (c *Card) Size() string { return c.size }

// SelectColor makes color i active and clears the size selection. An index
// out of range leaves the card unchanged.
func (c *Card) SelectColor(i int) error {
	if i < 0 || i >= len(c.product.Colors) {
		return ErrNoSuchColor
	}
	c.color = i
	c.size = ""
	return nil
}

// SelectSize chooses a size offered by the active color.
func (c *Card) SelectSize(label string) error {
	if !slices.Contains(c.activeColor().Sizes, label) {
		return ErrNoSuchSize
	}
	c.size = label
	return nil
}

func (c *Card) activeColor() domain.ColorVariant {
	if c.color < len(c.product.Colors) {
		return c.product.Colors[c.color]
	}
	return domain.ColorVariant{}
}

// Images returns the images of the active color.
func (c *Card) Images() []string {
	return c.activeColor().ImageURLs
}

// MainImage returns the first image of the active color, or
// PlaceholderImage.
func (c *Card) MainImage() string {
	if images := c.Images(); len(images) > 0 {
		return images[0]
	}
	return PlaceholderImage
}

// SizeOptions returns the sizes of the active color.
func (c *Card) SizeOptions() []string {
	return c.activeColor().Sizes
}

// SizeHint is shown in place of the size options when there are none.
func (c *Card) SizeHint() string {
	if c.activeColor().HasSizes() {
		return ""
	}
	return NoSizesMessage
}

// Brand returns the brand to display, GenericBrand when absent.
func (c *Card) Brand() string {
	if c.product.Brand == "" {
		return GenericBrand
	}
	return c.product.Brand
}

// Swatches returns one swatch per color, in order.
func (c *Card) Swatches() []Swatch {
	out := make([]Swatch, len(c.product.Colors))
	for i, color := range c.product.Colors {
		s := Swatch{Index: i, Label: color.ColorName, Hex: color.ColorHexCode, Active: i == c.color}
		if s.Label == "" {
			s.Label = fmt.Sprintf("Color %d", i+1)
		}
		if s.Hex == "" {
			s.Hex = DefaultSwatchHex
		}
		out[i] = s
	}
	return out
}

// ComposeOrder snapshots the current selection into an Order. The card is
// not modified.
func (c *Card) ComposeOrder() (Order, error) {
	color := c.activeColor()

	size := c.size
	if size == "" {
		if color.HasSizes() {
			return Order{}, ErrSizeRequired
		}
		size = SizeNotApplicable
	}

	colorName := color.ColorName
	if colorName == "" {
		colorName = DefaultColorName
	}

	return Order{
		ProductName: c.product.ProductName,
		Brand:       c.Brand(),
		Category:    c.product.Category,
		Color:       colorName,
		Size:        size,
		Price:       c.product.Price,
		ImageURL:    c.MainImage(),
	}, nil
}
