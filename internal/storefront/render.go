package storefront

import (
	"fmt"
	"io"
	"strings"

	"github.com/kaifgrit/Rifakat/internal/domain"
)

// EmptyViewMessage is rendered when the filters leave no products.
const EmptyViewMessage = "No products found matching your filters."

// LoadErrorMessage is rendered when the products could not be fetched.
const LoadErrorMessage = "Could not load products. Please ensure the backend server is running and accessible."

// CountLabel returns "1 Product" or "n Products".
func CountLabel(n int) string {
	if n == 1 {
		return "1 Product"
	}
	return fmt.Sprintf("%d Products", n)
}

// RenderPage writes the page header, the description and the catalog view.
func RenderPage(w io.Writer, page Page, c *Catalog) error {
	if _, err := fmt.Fprintf(w, "%s\n%s\n\n", page.Header, PageDescription); err != nil {
		return err
	}
	if brands := c.Brands(); len(brands) > 0 {
		if _, err := fmt.Fprintf(w, "Brands: %s\nSort: %s\n\n", strings.Join(brands, ", "), c.Sort()); err != nil {
			return err
		}
	}
	return RenderView(w, c.View())
}

// RenderView writes the count label followed by one card per product in
// view order.
func RenderView(w io.Writer, view []domain.Product) error {
	if _, err := fmt.Fprintln(w, CountLabel(len(view))); err != nil {
		return err
	}
	if len(view) == 0 {
		_, err := fmt.Fprintln(w, EmptyViewMessage)
		return err
	}
	for i := range view {
		if err := RenderCard(w, NewCard(view[i])); err != nil {
			return err
		}
	}
	return nil
}

// RenderCard writes one card in its current selection state.
func RenderCard(w io.Writer, c *Card) error {
	p := c.Product()
	var b strings.Builder

	fmt.Fprintf(&b, "\n[%s] %s\n", p.ID, p.ProductName)
	if p.Brand != "" {
		fmt.Fprintf(&b, "  %s\n", p.Brand)
	}
	fmt.Fprintf(&b, "  ₹%s\n", FormatPrice(p.Price))

	swatches := c.Swatches()
	labels := make([]string, len(swatches))
	for i, s := range swatches {
		mark := " "
		if s.Active {
			mark = "*"
		}
		labels[i] = fmt.Sprintf("%s%d:%s(%s)", mark, s.Index, s.Label, s.Hex)
	}
	fmt.Fprintf(&b, "  Colors: %s\n", strings.Join(labels, " "))

	if hint := c.SizeHint(); hint != "" {
		fmt.Fprintf(&b, "  %s\n", hint)
	} else {
		fmt.Fprintf(&b, "  Sizes: %s\n", strings.Join(c.SizeOptions(), " "))
	}
	fmt.Fprintf(&b, "  Image: %s\n", c.MainImage())

	_, err := io.WriteString(w, b.String())
	return err
}
