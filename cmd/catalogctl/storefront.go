package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/kaifgrit/Rifakat/internal/storefront"
)

func (c *cli) browse(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	fs.SetOutput(c.stdout)
	brands := fs.String("brand", "", "comma separated brands to show")
	sortKey := fs.String("sort", string(storefront.SortDefault), "default, price-asc, price-desc, brand-asc or brand-desc")
	if ok, err := parseFlags(fs, reorder(args)); !ok {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("browse needs a page: %s", pageSlugs())
	}

	page, ok := storefront.PageFor(fs.Arg(0))
	if !ok {
		return fmt.Errorf("unknown page %q, want one of %s", fs.Arg(0), pageSlugs())
	}
	key, err := storefront.ParseSortKey(*sortKey)
	if err != nil {
		return err
	}

	catalog := storefront.NewCatalog(c.shop)
	if err := catalog.Refresh(ctx, page.Category); err != nil {
		fmt.Fprintln(c.stdout, storefront.LoadErrorMessage)
		return err
	}
	catalog.SetSort(key)
	if *brands != "" {
		catalog.SetBrands(splitList(*brands)...)
	}
	return storefront.RenderPage(c.stdout, page, catalog)
}

func (c *cli) order(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	fs.SetOutput(c.stdout)
	color := fs.Int("color", 0, "color index as shown by browse")
	size := fs.String("size", "", "size label")
	open := fs.Bool("open", false, "open the link in a browser")
	if ok, err := parseFlags(fs, reorder(args)); !ok {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("order needs a product id")
	}

	product, err := c.shop.GetProduct(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	card := storefront.NewCard(*product)
	if err := card.SelectColor(*color); err != nil {
		return err
	}
	if *size != "" {
		if err := card.SelectSize(*size); err != nil {
			return err
		}
	}
	if err := storefront.RenderCard(c.stdout, card); err != nil {
		return err
	}

	opener := c.opener
	if *open {
		opener = browserOpener{fallback: c.opener}
	}
	if _, err := storefront.PlaceOrder(card, c.cfg.OrderPhone, opener); err != nil {
		return err
	}
	return nil
}

// printOpener shows the link instead of opening it.
type printOpener struct{ w io.Writer }

func (p printOpener) Open(url string) {
	fmt.Fprintf(p.w, "\nOrder on WhatsApp:\n%s\n", url)
}

// browserOpener starts the platform's URL handler without waiting for it.
type browserOpener struct{ fallback storefront.Opener }

func (b browserOpener) Open(url string) {
	name, args := "xdg-open", []string{url}
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler", url}
	}
	if err := exec.Command(name, args...).Start(); err != nil { // #nosec G204 -- fixed handler, URL as argument
		b.fallback.Open(url)
	}
}

func pageSlugs() string {
	var slugs []string
	for _, p := range storefront.Pages() {
		slugs = append(slugs, p.Slug)
	}
	return strings.Join(slugs, ", ")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// reorder moves flags ahead of positional arguments so both
// "order p1 -size 8" and "order -size 8 p1" parse.
func reorder(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if !strings.Contains(a, "=") && i+1 < len(args) && !isBoolFlag(a) {
			flags = append(flags, args[i+1])
			i++
		}
	}
	return append(flags, positional...)
}

func isBoolFlag(a string) bool {
	name := strings.TrimLeft(a, "-")
	return name == "open" || name == "h" || name == "help"
}
