package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/kaifgrit/Rifakat/internal/admin"
	"github.com/kaifgrit/Rifakat/internal/storefront"
)

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stdout)
	username := fs.String("u", "admin", "admin username")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	password := c.cfg.Password
	if password == "" {
		fmt.Fprint(c.stdout, "Password: ")
		line, err := bufio.NewReader(c.stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	token, err := c.admin.Login(ctx, *username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Logged in as %s until %s.\n", *username, token.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func (c *cli) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	fs.SetOutput(c.stdout)
	category := fs.String("category", admin.AllCategories, "category, or all")
	search := fs.String("search", "", "search name and brand")
	if ok, err := parseFlags(fs, args); !ok {
		return err
	}

	products, err := c.admin.Products(ctx)
	if err != nil {
		return err
	}
	products = admin.FilterProducts(products, *category, *search)
	if len(products) == 0 {
		fmt.Fprintln(c.stdout, "No products found for this filter.")
		return nil
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT NAME\tBRAND\tCATEGORY\tPRICE")
	for _, p := range products {
		brand := p.Brand
		if brand == "" {
			brand = "N/A"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t₹%s\n", p.ID, p.ProductName, brand, p.Category, storefront.FormatPrice(p.Price))
	}
	return tw.Flush()
}

func (c *cli) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete needs exactly one product id")
	}
	if err := c.admin.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Product deleted successfully!")
	return nil
}

func (c *cli) batchDelete(ctx context.Context, args []string) error {
	result, err := c.admin.BatchDelete(ctx, args)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, result.Message)
	return nil
}
