package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/novathreads/storefront-backend/internal/cart"
	"github.com/novathreads/storefront-backend/internal/catalog"
	"github.com/novathreads/storefront-backend/internal/pricing"
	"github.com/novathreads/storefront-backend/pkg/pagination"
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printProducts(w io.Writer, products []catalog.ProductDTO) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tSTOCK")
	for _, p := range products {
		stock := "in stock"
		if !p.InStock {
			stock = "sold out"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, money(p.Price), p.Rating.StringFixed(1), stock)
	}
	_ = tw.Flush()
}

func printPagination(w io.Writer, meta pagination.Meta) {
	fmt.Fprintf(w, "Page %d of %d (%d total)\n", meta.Page, meta.Pages, meta.Total)
}

func printProduct(w io.Writer, p *catalog.ProductDTO) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID\t%s\n", p.ID)
	fmt.Fprintf(tw, "Name\t%s\n", p.Name)
	fmt.Fprintf(tw, "Category\t%s\n", p.Category)
	fmt.Fprintf(tw, "Price\t%s\n", money(p.Price))
	fmt.Fprintf(tw, "Sizes\t%s\n", strings.Join(p.Sizes, ", "))
	fmt.Fprintf(tw, "Colors\t%s\n", strings.Join(p.Colors, ", "))
	fmt.Fprintf(tw, "Rating\t%s (%d reviews)\n", p.Rating.StringFixed(1), p.ReviewCount)
	fmt.Fprintf(tw, "Stock\t%d\n", p.StockQuantity)
	fmt.Fprintf(tw, "Featured\t%t\n", p.Featured)
	fmt.Fprintf(tw, "Description\t%s\n", p.Description)
	_ = tw.Flush()
}

func printCart(w io.Writer, lines []cart.Line) {
	if len(lines) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tSIZE\tCOLOR\tQTY\tUNIT\tLINE")
	for _, l := range lines {
		lineTotal := l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			l.Product.ID, l.Product.Name, l.SelectedSize, l.SelectedColor, l.Quantity, money(l.Product.Price), money(lineTotal))
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, s pricing.Summary) {
	tw := newTable(w)
	fmt.Fprintf(tw, "Subtotal\t%s\n", money(s.Subtotal))
	if s.Shipping.IsZero() {
		fmt.Fprintln(tw, "Shipping\tFREE")
	} else {
		fmt.Fprintf(tw, "Shipping\t%s\n", money(s.Shipping))
	}
	fmt.Fprintf(tw, "Tax\t%s\n", money(s.Tax))
	fmt.Fprintf(tw, "Total\t%s\n", money(s.GrandTotal))
	_ = tw.Flush()
	if !s.Shipping.IsZero() {
		remaining := pricing.FreeShippingThreshold.Sub(s.Subtotal)
		if remaining.IsPositive() {
			fmt.Fprintf(w, "Add %s more for free shipping.\n", money(remaining.Add(decimal.New(1, -2))))
		}
	}
}
