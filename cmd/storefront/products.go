package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/novathreads/storefront-backend/internal/catalog"
	"github.com/novathreads/storefront-backend/pkg/client"
	"github.com/novathreads/storefront-backend/pkg/enums"
)

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "Browse and administer the catalog",
	}
	cmd.AddCommand(
		newProductsListCmd(a),
		newProductsFeaturedCmd(a),
		newProductsGetCmd(a),
		newProductsCreateCmd(a),
		newProductsUpdateCmd(a),
		newProductsDeleteCmd(a),
	)
	return cmd
}

func newProductsListCmd(a *app) *cobra.Command {
	var (
		q        client.ProductQuery
		featured bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products with optional filters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("featured") {
				q.Featured = &featured
			}
			res, err := a.api.ListProducts(cmd.Context(), q)
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), res.Products)
			printPagination(cmd.OutOrStdout(), res.Pagination)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&q.Category, "category", "", "category filter ("+categoryList()+")")
	f.BoolVar(&featured, "featured", false, "only featured (or, with =false, only non-featured) products")
	f.StringVarP(&q.Search, "search", "s", "", "search terms matched against name and description")
	f.StringVar(&q.Sort, "sort", "", "sort field ("+strings.Join(catalog.SortFields(), ", ")+")")
	f.StringVar(&q.Order, "order", "", "sort order (asc or desc)")
	f.IntVar(&q.Page, "page", 0, "page number")
	f.IntVar(&q.Limit, "limit", 0, "page size")
	return cmd
}

func newProductsFeaturedCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "featured",
		Short: "Show the highest rated featured products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := a.api.FeaturedProducts(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of products")
	return cmd
}

func newProductsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.api.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printProduct(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

// productFlags collects the writable product fields shared by create and
// update.
type productFlags struct {
	name, description, category, imageURL string
	price, rating                         string
	sizes, colors, images                 []string
	stock, reviews                        int
	featured, inStock                     bool
}

func (pf *productFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&pf.name, "name", "", "product name")
	f.StringVar(&pf.description, "description", "", "product description")
	f.StringVar(&pf.category, "category", "", "category ("+categoryList()+")")
	f.StringVar(&pf.imageURL, "image-url", "", "primary image URL")
	f.StringVar(&pf.price, "price", "", "unit price, e.g. 29.99")
	f.StringVar(&pf.rating, "rating", "", "rating between 0 and 5")
	f.StringSliceVar(&pf.sizes, "sizes", nil, "available sizes")
	f.StringSliceVar(&pf.colors, "colors", nil, "available colors")
	f.StringSliceVar(&pf.images, "images", nil, "additional image URLs")
	f.IntVar(&pf.stock, "stock", 0, "stock quantity")
	f.IntVar(&pf.reviews, "reviews", 0, "review count")
	f.BoolVar(&pf.featured, "featured", false, "feature on the home page")
	f.BoolVar(&pf.inStock, "in-stock", true, "whether the product can be bought")
}

func parseDecimalFlag(name, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}

func (pf *productFlags) createInput(cmd *cobra.Command) (catalog.CreateProductInput, error) {
	price, err := parseDecimalFlag("price", pf.price)
	if err != nil {
		return catalog.CreateProductInput{}, err
	}
	rating, err := parseDecimalFlag("rating", pf.rating)
	if err != nil {
		return catalog.CreateProductInput{}, err
	}
	input := catalog.CreateProductInput{
		Name:          pf.name,
		Description:   pf.description,
		Price:         price,
		Category:      enums.ProductCategory(pf.category),
		Sizes:         pf.sizes,
		Colors:        pf.colors,
		ImageURL:      pf.imageURL,
		Images:        pf.images,
		StockQuantity: pf.stock,
		Featured:      pf.featured,
		Rating:        rating,
		ReviewCount:   pf.reviews,
	}
	if cmd.Flags().Changed("in-stock") {
		inStock := pf.inStock
		input.InStock = &inStock
	}
	return input, nil
}

// updateInput includes only the flags given on the command line.
func (pf *productFlags) updateInput(cmd *cobra.Command) (catalog.UpdateProductInput, error) {
	var input catalog.UpdateProductInput
	changed := cmd.Flags().Changed
	var err error

	if changed("name") {
		input.Name = &pf.name
	}
	if changed("description") {
		input.Description = &pf.description
	}
	if changed("category") {
		c := enums.ProductCategory(pf.category)
		input.Category = &c
	}
	if changed("image-url") {
		input.ImageURL = &pf.imageURL
	}
	if changed("price") {
		if input.Price, err = parseDecimalFlag("price", pf.price); err != nil {
			return input, err
		}
	}
	if changed("rating") {
		if input.Rating, err = parseDecimalFlag("rating", pf.rating); err != nil {
			return input, err
		}
	}
	if changed("sizes") {
		input.Sizes = &pf.sizes
	}
	if changed("colors") {
		input.Colors = &pf.colors
	}
	if changed("images") {
		input.Images = &pf.images
	}
	if changed("stock") {
		input.StockQuantity = &pf.stock
	}
	if changed("reviews") {
		input.ReviewCount = &pf.reviews
	}
	if changed("featured") {
		input.Featured = &pf.featured
	}
	if changed("in-stock") {
		input.InStock = &pf.inStock
	}
	return input, nil
}

func newProductsCreateCmd(a *app) *cobra.Command {
	var pf productFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.RequireAdmin(cmd.Context()); err != nil {
				return err
			}
			input, err := pf.createInput(cmd)
			if err != nil {
				return err
			}
			p, err := a.api.CreateProduct(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Product created successfully")
			printProduct(cmd.OutOrStdout(), p)
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

func newProductsUpdateCmd(a *app) *cobra.Command {
	var pf productFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Patch a product (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.RequireAdmin(cmd.Context()); err != nil {
				return err
			}
			input, err := pf.updateInput(cmd)
			if err != nil {
				return err
			}
			p, err := a.api.UpdateProduct(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Product updated successfully")
			printProduct(cmd.OutOrStdout(), p)
			return nil
		},
	}
	pf.register(cmd)
	return cmd
}

func newProductsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.RequireAdmin(cmd.Context()); err != nil {
				return err
			}
			if err := a.api.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Product deleted successfully")
			return nil
		},
	}
}

func categoryList() string {
	cats := enums.ProductCategories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}
