package main

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/novathreads/storefront-backend/internal/cart"
	"github.com/novathreads/storefront-backend/internal/catalog"
	"github.com/novathreads/storefront-backend/internal/pricing"
)

var errEmptyCart = errors.New("your cart is empty")

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local shopping cart",
	}
	cmd.AddCommand(
		newCartAddCmd(a),
		newCartRemoveCmd(a),
		newCartRemoveProductCmd(a),
		newCartSetCmd(a),
		newCartShowCmd(a),
		newCartClearCmd(a),
	)
	return cmd
}

type variantFlags struct {
	size, color string
}

func (v *variantFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&v.size, "size", "", "selected size")
	cmd.Flags().StringVar(&v.color, "color", "", "selected color")
}

func (v variantFlags) key(productID string) cart.LineKey {
	return cart.LineKey{ProductID: productID, Size: v.size, Color: v.color}
}

// resolveVariant fills in the first listed size and color when none was
// chosen and rejects choices the product does not offer.
func resolveVariant(p *catalog.ProductDTO, v variantFlags) (variantFlags, error) {
	pick := func(kind, chosen string, options []string) (string, error) {
		if chosen == "" {
			if len(options) > 0 {
				return options[0], nil
			}
			return "", nil
		}
		if len(options) > 0 && !slices.Contains(options, chosen) {
			return "", fmt.Errorf("%s %q is not available for %s", kind, chosen, p.Name)
		}
		return chosen, nil
	}
	var err error
	if v.size, err = pick("size", v.size, p.Sizes); err != nil {
		return v, err
	}
	if v.color, err = pick("color", v.color, p.Colors); err != nil {
		return v, err
	}
	return v, nil
}

func newCartAddCmd(a *app) *cobra.Command {
	var (
		v   variantFlags
		qty int
	)
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product variant to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.api.GetProduct(ctx, args[0])
			if err != nil {
				return err
			}
			if !p.InStock {
				return fmt.Errorf("%s is out of stock", p.Name)
			}
			variant, err := resolveVariant(p, v)
			if err != nil {
				return err
			}

			c := a.cart(ctx)
			item := cart.Product{ID: p.ID.String(), Name: p.Name, Price: p.Price, ImageURL: p.ImageURL}
			if err := c.Add(ctx, item, qty, variant.size, variant.color); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d x %s (%s, %s). Cart: %d items, %s\n",
				qty, p.Name, variant.size, variant.color, c.TotalItems(), money(c.TotalPrice()))
			return nil
		},
	}
	v.register(cmd)
	cmd.Flags().IntVarP(&qty, "quantity", "q", 1, "quantity to add")
	return cmd
}

func newCartRemoveCmd(a *app) *cobra.Command {
	var v variantFlags
	cmd := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove one variant line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cart(cmd.Context())
			if err := c.Remove(cmd.Context(), v.key(args[0])); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), c.Lines())
			return nil
		},
	}
	v.register(cmd)
	return cmd
}

func newCartRemoveProductCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-product <product-id>",
		Short: "Remove every variant of a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.cart(cmd.Context())
			if err := c.RemoveProduct(cmd.Context(), args[0]); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), c.Lines())
			return nil
		},
	}
}

func newCartSetCmd(a *app) *cobra.Command {
	var v variantFlags
	cmd := &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a variant line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a whole number: %w", err)
			}
			c := a.cart(cmd.Context())
			if err := c.SetQuantity(cmd.Context(), v.key(args[0]), qty); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), c.Lines())
			return nil
		},
	}
	v.register(cmd)
	return cmd
}

func newCartShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart with shipping and tax",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := a.cart(cmd.Context())
			lines := c.Lines()
			printCart(cmd.OutOrStdout(), lines)
			if len(lines) > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
				printSummary(cmd.OutOrStdout(), pricing.Calculate(c.PricingLines()))
			}
			return nil
		},
	}
}

func newCartClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cart(cmd.Context()).Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
			return nil
		},
	}
}

func newCheckoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Review the order total (requires login)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, err := a.session.CurrentUser(ctx)
			if err != nil {
				return err
			}
			c := a.cart(ctx)
			if c.TotalItems() == 0 {
				return errEmptyCart
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Order for %s %s <%s>\n\n", user.FirstName, user.LastName, user.Email)
			printCart(out, c.Lines())
			fmt.Fprintln(out)
			printSummary(out, pricing.Calculate(c.PricingLines()))
			fmt.Fprintln(out, "\nCheckout functionality coming soon!")
			return nil
		},
	}
}
