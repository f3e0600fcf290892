package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/novathreads/storefront-backend/pkg/db/models"
	"github.com/novathreads/storefront-backend/pkg/enums"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
)

const unsplash = "https://images.unsplash.com/"

type seedProduct struct {
	name, description string
	price             string
	category          enums.ProductCategory
	sizes, colors     []string
	images            []string
	stock             int
	featured          bool
	rating            string
	reviews           int
}

var launchProducts = []seedProduct{
	{
		name:        "Classic Cotton T-Shirt",
		description: "Premium quality cotton t-shirt with a modern fit. Perfect for everyday wear, this versatile piece combines comfort with style.",
		price:       "29.99", category: enums.ProductCategoryMen,
		sizes:  []string{"S", "M", "L", "XL", "XXL"},
		colors: []string{"Black", "White", "Navy", "Gray"},
		images: []string{"photo-1521572163474-6864f9cf17ab", "photo-1583743814966-8936f5b7be1a"},
		stock:  150, featured: true, rating: "4.5", reviews: 128,
	},
	{
		name:        "Elegant Summer Dress",
		description: "Flowing summer dress with floral patterns. Lightweight fabric perfect for warm weather and special occasions.",
		price:       "79.99", category: enums.ProductCategoryWomen,
		sizes:  []string{"XS", "S", "M", "L"},
		colors: []string{"Floral Blue", "Floral Pink", "Solid White"},
		images: []string{"photo-1595777457583-95e059d581b8", "photo-1572804013309-59a88b7e92f1"},
		stock:  85, featured: true, rating: "4.8", reviews: 94,
	},
	{
		name:        "Leather Crossbody Bag",
		description: "Handcrafted genuine leather crossbody bag with adjustable strap. Features multiple compartments for organization.",
		price:       "129.99", category: enums.ProductCategoryAccessories,
		sizes:  []string{"One Size"},
		colors: []string{"Brown", "Black", "Tan"},
		images: []string{"photo-1590874103328-eac38a683ce7", "photo-1548036328-c9fa89d128fa"},
		stock:  45, rating: "4.7", reviews: 67,
	},
	{
		name:        "Premium Denim Jeans",
		description: "Classic fit denim jeans made from premium stretch denim. Comfortable, durable, and stylish for any occasion.",
		price:       "89.99", category: enums.ProductCategoryMen,
		sizes:  []string{"28", "30", "32", "34", "36", "38"},
		colors: []string{"Dark Blue", "Light Blue", "Black"},
		images: []string{"photo-1542272604-787c3835535d", "photo-1541099649105-f69ad21f3246"},
		stock:  120, featured: true, rating: "4.6", reviews: 203,
	},
	{
		name:        "Wool Blend Blazer",
		description: "Sophisticated wool blend blazer with a tailored fit. Perfect for professional settings and formal events.",
		price:       "199.99", category: enums.ProductCategoryWomen,
		sizes:  []string{"XS", "S", "M", "L", "XL"},
		colors: []string{"Black", "Navy", "Charcoal"},
		images: []string{"photo-1591369822096-ffd140ec948f", "photo-1594633313593-bab3825d0caf"},
		stock:  60, rating: "4.9", reviews: 45,
	},
	{
		name:        "Running Sneakers Pro",
		description: "High-performance running sneakers with advanced cushioning technology. Breathable mesh upper and responsive sole.",
		price:       "149.99", category: enums.ProductCategoryShoes,
		sizes:  []string{"7", "8", "9", "10", "11", "12"},
		colors: []string{"White/Blue", "Black/Red", "Gray/Green"},
		images: []string{"photo-1542291026-7eec264c27ff", "photo-1606107557195-0e29a4b5b4aa"},
		stock:  95, featured: true, rating: "4.7", reviews: 312,
	},
	{
		name:        "Cashmere Scarf",
		description: "Luxurious 100% cashmere scarf. Incredibly soft and warm, perfect for cold weather styling.",
		price:       "89.99", category: enums.ProductCategoryAccessories,
		sizes:  []string{"One Size"},
		colors: []string{"Burgundy", "Camel", "Navy", "Gray"},
		images: []string{"photo-1520903920243-00d872a2d1c9"},
		stock:  75, rating: "4.8", reviews: 89,
	},
	{
		name:        "Slim Fit Chinos",
		description: "Modern slim fit chinos in premium cotton twill. Versatile pants that work for both casual and smart-casual looks.",
		price:       "69.99", category: enums.ProductCategoryMen,
		sizes:  []string{"28", "30", "32", "34", "36"},
		colors: []string{"Khaki", "Navy", "Olive", "Black"},
		images: []string{"photo-1473966968600-fa801b869a1a"},
		stock:  110, rating: "4.4", reviews: 156,
	},
	{
		name:        "Silk Blouse",
		description: "Elegant silk blouse with delicate button details. Luxurious fabric with a flattering drape.",
		price:       "119.99", category: enums.ProductCategoryWomen,
		sizes:  []string{"XS", "S", "M", "L"},
		colors: []string{"Ivory", "Blush", "Black"},
		images: []string{"photo-1564257577-1f5b5d2f7e6e"},
		stock:  55, rating: "4.6", reviews: 72,
	},
	{
		name:        "Winter Parka Jacket",
		description: "Insulated winter parka with faux fur hood trim. Water-resistant outer shell keeps you warm and dry.",
		price:       "249.99", category: enums.ProductCategorySale,
		sizes:  []string{"S", "M", "L", "XL"},
		colors: []string{"Black", "Olive", "Navy"},
		images: []string{"photo-1539533018447-63fcce2678e3"},
		stock:  40, featured: true, rating: "4.9", reviews: 187,
	},
}

func (p seedProduct) model() *models.Product {
	images := make(models.StringList, 0, len(p.images))
	for _, img := range p.images {
		images = append(images, unsplash+img+"?w=500")
	}
	return &models.Product{
		Name:          p.name,
		Description:   p.description,
		Price:         decimal.RequireFromString(p.price),
		Category:      p.category,
		Sizes:         models.StringList(p.sizes),
		Colors:        models.StringList(p.colors),
		ImageURL:      images[0],
		Images:        images,
		InStock:       true,
		StockQuantity: p.stock,
		Featured:      p.featured,
		Rating:        decimal.RequireFromString(p.rating),
		ReviewCount:   p.reviews,
	}
}

// SeedIfEmpty inserts the launch catalog when no products exist and returns
// how many rows were written. Individual insert failures are collected and
// returned together after every product has been attempted.
func (s *service) SeedIfEmpty(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	if total > 0 {
		return 0, nil
	}

	var (
		inserted int
		errs     error
	)
	for _, p := range launchProducts {
		if _, err := s.repo.Create(ctx, p.model()); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("seed %q: %w", p.name, err))
			continue
		}
		inserted++
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"inserted": inserted, "attempted": len(launchProducts)})
	if errs != nil {
		s.logg.Error(logCtx, "catalog.seed_partial", errs)
		return inserted, errs
	}
	s.logg.Info(logCtx, "catalog.seeded")
	return inserted, nil
}
