package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/novathreads/storefront-backend/pkg/db/models"
	"github.com/novathreads/storefront-backend/pkg/enums"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/logger"
	"github.com/novathreads/storefront-backend/pkg/pagination"
	"github.com/novathreads/storefront-backend/pkg/types"
)

const (
	DefaultPageLimit     = 12
	DefaultFeaturedLimit = 6

	productNotFoundMessage = "Product not found"
)

var (
	defaultSizes  = []string{"XS", "S", "M", "L", "XL"}
	defaultColors = []string{"Black", "White"}
	maxRating     = decimal.NewFromInt(5)
	// priceLimit is exclusive; price is NUMERIC(10,2).
	priceLimit = decimal.New(1, 8)
)

const (
	priceScale  = 2
	ratingScale = 1
	// maxCount is the INTEGER column maximum for stock and review counts.
	maxCount = math.MaxInt32
)

// Service exposes catalog reads for shoppers and writes for administrators.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	FeaturedProducts(ctx context.Context, limit int) ([]ProductDTO, error)
	GetProduct(ctx context.Context, rawID string) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, rawID string, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, rawID string) error
	SeedIfEmpty(ctx context.Context) (int, error)
}

type productRepository interface {
	List(ctx context.Context, filters Filters, sort Sort, page pagination.Params) ([]models.Product, int64, error)
	Featured(ctx context.Context, limit int) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo productRepository
	logg *logger.Logger
}

// NewService constructs a catalog service.
func NewService(repo productRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	page := input.Pagination
	if page.Page == 0 {
		page.Page = 1
	}
	if page.Limit == 0 {
		page.Limit = DefaultPageLimit
	}
	if err := page.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	sort := input.Sort
	if sort.Field == "" {
		sort = Sort{Field: DefaultSortField, Desc: true}
	}

	rows, total, err := s.repo.List(ctx, input.Filters, sort, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	products := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		products = append(products, NewProductDTO(&rows[i]))
	}
	return &ProductListResult{
		Products:   products,
		Pagination: pagination.NewMeta(page, total),
	}, nil
}

func (s *service) FeaturedProducts(ctx context.Context, limit int) ([]ProductDTO, error) {
	if limit == 0 {
		limit = DefaultFeaturedLimit
	}
	if limit < 1 || limit > pagination.MaxLimit {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("limit must be between 1 and %d", pagination.MaxLimit))
	}
	rows, err := s.repo.Featured(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured products")
	}
	products := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		products = append(products, NewProductDTO(&rows[i]))
	}
	return products, nil
}

func (s *service) GetProduct(ctx context.Context, rawID string) (*ProductDTO, error) {
	product, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	dto := NewProductDTO(product)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	product := &models.Product{
		Name:          strings.TrimSpace(input.Name),
		Description:   strings.TrimSpace(input.Description),
		Category:      input.Category,
		Sizes:         models.StringList(input.Sizes),
		Colors:        models.StringList(input.Colors),
		ImageURL:      strings.TrimSpace(input.ImageURL),
		Images:        models.StringList(input.Images),
		InStock:       true,
		StockQuantity: input.StockQuantity,
		Featured:      input.Featured,
		ReviewCount:   input.ReviewCount,
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}
	if len(product.Sizes) == 0 {
		product.Sizes = append(models.StringList{}, defaultSizes...)
	}
	if len(product.Colors) == 0 {
		product.Colors = append(models.StringList{}, defaultColors...)
	}

	if err := validateProduct(product); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	dto := NewProductDTO(created)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, rawID string, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}

	applyUpdate(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	dto := NewProductDTO(updated)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	return nil
}

// load resolves rawID to a product. Malformed ids are reported as not found.
func (s *service) load(ctx context.Context, rawID string) (*models.Product, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func applyUpdate(p *models.Product, in UpdateProductInput) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Sizes != nil {
		p.Sizes = models.StringList(*in.Sizes)
	}
	if in.Colors != nil {
		p.Colors = models.StringList(*in.Colors)
	}
	if in.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Images != nil {
		p.Images = models.StringList(*in.Images)
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.ReviewCount != nil {
		p.ReviewCount = *in.ReviewCount
	}
}

// hasScale reports whether d fits in places decimal digits. Trailing zeros
// do not count.
func hasScale(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// validateProduct checks the write-time invariants on the merged product.
func validateProduct(p *models.Product) error {
	var details []types.FieldError
	add := func(field, msg string) {
		details = append(details, types.FieldError{Field: field, Message: msg})
	}

	if p.Name == "" {
		add("name", "Product name is required")
	}
	if p.Description == "" {
		add("description", "Product description is required")
	}
	switch {
	case p.Price.IsNegative():
		add("price", "Price cannot be negative")
	case !p.Price.LessThan(priceLimit):
		add("price", "Price must be less than 100000000")
	case !hasScale(p.Price, priceScale):
		add("price", "Price can have at most 2 decimal places")
	}
	if !p.Category.IsValid() {
		names := make([]string, 0, len(enums.ProductCategories()))
		for _, c := range enums.ProductCategories() {
			names = append(names, c.String())
		}
		add("category", "Category must be one of: "+strings.Join(names, ", "))
	}
	if p.ImageURL == "" {
		add("imageUrl", "Image URL is required")
	}
	if p.StockQuantity < 0 || p.StockQuantity > maxCount {
		add("stockQuantity", "Stock quantity must be between 0 and 2147483647")
	}
	switch {
	case p.Rating.IsNegative() || p.Rating.GreaterThan(maxRating):
		add("rating", "Rating must be between 0 and 5")
	case !hasScale(p.Rating, ratingScale):
		add("rating", "Rating can have at most 1 decimal place")
	}
	if p.ReviewCount < 0 || p.ReviewCount > maxCount {
		add("reviewCount", "Review count must be between 0 and 2147483647")
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Validation failed").WithDetails(details)
	}
	return nil
}
