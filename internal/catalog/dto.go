package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/novathreads/storefront-backend/pkg/db/models"
	"github.com/novathreads/storefront-backend/pkg/enums"
	"github.com/novathreads/storefront-backend/pkg/pagination"
)

// ProductDTO is the wire shape of a catalog product.
type ProductDTO struct {
	ID            uuid.UUID             `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Price         decimal.Decimal       `json:"price"`
	Category      enums.ProductCategory `json:"category"`
	Sizes         []string              `json:"sizes"`
	Colors        []string              `json:"colors"`
	ImageURL      string                `json:"imageUrl"`
	Images        []string              `json:"images"`
	InStock       bool                  `json:"inStock"`
	StockQuantity int                   `json:"stockQuantity"`
	Featured      bool                  `json:"featured"`
	Rating        decimal.Decimal       `json:"rating"`
	ReviewCount   int                   `json:"reviewCount"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// NewProductDTO maps a persisted product to its wire shape.
func NewProductDTO(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Category:      p.Category,
		Sizes:         nonNil(p.Sizes),
		Colors:        nonNil(p.Colors),
		ImageURL:      p.ImageURL,
		Images:        nonNil(p.Images),
		InStock:       p.InStock,
		StockQuantity: p.StockQuantity,
		Featured:      p.Featured,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func nonNil(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// CreateProductInput is the admin payload for a new product.
type CreateProductInput struct {
	Name          string                `json:"name" validate:"required,max=200"`
	Description   string                `json:"description" validate:"required,max=2000"`
	Price         *decimal.Decimal      `json:"price" validate:"required"`
	Category      enums.ProductCategory `json:"category" validate:"required"`
	Sizes         []string              `json:"sizes" validate:"omitempty,dive,required"`
	Colors        []string              `json:"colors" validate:"omitempty,dive,required"`
	ImageURL      string                `json:"imageUrl" validate:"required,url"`
	Images        []string              `json:"images" validate:"omitempty,dive,url"`
	InStock       *bool                 `json:"inStock"`
	StockQuantity int                   `json:"stockQuantity" validate:"gte=0"`
	Featured      bool                  `json:"featured"`
	Rating        *decimal.Decimal      `json:"rating"`
	ReviewCount   int                   `json:"reviewCount" validate:"gte=0"`
}

// UpdateProductInput is a partial patch; nil fields are left unchanged.
type UpdateProductInput struct {
	Name          *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string                `json:"description" validate:"omitempty,min=1,max=2000"`
	Price         *decimal.Decimal       `json:"price"`
	Category      *enums.ProductCategory `json:"category"`
	Sizes         *[]string              `json:"sizes"`
	Colors        *[]string              `json:"colors"`
	ImageURL      *string                `json:"imageUrl" validate:"omitempty,url"`
	Images        *[]string              `json:"images"`
	InStock       *bool                  `json:"inStock"`
	StockQuantity *int                   `json:"stockQuantity" validate:"omitempty,gte=0"`
	Featured      *bool                  `json:"featured"`
	Rating        *decimal.Decimal       `json:"rating"`
	ReviewCount   *int                   `json:"reviewCount" validate:"omitempty,gte=0"`
}

// ListProductsInput captures a catalog listing request.
type ListProductsInput struct {
	Filters    Filters
	Sort       Sort
	Pagination pagination.Params
}

// ProductListResult is one page of products plus its metadata.
type ProductListResult struct {
	Products   []ProductDTO    `json:"products"`
	Pagination pagination.Meta `json:"pagination"`
}
