package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/novathreads/storefront-backend/pkg/enums"
)

// Product is a sellable catalog item.
type Product struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name          string                `gorm:"column:name;not null"`
	Description   string                `gorm:"column:description;not null"`
	Price         decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	Category      enums.ProductCategory `gorm:"column:category;not null"`
	Sizes         StringList            `gorm:"column:sizes;not null"`
	Colors        StringList            `gorm:"column:colors;not null"`
	ImageURL      string                `gorm:"column:image_url;not null"`
	Images        StringList            `gorm:"column:images;not null"`
	InStock       bool                  `gorm:"column:in_stock;not null"`
	StockQuantity int                   `gorm:"column:stock_quantity;not null;default:0"`
	Featured      bool                  `gorm:"column:featured;not null;default:false"`
	Rating        decimal.Decimal       `gorm:"column:rating;type:numeric(2,1);not null;default:0"`
	ReviewCount   int                   `gorm:"column:review_count;not null;default:0"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

// BeforeCreate assigns the id client-side so SQLite and Postgres agree.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Sizes == nil {
		p.Sizes = StringList{}
	}
	if p.Colors == nil {
		p.Colors = StringList{}
	}
	if p.Images == nil {
		p.Images = StringList{}
	}
	return nil
}
