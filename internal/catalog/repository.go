package catalog

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/novathreads/storefront-backend/internal/repo"
	"github.com/novathreads/storefront-backend/pkg/db/models"
	"github.com/novathreads/storefront-backend/pkg/pagination"
)

// Repository wraps product persistence.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.WithTx(tx)}
}

// List returns one page of matching products and the total match count.
// The count and the page are read concurrently.
func (r *Repository) List(ctx context.Context, filters Filters, sort Sort, page pagination.Params) ([]models.Product, int64, error) {
	var (
		total    int64
		products = make([]models.Product, 0, page.Limit)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.DB(gctx).
			Model(&models.Product{}).
			Scopes(filterScope(filters)).
			Count(&total).Error
	})
	g.Go(func() error {
		return r.DB(gctx).
			Scopes(filterScope(filters), orderScope(sort), repo.Paginate(page)).
			Find(&products).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Featured returns featured products by rating, highest first.
func (r *Repository) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	products := make([]models.Product, 0, limit)
	err := r.DB(ctx).
		Where("featured = ?", true).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "rating"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindByID loads a product or returns gorm.ErrRecordNotFound.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update persists every column of an existing product.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.DB(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Count returns the number of products in the catalog.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.DB(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
