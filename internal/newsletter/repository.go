package newsletter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/novathreads/storefront-backend/internal/repo"
	"github.com/novathreads/storefront-backend/pkg/db/models"
	"github.com/novathreads/storefront-backend/pkg/pagination"
)

// upsertSubscriberSQL inserts a new active subscriber or reactivates an
// inactive one. An already active row is left untouched and no id is returned.
const upsertSubscriberSQL = `
INSERT INTO newsletter_subscribers (id, email, is_active, subscribed_at, created_at, updated_at)
VALUES (?, ?, TRUE, ?, ?, ?)
ON CONFLICT (email) DO UPDATE
SET is_active = TRUE,
    subscribed_at = excluded.subscribed_at,
    updated_at = excluded.updated_at
WHERE newsletter_subscribers.is_active = FALSE
RETURNING id
`

type upsertRow struct {
	ID uuid.UUID
}

// Repository wraps newsletter subscriber persistence.
type Repository struct {
	repo.Base
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Upsert runs the subscribe statement with a freshly generated id and returns
// the id of the affected row, or uuid.Nil when the email is already active.
func (r *Repository) Upsert(ctx context.Context, id uuid.UUID, email string, at time.Time) (uuid.UUID, error) {
	var rows []upsertRow
	if err := r.DB(ctx).Raw(upsertSubscriberSQL, id.String(), email, at, at, at).Scan(&rows).Error; err != nil {
		return uuid.Nil, err
	}
	if len(rows) == 0 {
		return uuid.Nil, nil
	}
	return rows[0].ID, nil
}

// FindByID loads a subscriber row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.NewsletterSubscriber, error) {
	var sub models.NewsletterSubscriber
	if err := r.DB(ctx).First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByEmail loads a subscriber row by normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	var sub models.NewsletterSubscriber
	if err := r.DB(ctx).First(&sub, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// Deactivate flips an active subscriber to inactive. It reports false when no
// active row matched, which covers both unknown and already inactive emails.
func (r *Repository) Deactivate(ctx context.Context, email string, at time.Time) (bool, error) {
	res := r.DB(ctx).
		Model(&models.NewsletterSubscriber{}).
		Where("email = ? AND is_active = ?", email, true).
		Updates(map[string]any{"is_active": false, "updated_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// List returns one page of subscribers, newest subscription first.
func (r *Repository) List(ctx context.Context, active *bool, page pagination.Params) ([]models.NewsletterSubscriber, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if active != nil {
			return db.Where("is_active = ?", *active)
		}
		return db
	}

	var (
		total int64
		rows  = make([]models.NewsletterSubscriber, 0, page.Limit)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.DB(gctx).Model(&models.NewsletterSubscriber{}).Scopes(scope).Count(&total).Error
	})
	g.Go(func() error {
		return r.DB(gctx).
			Scopes(scope, repo.Paginate(page)).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "subscribed_at"}, Desc: true}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
			Find(&rows).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
