package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsletterSubscriber is one row per email address. Rows are deactivated,
// never deleted.
type NewsletterSubscriber struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email        string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	SubscribedAt time.Time `gorm:"column:subscribed_at;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (NewsletterSubscriber) TableName() string { return "newsletter_subscribers" }
