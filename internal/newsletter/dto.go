package newsletter

import (
	"time"

	"github.com/google/uuid"

	"github.com/novathreads/storefront-backend/pkg/db/models"
	"github.com/novathreads/storefront-backend/pkg/pagination"
)

// EmailRequest is the body of the subscribe and unsubscribe endpoints.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// Outcome describes what a subscribe call did.
type Outcome string

const (
	OutcomeCreated     Outcome = "created"
	OutcomeReactivated Outcome = "reactivated"
)

// SubscriberDTO is the admin-facing view of a subscriber.
type SubscriberDTO struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"isActive"`
	SubscribedAt time.Time `json:"subscribedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func FromModel(m *models.NewsletterSubscriber) SubscriberDTO {
	return SubscriberDTO{
		ID:           m.ID,
		Email:        m.Email,
		IsActive:     m.IsActive,
		SubscribedAt: m.SubscribedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// SubscribeResult reports the outcome of a successful subscribe.
type SubscribeResult struct {
	Outcome    Outcome
	Subscriber SubscriberDTO
}

// ListSubscribersInput filters the admin subscriber listing. A nil Active
// lists every subscriber.
type ListSubscribersInput struct {
	Active     *bool
	Pagination pagination.Params
}

// SubscriberListResult is one page of subscribers.
type SubscriberListResult struct {
	Subscribers []SubscriberDTO `json:"subscribers"`
	Pagination  pagination.Meta `json:"pagination"`
}
