package newsletter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/novathreads/storefront-backend/pkg/db/models"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/logger"
	"github.com/novathreads/storefront-backend/pkg/pagination"
	"github.com/novathreads/storefront-backend/pkg/pubsub"
)

const (
	DefaultPageLimit = 50

	alreadySubscribedMessage = "This email is already subscribed to our newsletter"
	emailNotFoundMessage     = "Email not found in our newsletter list"
)

// Service manages the subscription lifecycle of newsletter emails.
type Service interface {
	Subscribe(ctx context.Context, email string) (*SubscribeResult, error)
	Unsubscribe(ctx context.Context, email string) error
	ListSubscribers(ctx context.Context, input ListSubscribersInput) (*SubscriberListResult, error)
}

type subscriberRepository interface {
	Upsert(ctx context.Context, id uuid.UUID, email string, at time.Time) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.NewsletterSubscriber, error)
	FindByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	Deactivate(ctx context.Context, email string, at time.Time) (bool, error)
	List(ctx context.Context, active *bool, page pagination.Params) ([]models.NewsletterSubscriber, int64, error)
}

// ServiceParams bundles the dependencies of the newsletter service.
type ServiceParams struct {
	Repo      subscriberRepository
	Publisher pubsub.EventPublisher
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	repo      subscriberRepository
	publisher pubsub.EventPublisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs a newsletter service. A nil publisher disables events.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscriber repository required")
	}
	s := &service{
		repo:      params.Repo,
		publisher: params.Publisher,
		logg:      params.Logger,
		now:       params.Now,
	}
	if s.publisher == nil {
		s.publisher = pubsub.NoopPublisher{}
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

func (s *service) Subscribe(ctx context.Context, email string) (*SubscribeResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	now := s.now().UTC()
	candidate := uuid.New()
	affected, err := s.repo.Upsert(ctx, candidate, email, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert subscriber")
	}
	if affected == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, alreadySubscribedMessage)
	}

	outcome, eventType := OutcomeReactivated, EventReactivated
	if affected == candidate {
		outcome, eventType = OutcomeCreated, EventSubscribed
	}

	row, err := s.repo.FindByID(ctx, affected)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscriber")
	}

	s.publish(ctx, eventType, SubscriptionEvent{Email: email, SubscribedAt: &now})
	return &SubscribeResult{Outcome: outcome, Subscriber: FromModel(row)}, nil
}

func (s *service) Unsubscribe(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	changed, err := s.repo.Deactivate(ctx, email, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate subscriber")
	}
	if changed {
		s.publish(ctx, EventUnsubscribed, SubscriptionEvent{Email: email})
		return nil
	}

	// Nothing flipped: either the email is unknown or it already opted out.
	if _, err := s.repo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, emailNotFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscriber")
	}
	s.logg.Debug(s.logg.WithField(ctx, "email", email), "newsletter.already_inactive")
	return nil
}

func (s *service) ListSubscribers(ctx context.Context, input ListSubscribersInput) (*SubscriberListResult, error) {
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

	rows, total, err := s.repo.List(ctx, input.Active, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscribers")
	}
	subs := make([]SubscriberDTO, 0, len(rows))
	for i := range rows {
		subs = append(subs, FromModel(&rows[i]))
	}
	return &SubscriberListResult{Subscribers: subs, Pagination: pagination.NewMeta(page, total)}, nil
}

// publish never fails the caller; the state change is already committed.
func (s *service) publish(ctx context.Context, eventType string, payload SubscriptionEvent) {
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		logCtx := s.logg.WithField(ctx, "event_type", eventType)
		s.logg.Error(logCtx, "newsletter.publish_failed", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
