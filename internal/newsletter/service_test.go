package newsletter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novathreads/storefront-backend/pkg/db/models"
	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/pagination"
)

type recordedEvent struct {
	eventType string
	payload   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType: eventType, payload: data})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.eventType)
	}
	return out
}

type fixture struct {
	svc       Service
	repo      *Repository
	publisher *recordingPublisher
	clock     *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&models.NewsletterSubscriber{}))

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f := &fixture{
		repo:      NewRepository(conn),
		publisher: &recordingPublisher{},
		clock:     &clock,
	}
	f.svc, err = NewService(ServiceParams{
		Repo:      f.repo,
		Publisher: f.publisher,
		Now:       func() time.Time { return *f.clock },
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func TestSubscribeLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Subscribe(ctx, "  Reader@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, created.Outcome)
	assert.Equal(t, "reader@example.com", created.Subscriber.Email)
	assert.True(t, created.Subscriber.IsActive)
	firstSubscribedAt := created.Subscriber.SubscribedAt

	_, err = f.svc.Subscribe(ctx, "reader@example.com")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Equal(t, "This email is already subscribed to our newsletter", typed.Message())

	f.advance(time.Hour)
	require.NoError(t, f.svc.Unsubscribe(ctx, "READER@example.com"))
	row, err := f.repo.FindByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.False(t, row.IsActive)

	f.advance(24 * time.Hour)
	reactivated, err := f.svc.Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, OutcomeReactivated, reactivated.Outcome)
	assert.Equal(t, created.Subscriber.ID, reactivated.Subscriber.ID)
	assert.True(t, reactivated.Subscriber.IsActive)
	assert.True(t, reactivated.Subscriber.SubscribedAt.After(firstSubscribedAt))

	assert.Equal(t, []string{EventSubscribed, EventUnsubscribed, EventReactivated}, f.publisher.types())
}

func TestUnsubscribeTwiceKeepsFirstOptOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Subscribe(ctx, "reader@example.com")
	require.NoError(t, err)
	f.advance(time.Hour)
	require.NoError(t, f.svc.Unsubscribe(ctx, "reader@example.com"))
	first, err := f.repo.FindByEmail(ctx, "reader@example.com")
	require.NoError(t, err)

	f.advance(time.Hour)
	require.NoError(t, f.svc.Unsubscribe(ctx, "reader@example.com"))
	second, err := f.repo.FindByEmail(ctx, "reader@example.com")
	require.NoError(t, err)

	assert.False(t, second.IsActive)
	assert.True(t, first.UpdatedAt.Equal(second.UpdatedAt))
	assert.Equal(t, []string{EventSubscribed, EventUnsubscribed}, f.publisher.types())
}

func TestUnsubscribeUnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Unsubscribe(context.Background(), "ghost@example.com")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Equal(t, "Email not found in our newsletter list", typed.Message())
	assert.Empty(t, f.publisher.types())
}

func TestUnsubscribeNeverDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Subscribe(ctx, "keep@example.com")
	require.NoError(t, err)
	require.NoError(t, f.svc.Unsubscribe(ctx, "keep@example.com"))
	require.NoError(t, f.svc.Unsubscribe(ctx, "keep@example.com"))

	res, err := f.svc.ListSubscribers(ctx, ListSubscribersInput{})
	require.NoError(t, err)
	require.Len(t, res.Subscribers, 1)
	assert.False(t, res.Subscribers[0].IsActive)
}

func TestSubscribeConcurrentSameEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Subscribe(ctx, "race@example.com")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)
}

func TestPublishFailureDoesNotFailSubscribe(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("topic unavailable")

	res, err := f.svc.Subscribe(context.Background(), "loud@example.com")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
}

func TestListSubscribers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.Subscribe(ctx, fmt.Sprintf("user%d@example.com", i))
		require.NoError(t, err)
		f.advance(time.Minute)
	}
	require.NoError(t, f.svc.Unsubscribe(ctx, "user1@example.com"))
	require.NoError(t, f.svc.Unsubscribe(ctx, "user3@example.com"))

	all, err := f.svc.ListSubscribers(ctx, ListSubscribersInput{})
	require.NoError(t, err)
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 50, Total: 5, Pages: 1}, all.Pagination)
	require.Len(t, all.Subscribers, 5)
	assert.Equal(t, "user4@example.com", all.Subscribers[0].Email)
	assert.Equal(t, "user0@example.com", all.Subscribers[4].Email)

	active := true
	onlyActive, err := f.svc.ListSubscribers(ctx, ListSubscribersInput{Active: &active})
	require.NoError(t, err)
	assert.EqualValues(t, 3, onlyActive.Pagination.Total)
	for _, s := range onlyActive.Subscribers {
		assert.True(t, s.IsActive)
	}

	inactive := false
	page, err := f.svc.ListSubscribers(ctx, ListSubscribersInput{Active: &inactive, Pagination: pagination.Params{Page: 2, Limit: 1}})
	require.NoError(t, err)
	assert.Equal(t, pagination.Meta{Page: 2, Limit: 1, Total: 2, Pages: 2}, page.Pagination)
	require.Len(t, page.Subscribers, 1)
	assert.Equal(t, "user1@example.com", page.Subscribers[0].Email)

	_, err = f.svc.ListSubscribers(ctx, ListSubscribersInput{Pagination: pagination.Params{Page: 1, Limit: 1000}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
