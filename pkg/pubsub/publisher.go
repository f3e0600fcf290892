package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
)

// Event is the envelope written to every topic.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// EventPublisher publishes one JSON event and waits for the server ack.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

type topicPublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// JSONPublisher encodes events as JSON and tags them with an event_type
// attribute for subscription filters.
type JSONPublisher struct {
	topic topicPublisher
	now   func() time.Time
}

func NewJSONPublisher(p *pubsub.Publisher) *JSONPublisher {
	return &JSONPublisher{topic: p, now: time.Now}
}

func (p *JSONPublisher) Publish(ctx context.Context, eventType string, data any) error {
	msg, err := encodeEvent(eventType, data, p.now().UTC())
	if err != nil {
		return err
	}
	if _, err := p.topic.Publish(ctx, msg).Get(ctx); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

func encodeEvent(eventType string, data any, at time.Time) (*pubsub.Message, error) {
	payload, err := json.Marshal(Event{Type: eventType, OccurredAt: at, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", eventType, err)
	}
	return &pubsub.Message{
		Data:       payload,
		Attributes: map[string]string{"event_type": eventType},
	}, nil
}

// NoopPublisher drops every event. Used when no topic is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// Stop flushes pending messages and releases the publisher's goroutines.
func (p *JSONPublisher) Stop() {
	if s, ok := p.topic.(interface{ Stop() }); ok {
		s.Stop()
	}
}
