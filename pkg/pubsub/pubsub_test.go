package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novathreads/storefront-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	assert.Equal(t, "projects/nova/topics/newsletter", topicResourceName("nova", "newsletter"))
	assert.Equal(t, "projects/x/topics/y", topicResourceName("nova", "projects/x/topics/y"))
	assert.Empty(t, topicResourceName("", "newsletter"))
	assert.Empty(t, topicResourceName("nova", "  "))
}

func TestEncodeEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := encodeEvent("newsletter.subscribed", map[string]string{"email": "a@b.co"}, at)
	require.NoError(t, err)

	assert.Equal(t, "newsletter.subscribed", msg.Attributes["event_type"])

	var decoded struct {
		Type       string            `json:"type"`
		OccurredAt time.Time         `json:"occurredAt"`
		Data       map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	assert.Equal(t, "newsletter.subscribed", decoded.Type)
	assert.True(t, at.Equal(decoded.OccurredAt))
	assert.Equal(t, "a@b.co", decoded.Data["email"])

	_, err = encodeEvent("bad", make(chan int), at)
	assert.Error(t, err)
}

func TestNewClientRequiresConfig(t *testing.T) {
	_, err := NewClient(context.Background(), config.PubSubConfig{NewsletterTopic: "t"}, nil)
	assert.ErrorIs(t, err, errProjectIDRequired)

	_, err = NewClient(context.Background(), config.PubSubConfig{ProjectID: "p"}, nil)
	assert.ErrorIs(t, err, errTopicRequired)
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	assert.Nil(t, c.Publisher("t"))
	assert.Error(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), "x", nil))
}
