package newsletter

import "time"

const (
	EventSubscribed   = "newsletter.subscribed"
	EventReactivated  = "newsletter.reactivated"
	EventUnsubscribed = "newsletter.unsubscribed"
)

// SubscriptionEvent is the payload sent to the mailer topic.
type SubscriptionEvent struct {
	Email        string     `json:"email"`
	SubscribedAt *time.Time `json:"subscribedAt,omitempty"`
}
