package service

import (
	"context"
	"strconv"
	"time"

	"github.com/Skotchmaster/grocery_shop/pkg/logging"
)

const (
	TopicUserEvents    = "user_events"
	TopicCartEvents    = "cart_events"
	TopicProductEvents = "product_events"
)

var Topics = []string{TopicUserEvents, TopicCartEvents, TopicProductEvents}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data"`
}

// publish runs after the database work has committed. A failed publish is
// logged and never turns a successful request into an error.
func publish(ctx context.Context, p EventPublisher, topic string, key uint, eventType string, data map[string]any) {
	if p == nil {
		return
	}
	ev := Event{Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
	if err := p.PublishEvent(ctx, topic, strconv.FormatUint(uint64(key), 10), ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed",
			"topic", topic, "event", eventType, "error", err)
	}
}
