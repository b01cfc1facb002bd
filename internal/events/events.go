package events

import (
	"context"
	"time"
)

const (
	TopicOrders   = "order_events"
	TopicProducts = "product_events"
	TopicUsers    = "user_events"
)

const (
	OrderCreated         = "order_created"
	OrderRiderAssigned   = "order_rider_assigned"
	OrderRiderUnassigned = "order_rider_unassigned"
	OrderStatusChanged   = "order_status_changed"
	OrderCancelled       = "order_cancelled"

	ProductCreated = "product_created"
	ProductUpdated = "product_updated"
	ProductDeleted = "product_deleted"

	UserRegistered = "user_registered"
)

// Event is the envelope written to every topic.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func New(eventType string, data any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, Event) error { return nil }
