// Package activity publishes shopper activity events to a message broker.
// Publishing is best effort; callers log failures and carry on.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventLogin    EventType = "session.login"
	EventLogout   EventType = "session.logout"
	EventCheckout EventType = "order.checkout"
)

type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    *int64    `json:"order_id,omitempty"`
}

func NewEvent(t EventType) Event {
	return Event{ID: uuid.New(), Type: t, OccurredAt: time.Now().UTC()}
}

func NewCheckoutEvent(orderID int64) Event {
	e := NewEvent(EventCheckout)
	e.OrderID = &orderID
	return e
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
