// Package events carries the bus contract the modules publish through. The
// lead lifecycle emits events here and the notification and scheduler modules
// subscribe; no module ever calls another directly.
package events

import (
	"context"
	"time"
)

// Event names a fact that already happened, with the moment it did.
type Event interface {
	// EventName keys handler registration; one name per event struct.
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp so event structs only declare their
// payload fields.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps the event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler receives every event published under the name it subscribed to.
// Handlers type-assert to the concrete event struct themselves.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe without a wrapper type.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus fans published events out to subscribed handlers.
type Bus interface {
	// Publish dispatches to the event's handlers without waiting on them. A
	// handler failure is the handler's problem; the publisher has moved on.
	Publish(ctx context.Context, event Event)

	// PublishSync runs the handlers inline and reports the first failure.
	// The scheduler worker uses this so a failed reminder is retried.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under the name Event.EventName() returns.
	Subscribe(eventName string, handler Handler)
}
