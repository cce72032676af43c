package pubsub

import "context"

// EventType identifies the lifecycle stage of an event payload.
type EventType string

const (
	CreatedEvent EventType = "created"
	UpdatedEvent EventType = "updated"
	DeletedEvent EventType = "deleted"
)

// Event wraps a payload emitted by a broker.
type Event[T any] struct {
	Type    EventType
	Payload T
}

// Subscriber exposes the Subscribe API implemented by Broker.
type Subscriber[T any] interface {
	Subscribe(context.Context) <-chan Event[T]
}

// Publisher exposes the Publish API implemented by Broker.
type Publisher[T any] interface {
	Publish(EventType, T)
}
