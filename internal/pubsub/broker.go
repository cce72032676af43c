package pubsub

import (
	"context"
	"sync"
)

const defaultBuffer = 64

// Broker fans events out to subscribers without ever blocking a publisher.
// Slow subscribers lose events rather than stall the rest of the program.
type Broker[T any] struct {
	mu     sync.RWMutex
	subs   map[chan Event[T]]struct{}
	done   chan struct{}
	buffer int
}

// NewBroker constructs a broker with the default channel buffer.
func NewBroker[T any]() *Broker[T] {
	return NewBufferedBroker[T](defaultBuffer)
}

// NewBufferedBroker constructs a broker whose subscriber channels hold up to
// buffer pending events.
func NewBufferedBroker[T any](buffer int) *Broker[T] {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Broker[T]{
		subs:   make(map[chan Event[T]]struct{}),
		done:   make(chan struct{}),
		buffer: buffer,
	}
}

// Subscribe registers for future events. The returned channel closes when ctx
// is done or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		ch := make(chan Event[T])
		close(ch)
		return ch
	default:
	}

	ch := make(chan Event[T], b.buffer)
	b.subs[ch] = struct{}{}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}()

	return ch
}

// Publish delivers payload to every current subscriber, best effort.
func (b *Broker[T]) Publish(t EventType, payload T) {
	b.mu.RLock()
	select {
	case <-b.done:
		b.mu.RUnlock()
		return
	default:
	}
	targets := make([]chan Event[T], 0, len(b.subs))
	for ch := range b.subs {
		targets = append(targets, ch)
	}
	b.mu.RUnlock()

	evt := Event[T]{Type: t, Payload: payload}
	for _, ch := range targets {
		select {
		case ch <- evt:
		default:
			// Subscriber buffer full; drop instead of blocking.
		}
	}
}

// Shutdown closes the broker and every subscriber channel. Publish and
// Subscribe become no-ops afterwards.
func (b *Broker[T]) Shutdown() {
	select {
	case <-b.done:
		return
	default:
		close(b.done)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		close(ch)
	}
	clear(b.subs)
}

// SubscriberCount reports how many subscribers are currently attached.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
