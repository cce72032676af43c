package pubsub

import (
	"context"
	"testing"
	"time"
)

func TestBrokerDeliversToSubscriber(t *testing.T) {
	b := NewBroker[string]()
	defer b.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := b.Subscribe(ctx)
	b.Publish(CreatedEvent, "hello")

	select {
	case evt := <-ch:
		if evt.Type != CreatedEvent || evt.Payload != "hello" {
			t.Fatalf("got %+v, want created/hello", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBrokerUnsubscribeOnContextCancel(t *testing.T) {
	b := NewBroker[int]()
	defer b.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	ch := b.Subscribe(ctx)
	cancel()

	for range ch {
	}
	if n := b.SubscriberCount(); n != 0 {
		t.Fatalf("subscriber count = %d after cancel, want 0", n)
	}
}

func TestBrokerPublishNeverBlocks(t *testing.T) {
	b := NewBufferedBroker[int](1)
	defer b.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b.Subscribe(ctx)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(UpdatedEvent, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestBrokerShutdownClosesChannels(t *testing.T) {
	b := NewBroker[struct{}]()
	ch := b.Subscribe(context.Background())
	b.Shutdown()

	if _, open := <-ch; open {
		t.Fatal("channel still open after shutdown")
	}
	// Safe to call twice and to publish after shutdown.
	b.Shutdown()
	b.Publish(DeletedEvent, struct{}{})
}
