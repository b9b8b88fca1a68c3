package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/HerbHall/tourstream/internal/event"
)

var (
	_ event.Publisher  = (*MockBus)(nil)
	_ event.Subscriber = (*MockBus)(nil)
)

// MockBus records every published event and delivers it synchronously to
// its subscribers, PublishAsync included, so tests need no Wait.
type MockBus struct {
	mu     sync.Mutex
	events []event.Event
	topics map[string][]event.Handler
	all    []event.Handler
}

func NewMockBus() *MockBus {
	return &MockBus{topics: make(map[string][]event.Handler)}
}

func (b *MockBus) Publish(ctx context.Context, e event.Event) error {
	b.deliver(ctx, e)
	return nil
}

func (b *MockBus) PublishAsync(ctx context.Context, e event.Event) {
	b.deliver(ctx, e)
}

// Subscribe registers h for topic. Unsubscribing is not supported and the
// returned function does nothing.
func (b *MockBus) Subscribe(topic string, h event.Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics[topic] = append(b.topics[topic], h)
	return func() {}
}

// SubscribeAll registers h for every topic.
func (b *MockBus) SubscribeAll(h event.Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
	return func() {}
}

// Events returns a copy of the recorded events in publish order.
func (b *MockBus) Events() []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]event.Event, len(b.events))
	copy(out, b.events)
	return out
}

// WithPrefix returns the recorded events whose topic starts with prefix.
func (b *MockBus) WithPrefix(prefix string) []event.Event {
	var out []event.Event
	for _, e := range b.Events() {
		if strings.HasPrefix(e.Topic, prefix) {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears the recorded events. Subscriptions are kept.
func (b *MockBus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

func (b *MockBus) deliver(ctx context.Context, e event.Event) {
	b.mu.Lock()
	b.events = append(b.events, e)
	handlers := append(append([]event.Handler(nil), b.topics[e.Topic]...), b.all...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(ctx, e)
	}
}
