package eventbus

import (
	"context"
	"log/slog"
	"sync"
)

// PublishedEvent is one event captured by the in-process bus.
type PublishedEvent struct {
	RoutingKey string
	Payload    []byte
}

// InProcessBus is an in-memory Publisher for local mode (no RabbitMQ) and
// tests. Events are delivered synchronously to registered handlers.
type InProcessBus struct {
	logger   *slog.Logger
	mu       sync.Mutex
	handlers []func(ctx context.Context, event PublishedEvent)
	events   []PublishedEvent
}

// NewInProcessBus creates a new in-process bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{logger: logger}
}

// Subscribe registers a handler invoked synchronously for every published
// event.
func (b *InProcessBus) Subscribe(handler func(ctx context.Context, event PublishedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish records the event and dispatches it to all handlers. Handler
// failures are a local-mode concern: they are logged, never surfaced to the
// publisher.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.Lock()
	event := PublishedEvent{RoutingKey: routingKey, Payload: payload}
	b.events = append(b.events, event)
	handlers := make([]func(ctx context.Context, event PublishedEvent), len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}

	b.logger.Debug("event dispatched",
		"routing_key", routingKey,
		"handlers", len(handlers),
	)
	return nil
}

// Events returns a snapshot of everything published so far.
func (b *InProcessBus) Events() []PublishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]PublishedEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Close implements Publisher. The in-process bus holds no connection.
func (b *InProcessBus) Close() error {
	return nil
}
