package event

import (
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/gobwas/glob"
)

// Handler is a function that handles an event.
type Handler func(Event)

// subscription represents a registered event handler. Exactly one of
// eventType or pattern is set; pattern subscriptions match event types
// by glob.
type subscription struct {
	id      string
	pattern glob.Glob // nil for exact-type subscriptions
	handler Handler
}

// Bus is a simple synchronous pub-sub event bus. It allows the debate
// engine and its sinks to communicate without direct dependencies.
type Bus struct {
	mu       sync.RWMutex
	byType   map[string][]subscription // exact event type -> subscriptions
	patterns []subscription            // glob-pattern subscriptions, "*" included
	nextID   atomic.Uint64
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		byType: make(map[string][]subscription),
	}
}

// Subscribe registers a handler for a specific event type.
// Returns a subscription ID that can be used to unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.generateID()
	b.byType[eventType] = append(b.byType[eventType], subscription{id: id, handler: handler})
	return id
}

// SubscribePattern registers a handler for every event whose type
// matches the given glob pattern (e.g. "element.*"). An invalid
// pattern returns an error and registers nothing.
func (b *Bus) SubscribePattern(pattern string, handler Handler) (string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("event: invalid subscription pattern %q: %w", pattern, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.generateID()
	b.patterns = append(b.patterns, subscription{id: id, pattern: g, handler: handler})
	return id, nil
}

// SubscribeAll registers a handler for all event types.
// Returns a subscription ID that can be used to unsubscribe.
func (b *Bus) SubscribeAll(handler Handler) string {
	id, _ := b.SubscribePattern("*", handler)
	return id
}

// Unsubscribe removes a subscription by ID.
// Returns true if the subscription was found and removed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.byType {
		for i, sub := range subs {
			if sub.id == id {
				b.byType[eventType] = append(subs[:i], subs[i+1:]...)
				return true
			}
		}
	}
	for i, sub := range b.patterns {
		if sub.id == id {
			b.patterns = append(b.patterns[:i], b.patterns[i+1:]...)
			return true
		}
	}
	return false
}

// Publish dispatches an event to all registered handlers. Exact-type
// handlers are called first, then pattern handlers, each group in
// registration order. A panicking handler is recovered and logged so
// it cannot block delivery to the rest.
func (b *Bus) Publish(event Event) {
	eventType := event.EventType()

	b.mu.RLock()
	exact := make([]subscription, len(b.byType[eventType]))
	copy(exact, b.byType[eventType])

	var matched []subscription
	for _, sub := range b.patterns {
		if sub.pattern.Match(eventType) {
			matched = append(matched, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range exact {
		b.safeCall(sub.handler, event)
	}
	for _, sub := range matched {
		b.safeCall(sub.handler, event)
	}
}

// safeCall invokes a handler and recovers from any panics, logging the
// stack trace to aid debugging.
func (b *Bus) safeCall(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: event handler panicked for event %s: %v\n%s",
				event.EventType(), r, debug.Stack())
		}
	}()
	handler(event)
}

// generateID creates a unique subscription ID.
func (b *Bus) generateID() string {
	return fmt.Sprintf("sub-%d", b.nextID.Add(1))
}

// Clear removes all subscriptions.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byType = make(map[string][]subscription)
	b.patterns = nil
}

// SubscriptionCount returns the total number of active subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := len(b.patterns)
	for _, subs := range b.byType {
		count += len(subs)
	}
	return count
}
