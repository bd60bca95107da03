// Package event defines the notification layer for Concord. The debate
// engine publishes typed events (session lifecycle, per-element score
// updates, circuit breaker transitions, errors) to a synchronous bus;
// sinks such as the CLI renderer subscribe without the engine knowing
// about them.
//
// Delivery is fire-and-forget: handlers run synchronously in publish
// order, a panicking handler is recovered and logged, and no handler
// can apply backpressure to the engine.
//
// Handlers can subscribe to a single event type, to every event, or to
// a glob pattern over event types:
//
//	bus.Subscribe("element.score", onScore)
//	bus.SubscribePattern("element.*", onAnyElementEvent)
//	bus.SubscribeAll(logEverything)
package event
