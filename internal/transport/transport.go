// Package transport defines the contract between the debate engine and
// whatever actually carries prompts to participants and brings raw text
// back (browser automation, local agent processes, HTTP APIs). The
// engine only ever sees this interface. The package ships one concrete
// implementation, the console relay; automated transports live outside
// the core.
package transport

import (
	"context"
	"time"
)

// Transport delivers prompts to participants and retrieves their raw
// responses. Implementations serve every participant of a run,
// including the arbitrator, keyed by participant identity.
//
// Every call must eventually return — success or a typed failure —
// within the caller-supplied bound (the context deadline or the
// explicit timeout). The engine never imposes timeouts of its own on
// top of these.
type Transport interface {
	// IsAuthenticated reports whether the participant is logged in and
	// able to receive prompts. Called once per participant before a
	// debate starts.
	IsAuthenticated(ctx context.Context, participant string) bool

	// AwaitInputReady blocks until the participant can accept a new
	// prompt, or the timeout elapses.
	AwaitInputReady(ctx context.Context, participant string, timeout time.Duration) error

	// DeliverPrompt places the prompt text into the participant's input.
	DeliverPrompt(ctx context.Context, participant string, text string) error

	// Submit sends the delivered prompt.
	Submit(ctx context.Context, participant string) error

	// AwaitResponse blocks until the participant has finished
	// responding, or the timeout elapses.
	AwaitResponse(ctx context.Context, participant string, timeout time.Duration) error

	// RetrieveResponse returns the participant's latest raw response
	// text. May be empty if the participant produced nothing.
	RetrieveResponse(ctx context.Context, participant string) (string, error)
}
