package orchestrator

import (
	"context"

	"github.com/kyutae-lim/concord/internal/session"
)

// Repository persists sessions, elements and versions. The engine only
// depends on this interface; the in-memory store satisfies it, and a
// durable implementation can be swapped in without touching the loop.
type Repository interface {
	CreateSession(s *session.Session) error
	CreateElements(sessionID string, names []string) ([]*session.Element, error)
	UpdateElementScore(elementID string, score, iteration int, content, participant string) error
	MarkElementComplete(elementID string, reason session.CompletionReason) error
	GetLastNVersions(elementID string, n int) ([]session.Version, error)
	GetIncompleteElements(sessionID string) ([]*session.Element, error)
	Elements(sessionID string) []*session.Element
	UpdateIteration(sessionID string, n int) error
	UpdateStatus(sessionID string, status session.Status) error
}

// Judge decides whether an element's recent versions are a
// non-progressing cycle. A judge must fail open: errors inside it
// resolve to "no cycle", never to a propagated fault.
type Judge interface {
	DetectCycle(ctx context.Context, arbitrator string, el *session.Element) (bool, string)
}
