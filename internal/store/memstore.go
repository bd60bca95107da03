// Package store provides the in-memory session repository used by the
// engine. Durable storage is an external concern; this store exists so
// the engine, the CLI and the tests have a concrete repository that
// enforces the model invariants: versions are append-only with strictly
// increasing iterations, elements are never deleted, and a session
// reaches a terminal status exactly once.
package store

import (
	"fmt"
	"sync"

	"github.com/kyutae-lim/concord/internal/errors"
	"github.com/kyutae-lim/concord/internal/session"
)

// MemStore is a mutex-guarded in-memory repository.
type MemStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	elements map[string]*session.Element   // by element ID
	byOrder  map[string][]*session.Element // session ID -> elements in creation order
}

// New creates an empty store.
func New() *MemStore {
	return &MemStore{
		sessions: make(map[string]*session.Session),
		elements: make(map[string]*session.Element),
		byOrder:  make(map[string][]*session.Element),
	}
}

// CreateSession registers a new session.
func (m *MemStore) CreateSession(s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; exists {
		return errors.NewSessionError("create", errors.ErrSessionActive).WithSessionID(s.ID)
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

// CreateElements creates one pending element per name, in order, and
// returns copies of them.
func (m *MemStore) CreateElements(sessionID string, names []string) ([]*session.Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return nil, errors.NewSessionError("create elements", errors.ErrSessionNotFound).WithSessionID(sessionID)
	}

	out := make([]*session.Element, 0, len(names))
	for _, name := range names {
		el := session.NewElement(sessionID, name)
		m.elements[el.ID] = el
		m.byOrder[sessionID] = append(m.byOrder[sessionID], el)
		out = append(out, copyElement(el))
	}
	return out, nil
}

// UpdateElementScore appends a version and updates the current score
// and score history. The iteration must be greater than the last
// recorded version's iteration; anything else violates the append-only
// ordering invariant and is rejected.
func (m *MemStore) UpdateElementScore(elementID string, score, iteration int, content, participant string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.elements[elementID]
	if !ok {
		return errors.ErrElementNotFound
	}
	if el.Status.Done() {
		return fmt.Errorf("element %s already %s", elementID, el.Status)
	}
	if n := len(el.Versions); n > 0 && iteration <= el.Versions[n-1].Iteration {
		return fmt.Errorf("element %s: iteration %d not after %d", elementID, iteration, el.Versions[n-1].Iteration)
	}

	el.Versions = append(el.Versions, session.NewVersion(iteration, score, content, participant))
	el.Score = score
	el.ScoreHistory = append(el.ScoreHistory, score)
	el.Status = session.ElementInProgress
	return nil
}

// MarkElementComplete retires an element with a completion reason.
// Completing an already-done element is rejected: done is terminal.
func (m *MemStore) MarkElementComplete(elementID string, reason session.CompletionReason) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.elements[elementID]
	if !ok {
		return errors.ErrElementNotFound
	}
	if el.Status.Done() {
		return fmt.Errorf("element %s already %s", elementID, el.Status)
	}

	switch reason {
	case session.ReasonThreshold:
		el.Status = session.ElementCompleted
	case session.ReasonCycle:
		el.Status = session.ElementCycleDetected
	default:
		return fmt.Errorf("unknown completion reason %q", reason)
	}
	el.Reason = reason
	return nil
}

// GetLastNVersions returns up to n most recent versions, oldest first.
func (m *MemStore) GetLastNVersions(elementID string, n int) ([]session.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.elements[elementID]
	if !ok {
		return nil, errors.ErrElementNotFound
	}
	return el.LastVersions(n), nil
}

// GetIncompleteElements returns copies of the session's elements that
// still need scoring, in creation order.
func (m *MemStore) GetIncompleteElements(sessionID string) ([]*session.Element, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return nil, errors.NewSessionError("incomplete elements", errors.ErrSessionNotFound).WithSessionID(sessionID)
	}

	var out []*session.Element
	for _, el := range m.byOrder[sessionID] {
		if !el.Status.Done() {
			out = append(out, copyElement(el))
		}
	}
	return out, nil
}

// Elements returns copies of all the session's elements in creation
// order, done or not. Used for the final report.
func (m *MemStore) Elements(sessionID string) []*session.Element {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*session.Element, 0, len(m.byOrder[sessionID]))
	for _, el := range m.byOrder[sessionID] {
		out = append(out, copyElement(el))
	}
	return out
}

// UpdateIteration persists the session's iteration counter. The
// counter never decreases.
func (m *MemStore) UpdateIteration(sessionID string, n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return errors.NewSessionError("update iteration", errors.ErrSessionNotFound).WithSessionID(sessionID)
	}
	if n < s.Iteration {
		return fmt.Errorf("iteration counter cannot decrease: %d -> %d", s.Iteration, n)
	}
	s.Iteration = n
	return nil
}

// UpdateStatus persists a session status transition. Transitions out of
// a terminal status are rejected.
func (m *MemStore) UpdateStatus(sessionID string, status session.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return errors.NewSessionError("update status", errors.ErrSessionNotFound).WithSessionID(sessionID)
	}
	if s.Status.IsTerminal() {
		return fmt.Errorf("session %s already %s", sessionID, s.Status)
	}
	s.Status = status
	return nil
}

// Session returns a copy of the stored session, or nil if unknown.
func (m *MemStore) Session(sessionID string) *session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

// copyElement deep-copies an element so callers cannot mutate stored
// state behind the lock.
func copyElement(el *session.Element) *session.Element {
	cp := *el
	cp.ScoreHistory = append([]int(nil), el.ScoreHistory...)
	cp.Versions = append([]session.Version(nil), el.Versions...)
	return &cp
}
