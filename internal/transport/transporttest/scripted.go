// Package transporttest provides a scripted in-memory Transport for
// engine tests. Responses and failures are queued per participant and
// consumed one request/response cycle at a time.
package transporttest

import (
	"context"
	"sync"
	"time"

	"github.com/kyutae-lim/concord/internal/errors"
)

// Call records one transport interaction for assertions.
type Call struct {
	Participant string
	Method      string
	Prompt      string // set for DeliverPrompt
}

// Scripted is a Transport whose behavior is driven by queued scripts.
// The zero value is usable: every participant is authenticated and
// responds with an empty string.
type Scripted struct {
	mu sync.Mutex

	unauthenticated map[string]bool
	responses       map[string][]string
	errs            map[string][]error // next-cycle errors, consumed by Submit
	calls           []Call
	pending         map[string]string // response staged by AwaitResponse
}

// New creates an empty scripted transport.
func New() *Scripted {
	return &Scripted{
		unauthenticated: make(map[string]bool),
		responses:       make(map[string][]string),
		errs:            make(map[string][]error),
		pending:         make(map[string]string),
	}
}

// QueueResponse appends a raw response the participant will return on
// its next cycle.
func (s *Scripted) QueueResponse(participant, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[participant] = append(s.responses[participant], response)
}

// QueueError makes the participant's next Submit fail with err.
func (s *Scripted) QueueError(participant string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[participant] = append(s.errs[participant], err)
}

// SetUnauthenticated marks a participant as not logged in.
func (s *Scripted) SetUnauthenticated(participant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unauthenticated[participant] = true
}

// Calls returns a copy of all recorded interactions.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the methods invoked for one participant, in order.
func (s *Scripted) CallsTo(participant string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if c.Participant == participant {
			out = append(out, c.Method)
		}
	}
	return out
}

// Prompts returns every prompt delivered to a participant, in order.
func (s *Scripted) Prompts(participant string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, c := range s.calls {
		if c.Participant == participant && c.Method == "DeliverPrompt" {
			out = append(out, c.Prompt)
		}
	}
	return out
}

func (s *Scripted) record(participant, method, prompt string) {
	s.calls = append(s.calls, Call{Participant: participant, Method: method, Prompt: prompt})
}

// IsAuthenticated implements Transport.
func (s *Scripted) IsAuthenticated(_ context.Context, participant string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(participant, "IsAuthenticated", "")
	return !s.unauthenticated[participant]
}

// AwaitInputReady implements Transport.
func (s *Scripted) AwaitInputReady(_ context.Context, participant string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(participant, "AwaitInputReady", "")
	return nil
}

// DeliverPrompt implements Transport.
func (s *Scripted) DeliverPrompt(_ context.Context, participant, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(participant, "DeliverPrompt", text)
	return nil
}

// Submit implements Transport. A queued error is consumed here; the
// corresponding cycle yields no response.
func (s *Scripted) Submit(_ context.Context, participant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(participant, "Submit", "")

	if errs := s.errs[participant]; len(errs) > 0 {
		err := errs[0]
		s.errs[participant] = errs[1:]
		return err
	}
	return nil
}

// AwaitResponse implements Transport. It stages the next queued
// response; with nothing queued the response is empty.
func (s *Scripted) AwaitResponse(_ context.Context, participant string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(participant, "AwaitResponse", "")

	if queued := s.responses[participant]; len(queued) > 0 {
		s.pending[participant] = queued[0]
		s.responses[participant] = queued[1:]
	} else {
		s.pending[participant] = ""
	}
	return nil
}

// RetrieveResponse implements Transport.
func (s *Scripted) RetrieveResponse(_ context.Context, participant string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(participant, "RetrieveResponse", "")

	resp, ok := s.pending[participant]
	if !ok {
		return "", errors.NewTransportError("no response staged", errors.ErrEmptyResponse).
			WithParticipant(participant).WithPhase("retrieve")
	}
	delete(s.pending, participant)
	return resp, nil
}
