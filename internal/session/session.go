package session

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a debate session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStarting  Status = "starting"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// IsTerminal reports whether the status is a final state. A session
// reaches a terminal status exactly once.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusError:
		return true
	default:
		return false
	}
}

// ElementStatus represents the lifecycle state of a single element.
type ElementStatus string

const (
	ElementPending       ElementStatus = "pending"
	ElementInProgress    ElementStatus = "in_progress"
	ElementCompleted     ElementStatus = "completed"
	ElementCycleDetected ElementStatus = "cycle_detected"
)

// Done reports whether the element no longer needs scoring. Done
// elements are exactly those absent from the incomplete-elements view.
func (s ElementStatus) Done() bool {
	return s == ElementCompleted || s == ElementCycleDetected
}

// CompletionReason records why an element stopped being debated.
type CompletionReason string

const (
	// ReasonThreshold means the element's score reached the session's
	// completion threshold.
	ReasonThreshold CompletionReason = "threshold"
	// ReasonCycle means the arbitrator judged the element's recent
	// versions a non-progressing repetition.
	ReasonCycle CompletionReason = "cycle"
)

// Session is one debate orchestration run. It is created when the run
// starts and owned exclusively by the iteration controller until a
// terminal status is reached.
type Session struct {
	ID           string
	Topic        string
	Context      string // optional free-text background for prompts
	Preset       string
	Participants []string
	Arbitrator   string
	Threshold    int // completion threshold, 0-100
	Iteration    int
	Status       Status
	CreatedAt    time.Time
}

// Element is a named evaluation criterion tracked to a numeric score.
// Elements are created in a batch when the session starts and are never
// deleted, only marked done.
type Element struct {
	ID           string
	SessionID    string
	Name         string
	Score        int
	ScoreHistory []int
	Versions     []Version
	Status       ElementStatus
	Reason       CompletionReason // empty while the element is incomplete
}

// Version is one scored content snapshot of an element. The version
// list for an element is append-only and monotonically increasing by
// iteration number.
type Version struct {
	Iteration   int
	Score       int
	Content     string
	Participant string
	Timestamp   time.Time
}

// NewSession builds a session in the starting state with a fresh ID.
func NewSession(topic, context, preset string, participants []string, arbitrator string, threshold int) *Session {
	return &Session{
		ID:           uuid.NewString(),
		Topic:        topic,
		Context:      context,
		Preset:       preset,
		Participants: append([]string(nil), participants...),
		Arbitrator:   arbitrator,
		Threshold:    threshold,
		Status:       StatusStarting,
		CreatedAt:    time.Now(),
	}
}

// NewVersion builds a version snapshot stamped with the current time.
func NewVersion(iteration, score int, content, participant string) Version {
	return Version{
		Iteration:   iteration,
		Score:       score,
		Content:     content,
		Participant: participant,
		Timestamp:   time.Now(),
	}
}

// NewElement builds a pending element for a session.
func NewElement(sessionID, name string) *Element {
	return &Element{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Name:      name,
		Status:    ElementPending,
	}
}

// LastVersions returns up to n of the element's most recent versions,
// oldest first.
func (e *Element) LastVersions(n int) []Version {
	if n <= 0 || len(e.Versions) == 0 {
		return nil
	}
	if n > len(e.Versions) {
		n = len(e.Versions)
	}
	out := make([]Version, n)
	copy(out, e.Versions[len(e.Versions)-n:])
	return out
}
