package event

import "time"

// Event is the interface that all events must implement.
// It provides a common way to identify and timestamp events.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "debate.started", "element.score")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

// newBaseEvent creates a baseEvent with the current time.
func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Debate Lifecycle Events
// -----------------------------------------------------------------------------

// DebateStartedEvent is emitted once when a debate session begins.
type DebateStartedEvent struct {
	baseEvent
	SessionID    string
	Topic        string
	Preset       string
	Participants []string
	Elements     []string // element names created for the session
}

// NewDebateStartedEvent creates a DebateStartedEvent.
func NewDebateStartedEvent(sessionID, topic, preset string, participants, elements []string) DebateStartedEvent {
	return DebateStartedEvent{
		baseEvent:    newBaseEvent("debate.started"),
		SessionID:    sessionID,
		Topic:        topic,
		Preset:       preset,
		Participants: participants,
		Elements:     elements,
	}
}

// StateChangedEvent is emitted whenever the session status transitions.
type StateChangedEvent struct {
	baseEvent
	SessionID string
	OldStatus string
	NewStatus string
}

// NewStateChangedEvent creates a StateChangedEvent.
func NewStateChangedEvent(sessionID, oldStatus, newStatus string) StateChangedEvent {
	return StateChangedEvent{
		baseEvent: newBaseEvent("debate.state"),
		SessionID: sessionID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}

// ProgressEvent is emitted at the top of every iteration.
type ProgressEvent struct {
	baseEvent
	SessionID   string
	Iteration   int
	Participant string
	Remaining   int // incomplete elements at the start of the tick
}

// NewProgressEvent creates a ProgressEvent.
func NewProgressEvent(sessionID string, iteration int, participant string, remaining int) ProgressEvent {
	return ProgressEvent{
		baseEvent:   newBaseEvent("debate.progress"),
		SessionID:   sessionID,
		Iteration:   iteration,
		Participant: participant,
		Remaining:   remaining,
	}
}

// ResponseEvent is emitted after a participant's raw response has been
// retrieved and interpreted.
type ResponseEvent struct {
	baseEvent
	SessionID   string
	Iteration   int
	Participant string
	Length      int // raw response length in runes
	Stage       int // interpreter stage that fired, 0 on total failure
	Confidence  int
	Elements    int // number of elements extracted
}

// NewResponseEvent creates a ResponseEvent.
func NewResponseEvent(sessionID string, iteration int, participant string, length, stage, confidence, elements int) ResponseEvent {
	return ResponseEvent{
		baseEvent:   newBaseEvent("debate.response"),
		SessionID:   sessionID,
		Iteration:   iteration,
		Participant: participant,
		Length:      length,
		Stage:       stage,
		Confidence:  confidence,
		Elements:    elements,
	}
}

// DebateCompleteEvent is emitted exactly once when the session reaches
// a terminal status.
type DebateCompleteEvent struct {
	baseEvent
	SessionID  string
	Status     string // "completed", "cancelled" or "error"
	Iterations int
}

// NewDebateCompleteEvent creates a DebateCompleteEvent.
func NewDebateCompleteEvent(sessionID, status string, iterations int) DebateCompleteEvent {
	return DebateCompleteEvent{
		baseEvent:  newBaseEvent("debate.complete"),
		SessionID:  sessionID,
		Status:     status,
		Iterations: iterations,
	}
}

// ErrorEvent is emitted for per-tick failures and for fatal budget
// exhaustion. Fatal is true only when the error ends the session.
type ErrorEvent struct {
	baseEvent
	SessionID   string
	Iteration   int
	Participant string
	Err         string
	Fatal       bool
}

// NewErrorEvent creates an ErrorEvent.
func NewErrorEvent(sessionID string, iteration int, participant, errMsg string, fatal bool) ErrorEvent {
	return ErrorEvent{
		baseEvent:   newBaseEvent("debate.error"),
		SessionID:   sessionID,
		Iteration:   iteration,
		Participant: participant,
		Err:         errMsg,
		Fatal:       fatal,
	}
}

// -----------------------------------------------------------------------------
// Element Events
// -----------------------------------------------------------------------------

// ElementScoreEvent is emitted for every score update applied to an
// element, whether or not it completes the element.
type ElementScoreEvent struct {
	baseEvent
	SessionID   string
	ElementID   string
	ElementName string
	Score       int
	Iteration   int
	Participant string
}

// NewElementScoreEvent creates an ElementScoreEvent.
func NewElementScoreEvent(sessionID, elementID, elementName string, score, iteration int, participant string) ElementScoreEvent {
	return ElementScoreEvent{
		baseEvent:   newBaseEvent("element.score"),
		SessionID:   sessionID,
		ElementID:   elementID,
		ElementName: elementName,
		Score:       score,
		Iteration:   iteration,
		Participant: participant,
	}
}

// ElementCompleteEvent is emitted when an element reaches the
// completion threshold.
type ElementCompleteEvent struct {
	baseEvent
	SessionID   string
	ElementID   string
	ElementName string
	Score       int
	Reason      string // "threshold" or "cycle"
}

// NewElementCompleteEvent creates an ElementCompleteEvent.
func NewElementCompleteEvent(sessionID, elementID, elementName string, score int, reason string) ElementCompleteEvent {
	return ElementCompleteEvent{
		baseEvent:   newBaseEvent("element.complete"),
		SessionID:   sessionID,
		ElementID:   elementID,
		ElementName: elementName,
		Score:       score,
		Reason:      reason,
	}
}

// CycleDetectedEvent is emitted when the arbitrator judges an element's
// recent versions a non-progressing repetition.
type CycleDetectedEvent struct {
	baseEvent
	SessionID   string
	ElementID   string
	ElementName string
	Reason      string // arbitrator's explanation, may be empty
}

// NewCycleDetectedEvent creates a CycleDetectedEvent.
func NewCycleDetectedEvent(sessionID, elementID, elementName, reason string) CycleDetectedEvent {
	return CycleDetectedEvent{
		baseEvent:   newBaseEvent("element.cycle"),
		SessionID:   sessionID,
		ElementID:   elementID,
		ElementName: elementName,
		Reason:      reason,
	}
}

// -----------------------------------------------------------------------------
// Circuit Breaker Events
// -----------------------------------------------------------------------------

// CircuitStateChangedEvent is emitted on every circuit breaker
// transition for a participant.
type CircuitStateChangedEvent struct {
	baseEvent
	Participant string
	OldState    string
	NewState    string
	Reason      string
	// Snapshot of the participant's metrics at transition time.
	TotalRequests       int64
	Failures            int64
	ConsecutiveFailures int
	SuccessRate         float64
}

// NewCircuitStateChangedEvent creates a CircuitStateChangedEvent.
func NewCircuitStateChangedEvent(participant, oldState, newState, reason string, totalRequests, failures int64, consecutiveFailures int, successRate float64) CircuitStateChangedEvent {
	return CircuitStateChangedEvent{
		baseEvent:           newBaseEvent("circuit.state"),
		Participant:         participant,
		OldState:            oldState,
		NewState:            newState,
		Reason:              reason,
		TotalRequests:       totalRequests,
		Failures:            failures,
		ConsecutiveFailures: consecutiveFailures,
		SuccessRate:         successRate,
	}
}

// CircuitSkippedEvent is emitted when a tick skips a participant whose
// circuit is open.
type CircuitSkippedEvent struct {
	baseEvent
	SessionID   string
	Iteration   int
	Participant string
}

// NewCircuitSkippedEvent creates a CircuitSkippedEvent.
func NewCircuitSkippedEvent(sessionID string, iteration int, participant string) CircuitSkippedEvent {
	return CircuitSkippedEvent{
		baseEvent:   newBaseEvent("circuit.skipped"),
		SessionID:   sessionID,
		Iteration:   iteration,
		Participant: participant,
	}
}
