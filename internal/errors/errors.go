// Package errors provides centralized error definitions and error handling
// utilities for the Concord codebase. It defines domain-specific errors,
// semantic error types, error constructors with context wrapping, and
// error classification helpers.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - SessionError: errors related to debate session lifecycle
//   - TransportError: errors communicating with a participant
//   - ParseError: errors interpreting participant output
//
// Semantic sentinel errors represent common conditions and can be tested
// with errors.Is:
//
//	if errors.Is(err, errors.ErrNotAuthenticated) { ... }
//
// # Error Classification
//
// Errors can be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users (vs internal errors)
//   - Severity: Debug, Info, Warning, Error, Critical
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Session-related sentinel errors
var (
	// ErrSessionActive indicates a debate session is already in flight.
	ErrSessionActive = New("session already active")
	// ErrSessionNotFound indicates that a session could not be found.
	ErrSessionNotFound = New("session not found")
	// ErrElementNotFound indicates that an element could not be found.
	ErrElementNotFound = New("element not found")
	// ErrNoParticipants indicates a debate was configured without participants.
	ErrNoParticipants = New("no participants configured")
	// ErrBudgetExhausted indicates an iteration or empty-response budget ran out.
	ErrBudgetExhausted = New("iteration budget exhausted")
)

// Transport-related sentinel errors
var (
	// ErrNotAuthenticated indicates a participant is not logged in.
	ErrNotAuthenticated = New("participant not authenticated")
	// ErrInputNotReady indicates the participant's input never became ready.
	ErrInputNotReady = New("input not ready")
	// ErrDeliveryFailed indicates a prompt could not be delivered.
	ErrDeliveryFailed = New("prompt delivery failed")
	// ErrSubmitFailed indicates a prompt could not be submitted.
	ErrSubmitFailed = New("prompt submission failed")
	// ErrResponseTimeout indicates the response wait timed out.
	ErrResponseTimeout = New("response wait timed out")
	// ErrEmptyResponse indicates the participant produced no usable output.
	ErrEmptyResponse = New("empty response")
	// ErrCircuitOpen indicates the participant's circuit breaker is open.
	ErrCircuitOpen = New("circuit breaker open")
)

// Parse-related sentinel errors
var (
	// ErrNoElements indicates no scored elements could be extracted.
	ErrNoElements = New("no elements extracted")
	// ErrVerdictUnparseable indicates an arbitrator verdict could not be read.
	ErrVerdictUnparseable = New("verdict unparseable")
)

// General sentinel errors
var (
	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = New("operation canceled")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// -----------------------------------------------------------------------------
// Base Error Implementation
// -----------------------------------------------------------------------------

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// -----------------------------------------------------------------------------
// Domain-Specific Errors
// -----------------------------------------------------------------------------

// SessionError represents errors related to debate session lifecycle.
//
// Example:
//
//	err := errors.NewSessionError("cannot start", errors.ErrSessionActive)
//	err = err.WithSessionID("abc123")
type SessionError struct {
	baseError
	SessionID string
}

// NewSessionError creates a new SessionError.
func NewSessionError(message string, cause error) *SessionError {
	return &SessionError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithSessionID adds a session ID to the error context.
func (e *SessionError) WithSessionID(id string) *SessionError {
	e.SessionID = id
	return e
}

// WithSeverity sets the error severity.
func (e *SessionError) WithSeverity(s Severity) *SessionError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *SessionError) Error() string {
	prefix := "session error"
	if e.SessionID != "" {
		prefix = fmt.Sprintf("session error [session=%s]", e.SessionID)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SessionError) Is(target error) bool {
	if _, ok := target.(*SessionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// TransportError represents a failure communicating with a participant.
// Transport failures are per-tick and recoverable, so they default to
// retryable.
//
// Example:
//
//	err := errors.NewTransportError("submit failed", errors.ErrSubmitFailed).
//		WithParticipant("gpt")
type TransportError struct {
	baseError
	Participant string
	Phase       string // "auth", "input", "deliver", "submit", "await", "retrieve"
}

// NewTransportError creates a new TransportError.
func NewTransportError(message string, cause error) *TransportError {
	return &TransportError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithParticipant adds the participant identity to the error context.
func (e *TransportError) WithParticipant(id string) *TransportError {
	e.Participant = id
	return e
}

// WithPhase adds the transport phase to the error context.
func (e *TransportError) WithPhase(phase string) *TransportError {
	e.Phase = phase
	return e
}

// WithRetryable sets whether the error is retryable.
func (e *TransportError) WithRetryable(r bool) *TransportError {
	e.retryable = r
	return e
}

// Error returns the formatted error message.
func (e *TransportError) Error() string {
	var parts []string
	if e.Participant != "" {
		parts = append(parts, fmt.Sprintf("participant=%s", e.Participant))
	}
	if e.Phase != "" {
		parts = append(parts, fmt.Sprintf("phase=%s", e.Phase))
	}

	prefix := "transport error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("transport error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *TransportError) Is(target error) bool {
	if _, ok := target.(*TransportError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// ParseError represents a failure interpreting participant output.
// It records the interpreter stage that was reached and the length of
// the input, which determines whether the failure counts against the
// empty-response budget.
type ParseError struct {
	baseError
	Stage       int
	InputLength int
}

// NewParseError creates a new ParseError.
func NewParseError(message string, cause error) *ParseError {
	return &ParseError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: false,
		},
	}
}

// WithStage records the interpreter stage reached.
func (e *ParseError) WithStage(stage int) *ParseError {
	e.Stage = stage
	return e
}

// WithInputLength records the raw input length.
func (e *ParseError) WithInputLength(n int) *ParseError {
	e.InputLength = n
	return e
}

// Error returns the formatted error message.
func (e *ParseError) Error() string {
	prefix := fmt.Sprintf("parse error [stage=%d, len=%d]", e.Stage, e.InputLength)
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ParseError) Is(target error) bool {
	if _, ok := target.(*ParseError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Classification Helpers
// -----------------------------------------------------------------------------

// classifier is implemented by errors that carry classification metadata.
type classifier interface {
	Severity() Severity
	IsRetryable() bool
	IsUserFacing() bool
}

// IsRetryable reports whether err is transient and the operation may
// succeed on retry. Transport timeouts and empty responses are
// retryable; authentication failures are not.
func IsRetryable(err error) bool {
	var c classifier
	if errors.As(err, &c) {
		return c.IsRetryable()
	}
	switch {
	case errors.Is(err, ErrResponseTimeout),
		errors.Is(err, ErrEmptyResponse),
		errors.Is(err, ErrInputNotReady):
		return true
	}
	return false
}

// IsUserFacing reports whether the error message is safe to display to
// end users.
func IsUserFacing(err error) bool {
	var c classifier
	if errors.As(err, &c) {
		return c.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity of err, defaulting to SeverityError
// for unclassified errors.
func GetSeverity(err error) Severity {
	var c classifier
	if errors.As(err, &c) {
		return c.Severity()
	}
	return SeverityError
}
