// Package circuit implements a per-participant circuit breaker. Each
// participant in a debate gets its own breaker: repeated failures stop
// the orchestrator from burning iterations on an unresponsive
// participant, while the others keep debating. The breaker follows the
// usual closed → open → half-open lifecycle with exponential backoff on
// repeated half-open failures.
package circuit

import (
	"sync"
	"time"
)

// State is the breaker state.
type State int

const (
	// Closed is the normal state: requests flow, failures are counted.
	Closed State = iota
	// Open blocks all requests until the reset delay elapses.
	Open
	// HalfOpen admits trial requests to probe recovery.
	HalfOpen
)

// String returns the conventional lowercase state name.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config holds breaker thresholds and delays.
type Config struct {
	// FailureThreshold is the consecutive-failure count that opens a
	// closed breaker.
	FailureThreshold int
	// SuccessThreshold is the consecutive-success count that closes a
	// half-open breaker.
	SuccessThreshold int
	// ResetDelay is the base delay before an open breaker goes half-open.
	ResetDelay time.Duration
	// MaxResetDelay caps the exponential backoff.
	MaxResetDelay time.Duration
	// BackoffMultiplier scales the reset delay after each half-open failure.
	BackoffMultiplier float64
}

// DefaultConfig returns the standard breaker thresholds.
func DefaultConfig() Config {
	return Config{
		FailureThreshold:  5,
		SuccessThreshold:  2,
		ResetDelay:        30 * time.Second,
		MaxResetDelay:     300 * time.Second,
		BackoffMultiplier: 2,
	}
}

// Metrics is a snapshot of a breaker's counters.
type Metrics struct {
	TotalRequests        int64
	Successes            int64
	Failures             int64
	ConsecutiveFailures  int
	ConsecutiveSuccesses int
	LastFailure          time.Time
	LastSuccess          time.Time
	LastStateChange      time.Time
	SuccessRate          float64 // Successes / TotalRequests, 0 with no requests
}

// Transition describes one breaker state change.
type Transition struct {
	Participant string
	From        State
	To          State
	Reason      string
	Metrics     Metrics
}

// Listener receives breaker transitions.
type Listener func(Transition)

// Breaker is the per-participant circuit breaker. All methods are safe
// for concurrent use.
type Breaker struct {
	mu          sync.Mutex
	participant string
	cfg         Config
	state       State

	currentDelay time.Duration
	openedAt     time.Time

	totalRequests        int64
	successes            int64
	failures             int64
	consecutiveFailures  int
	consecutiveSuccesses int
	lastFailure          time.Time
	lastSuccess          time.Time
	lastStateChange      time.Time

	listeners []Listener

	// now is replaceable so tests can control the clock.
	now func() time.Time
}

// NewBreaker creates a closed breaker for a participant.
func NewBreaker(participant string, cfg Config) *Breaker {
	return &Breaker{
		participant:  participant,
		cfg:          cfg,
		state:        Closed,
		currentDelay: cfg.ResetDelay,
		now:          time.Now,
	}
}

// OnTransition registers a listener for this breaker's state changes.
func (b *Breaker) OnTransition(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// CanRequest reports whether the participant may be contacted. An open
// breaker whose reset delay has elapsed moves to half-open here, so the
// answer reflects wall-clock recovery without background timers.
func (b *Breaker) CanRequest() bool {
	b.mu.Lock()
	t, notify := b.maybeHalfOpenLocked()
	allowed := b.state != Open
	b.mu.Unlock()

	if notify {
		b.emit(t)
	}
	return allowed
}

// State returns the current state, applying any due open → half-open
// transition first.
func (b *Breaker) State() State {
	b.mu.Lock()
	t, notify := b.maybeHalfOpenLocked()
	s := b.state
	b.mu.Unlock()

	if notify {
		b.emit(t)
	}
	return s
}

// RecordSuccess notes a successful request. In half-open, reaching the
// success threshold closes the breaker and resets the reset delay to
// its base value.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	b.totalRequests++
	b.successes++
	b.consecutiveSuccesses++
	b.consecutiveFailures = 0
	b.lastSuccess = b.now()

	var t Transition
	notify := false
	if b.state == HalfOpen && b.consecutiveSuccesses >= b.cfg.SuccessThreshold {
		b.currentDelay = b.cfg.ResetDelay
		t = b.transitionLocked(Closed, "success threshold reached")
		notify = true
	}
	b.mu.Unlock()

	if notify {
		b.emit(t)
	}
}

// RecordFailure notes a failed request. In closed, reaching the failure
// threshold opens the breaker. In half-open, a single failure reopens
// it and multiplies the reset delay (capped at MaxResetDelay).
func (b *Breaker) RecordFailure(reason string) {
	b.mu.Lock()
	b.totalRequests++
	b.failures++
	b.consecutiveFailures++
	b.consecutiveSuccesses = 0
	b.lastFailure = b.now()

	var t Transition
	notify := false
	switch b.state {
	case Closed:
		if b.consecutiveFailures >= b.cfg.FailureThreshold {
			b.openedAt = b.now()
			t = b.transitionLocked(Open, reason)
			notify = true
		}
	case HalfOpen:
		next := time.Duration(float64(b.currentDelay) * b.cfg.BackoffMultiplier)
		if next > b.cfg.MaxResetDelay {
			next = b.cfg.MaxResetDelay
		}
		b.currentDelay = next
		b.openedAt = b.now()
		t = b.transitionLocked(Open, reason)
		notify = true
	}
	b.mu.Unlock()

	if notify {
		b.emit(t)
	}
}

// Trip forces the breaker open, for operator override.
func (b *Breaker) Trip(reason string) {
	b.mu.Lock()
	var t Transition
	notify := false
	if b.state != Open {
		b.openedAt = b.now()
		t = b.transitionLocked(Open, reason)
		notify = true
	}
	b.mu.Unlock()

	if notify {
		b.emit(t)
	}
}

// Reset forces the breaker closed and restores the base reset delay,
// for operator override.
func (b *Breaker) Reset() {
	b.mu.Lock()
	b.currentDelay = b.cfg.ResetDelay
	b.consecutiveFailures = 0
	b.consecutiveSuccesses = 0
	var t Transition
	notify := false
	if b.state != Closed {
		t = b.transitionLocked(Closed, "manual reset")
		notify = true
	}
	b.mu.Unlock()

	if notify {
		b.emit(t)
	}
}

// Metrics returns a snapshot of the breaker's counters.
func (b *Breaker) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.metricsLocked()
}

// CurrentResetDelay returns the delay the next open period will use.
func (b *Breaker) CurrentResetDelay() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentDelay
}

// maybeHalfOpenLocked applies the open → half-open transition when the
// reset delay has elapsed. Caller holds b.mu.
func (b *Breaker) maybeHalfOpenLocked() (Transition, bool) {
	if b.state != Open {
		return Transition{}, false
	}
	if b.now().Sub(b.openedAt) < b.currentDelay {
		return Transition{}, false
	}
	b.consecutiveSuccesses = 0
	return b.transitionLocked(HalfOpen, "reset delay elapsed"), true
}

// transitionLocked changes state and builds the notification. Caller
// holds b.mu.
func (b *Breaker) transitionLocked(to State, reason string) Transition {
	from := b.state
	b.state = to
	b.lastStateChange = b.now()
	return Transition{
		Participant: b.participant,
		From:        from,
		To:          to,
		Reason:      reason,
		Metrics:     b.metricsLocked(),
	}
}

func (b *Breaker) metricsLocked() Metrics {
	m := Metrics{
		TotalRequests:        b.totalRequests,
		Successes:            b.successes,
		Failures:             b.failures,
		ConsecutiveFailures:  b.consecutiveFailures,
		ConsecutiveSuccesses: b.consecutiveSuccesses,
		LastFailure:          b.lastFailure,
		LastSuccess:          b.lastSuccess,
		LastStateChange:      b.lastStateChange,
	}
	if b.totalRequests > 0 {
		m.SuccessRate = float64(b.successes) / float64(b.totalRequests)
	}
	return m
}

// emit delivers a transition to listeners outside the lock so a
// listener can call back into the breaker.
func (b *Breaker) emit(t Transition) {
	b.mu.Lock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, l := range listeners {
		l(t)
	}
}
