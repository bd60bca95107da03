package circuit

import (
	"testing"
	"time"
)

// testClock is a manually advanced clock for breaker tests.
type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(t *testing.T, cfg Config) (*Breaker, *testClock) {
	t.Helper()
	clock := newTestClock()
	b := NewBreaker("gpt", cfg)
	b.now = clock.Now
	return b, clock
}

func TestBreakerStartsClosed(t *testing.T) {
	b, _ := newTestBreaker(t, DefaultConfig())

	if b.State() != Closed {
		t.Errorf("State() = %v, want Closed", b.State())
	}
	if !b.CanRequest() {
		t.Error("CanRequest() = false for a fresh breaker")
	}
}

func TestOpensAfterFailureThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 3
	b, _ := newTestBreaker(t, cfg)

	b.RecordFailure("timeout")
	b.RecordFailure("timeout")
	if b.State() != Closed {
		t.Fatalf("State() = %v after %d failures, want Closed", b.State(), 2)
	}

	b.RecordFailure("timeout")
	if b.State() != Open {
		t.Fatalf("State() = %v after threshold, want Open", b.State())
	}
	if b.CanRequest() {
		t.Error("CanRequest() = true while Open")
	}
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 3
	b, _ := newTestBreaker(t, cfg)

	b.RecordFailure("timeout")
	b.RecordFailure("timeout")
	b.RecordSuccess()
	b.RecordFailure("timeout")
	b.RecordFailure("timeout")

	if b.State() != Closed {
		t.Errorf("State() = %v, want Closed (streak was broken)", b.State())
	}
}

func TestHalfOpenAfterResetDelay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 1
	b, clock := newTestBreaker(t, cfg)

	b.RecordFailure("timeout")
	if b.State() != Open {
		t.Fatalf("State() = %v, want Open", b.State())
	}

	clock.Advance(cfg.ResetDelay - time.Second)
	if b.CanRequest() {
		t.Error("CanRequest() = true before reset delay elapsed")
	}

	clock.Advance(2 * time.Second)
	if !b.CanRequest() {
		t.Error("CanRequest() = false after reset delay elapsed")
	}
	if b.State() != HalfOpen {
		t.Errorf("State() = %v, want HalfOpen", b.State())
	}
}

func TestClosesAfterSuccessThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 1
	cfg.SuccessThreshold = 2
	b, clock := newTestBreaker(t, cfg)

	b.RecordFailure("timeout")
	clock.Advance(cfg.ResetDelay)
	if b.State() != HalfOpen {
		t.Fatalf("State() = %v, want HalfOpen", b.State())
	}

	b.RecordSuccess()
	if b.State() != HalfOpen {
		t.Fatalf("State() = %v after one success, want HalfOpen", b.State())
	}
	b.RecordSuccess()
	if b.State() != Closed {
		t.Fatalf("State() = %v after success threshold, want Closed", b.State())
	}
	if b.CurrentResetDelay() != cfg.ResetDelay {
		t.Errorf("CurrentResetDelay() = %v, want base %v", b.CurrentResetDelay(), cfg.ResetDelay)
	}
}

func TestHalfOpenFailureBacksOff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 1
	cfg.ResetDelay = 30 * time.Second
	cfg.MaxResetDelay = 100 * time.Second
	cfg.BackoffMultiplier = 2
	b, clock := newTestBreaker(t, cfg)

	b.RecordFailure("timeout")
	clock.Advance(30 * time.Second)
	if b.State() != HalfOpen {
		t.Fatalf("State() = %v, want HalfOpen", b.State())
	}

	b.RecordFailure("still down")
	if b.State() != Open {
		t.Fatalf("State() = %v, want Open after half-open failure", b.State())
	}
	if b.CurrentResetDelay() != 60*time.Second {
		t.Errorf("CurrentResetDelay() = %v, want 60s", b.CurrentResetDelay())
	}

	// The delay doubles again but is capped at MaxResetDelay.
	clock.Advance(60 * time.Second)
	if b.State() != HalfOpen {
		t.Fatalf("State() = %v, want HalfOpen", b.State())
	}
	b.RecordFailure("still down")
	if b.CurrentResetDelay() != 100*time.Second {
		t.Errorf("CurrentResetDelay() = %v, want capped 100s", b.CurrentResetDelay())
	}
}

func TestTripAndReset(t *testing.T) {
	b, _ := newTestBreaker(t, DefaultConfig())

	b.Trip("operator override")
	if b.State() != Open {
		t.Fatalf("State() = %v after Trip, want Open", b.State())
	}

	b.Reset()
	if b.State() != Closed {
		t.Fatalf("State() = %v after Reset, want Closed", b.State())
	}
	if !b.CanRequest() {
		t.Error("CanRequest() = false after Reset")
	}
}

func TestTransitionNotifications(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 1
	b, clock := newTestBreaker(t, cfg)

	var transitions []Transition
	b.OnTransition(func(tr Transition) {
		transitions = append(transitions, tr)
	})

	b.RecordFailure("timeout")
	clock.Advance(cfg.ResetDelay)
	b.CanRequest() // triggers open -> half-open

	if len(transitions) != 2 {
		t.Fatalf("got %d transitions, want 2", len(transitions))
	}

	first := transitions[0]
	if first.From != Closed || first.To != Open {
		t.Errorf("first transition %v -> %v, want closed -> open", first.From, first.To)
	}
	if first.Participant != "gpt" {
		t.Errorf("Participant = %q, want gpt", first.Participant)
	}
	if first.Reason != "timeout" {
		t.Errorf("Reason = %q, want timeout", first.Reason)
	}
	if first.Metrics.Failures != 1 {
		t.Errorf("Metrics.Failures = %d, want 1", first.Metrics.Failures)
	}

	second := transitions[1]
	if second.From != Open || second.To != HalfOpen {
		t.Errorf("second transition %v -> %v, want open -> half-open", second.From, second.To)
	}
}

func TestMetricsSnapshot(t *testing.T) {
	b, _ := newTestBreaker(t, DefaultConfig())

	b.RecordSuccess()
	b.RecordSuccess()
	b.RecordFailure("timeout")

	m := b.Metrics()
	if m.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", m.TotalRequests)
	}
	if m.Successes != 2 || m.Failures != 1 {
		t.Errorf("Successes, Failures = %d, %d, want 2, 1", m.Successes, m.Failures)
	}
	if m.ConsecutiveFailures != 1 || m.ConsecutiveSuccesses != 0 {
		t.Errorf("streaks = %d, %d, want 1, 0", m.ConsecutiveFailures, m.ConsecutiveSuccesses)
	}
	if got, want := m.SuccessRate, 2.0/3.0; got != want {
		t.Errorf("SuccessRate = %v, want %v", got, want)
	}
}

func TestRegistryOneBreakerPerParticipant(t *testing.T) {
	r := NewRegistry(DefaultConfig())

	a := r.For("gpt")
	b := r.For("claude")
	if a == b {
		t.Fatal("distinct participants share a breaker")
	}
	if r.For("gpt") != a {
		t.Error("For() returned a new breaker for an existing participant")
	}
}

func TestRegistryFaultDomainsAreIndependent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 1
	r := NewRegistry(cfg)

	r.For("gpt").RecordFailure("down")

	if r.For("gpt").CanRequest() {
		t.Error("gpt breaker should be open")
	}
	if !r.For("claude").CanRequest() {
		t.Error("claude breaker should be unaffected by gpt failures")
	}
}

func TestRegistryGlobalListener(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 1
	r := NewRegistry(cfg)

	// Listener registered before one breaker exists and after another.
	early := r.For("gpt")
	var participants []string
	r.OnTransition(func(tr Transition) {
		participants = append(participants, tr.Participant)
	})

	early.RecordFailure("down")
	r.For("claude").RecordFailure("down")

	if len(participants) != 2 {
		t.Fatalf("got %d notifications, want 2", len(participants))
	}
	if participants[0] != "gpt" || participants[1] != "claude" {
		t.Errorf("participants = %v, want [gpt claude]", participants)
	}
}

func TestRegistryMetrics(t *testing.T) {
	r := NewRegistry(DefaultConfig())
	r.For("gpt").RecordSuccess()
	r.For("claude").RecordFailure("down")

	m := r.Metrics()
	if len(m) != 2 {
		t.Fatalf("len(Metrics()) = %d, want 2", len(m))
	}
	if m["gpt"].Successes != 1 {
		t.Errorf("gpt successes = %d, want 1", m["gpt"].Successes)
	}
	if m["claude"].Failures != 1 {
		t.Errorf("claude failures = %d, want 1", m["claude"].Failures)
	}
}
