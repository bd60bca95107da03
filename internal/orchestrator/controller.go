package orchestrator

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kyutae-lim/concord/internal/circuit"
	"github.com/kyutae-lim/concord/internal/errors"
	"github.com/kyutae-lim/concord/internal/event"
	"github.com/kyutae-lim/concord/internal/interpret"
	"github.com/kyutae-lim/concord/internal/preset"
	"github.com/kyutae-lim/concord/internal/prompt"
	"github.com/kyutae-lim/concord/internal/session"
	"github.com/kyutae-lim/concord/internal/transport"
)

// minCycleVersions is the version count below which no cycle check runs.
const minCycleVersions = 3

// Controller runs debates one at a time. It owns the iteration loop and
// absorbs every per-tick failure; Run only returns an error when the
// debate could not be started at all.
type Controller struct {
	repo      Repository
	transport transport.Transport
	judge     Judge
	breakers  *circuit.Registry
	interp    *interpret.Interpreter
	bus       *event.Bus
	presets   *preset.Catalog

	mu     sync.Mutex
	active bool

	cancelled atomic.Bool

	// sleep is replaceable so tests can skip the empty-response delay.
	sleep func(time.Duration)
}

// NewController wires a controller from its collaborators.
func NewController(repo Repository, t transport.Transport, judge Judge, breakers *circuit.Registry, interp *interpret.Interpreter, bus *event.Bus, presets *preset.Catalog) *Controller {
	return &Controller{
		repo:      repo,
		transport: t,
		judge:     judge,
		breakers:  breakers,
		interp:    interp,
		bus:       bus,
		presets:   presets,
		sleep:     time.Sleep,
	}
}

// Cancel requests a cooperative stop. The running debate notices at the
// next iteration boundary and finishes with the cancelled status.
// Cancelling an idle controller is a no-op.
func (c *Controller) Cancel() {
	c.cancelled.Store(true)
}

// Active reports whether a debate is currently in flight.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Run executes one debate to a terminal status and returns its report.
// Only one debate runs at a time; a second concurrent call fails with
// ErrSessionActive. Budget exhaustion is a debate outcome, not a Run
// failure: the returned report carries the error status and Run's error
// is nil.
func (c *Controller) Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return nil, errors.NewSessionError("cannot start debate", errors.ErrSessionActive)
	}
	c.active = true
	c.cancelled.Store(false)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.active = false
		c.mu.Unlock()
	}()

	if err := c.preflight(ctx, cfg); err != nil {
		return nil, err
	}

	names := c.presets.Elements(cfg.Preset)
	sess := session.NewSession(cfg.Topic, cfg.Context, cfg.Preset, cfg.Participants, cfg.Arbitrator, cfg.Threshold)
	if err := c.repo.CreateSession(sess); err != nil {
		return nil, err
	}
	elements, err := c.repo.CreateElements(sess.ID, names)
	if err != nil {
		return nil, err
	}

	elementNames := make([]string, len(elements))
	for i, el := range elements {
		elementNames[i] = el.Name
	}
	c.bus.Publish(event.NewDebateStartedEvent(sess.ID, cfg.Topic, cfg.Preset, cfg.Participants, elementNames))
	c.setStatus(sess, session.StatusRunning)

	return c.loop(ctx, sess, cfg)
}

// preflight verifies every participant and the arbitrator are
// authenticated before any state is created.
func (c *Controller) preflight(ctx context.Context, cfg Config) error {
	checked := append(append([]string(nil), cfg.Participants...), cfg.Arbitrator)
	for _, p := range checked {
		if !c.transport.IsAuthenticated(ctx, p) {
			return errors.NewTransportError("preflight check failed", errors.ErrNotAuthenticated).
				WithParticipant(p).
				WithPhase("auth").
				WithRetryable(false)
		}
	}
	return nil
}

// loop is the iteration engine. Each pass checks cancellation, checks
// the budgets, runs one tick against the next participant round-robin,
// then sweeps the still-incomplete elements for cycles.
func (c *Controller) loop(ctx context.Context, sess *session.Session, cfg Config) (*Report, error) {
	iteration := 0
	turn := 0
	consecutiveFailed := 0

	for {
		if c.cancelled.Load() || ctx.Err() != nil {
			return c.finalize(sess, cfg, session.StatusCancelled, iteration, ""), nil
		}

		incomplete, err := c.repo.GetIncompleteElements(sess.ID)
		if err != nil {
			return nil, err
		}
		if len(incomplete) == 0 {
			return c.finalize(sess, cfg, session.StatusCompleted, iteration, ""), nil
		}

		if iteration >= cfg.MaxIterations {
			msg := errors.ErrBudgetExhausted.Error()
			c.bus.Publish(event.NewErrorEvent(sess.ID, iteration, "", msg, true))
			return c.finalize(sess, cfg, session.StatusError, iteration, msg), nil
		}

		participant := cfg.Participants[turn%len(cfg.Participants)]
		turn++
		iteration++
		if err := c.repo.UpdateIteration(sess.ID, iteration); err != nil {
			return nil, err
		}
		c.bus.Publish(event.NewProgressEvent(sess.ID, iteration, participant, len(incomplete)))

		if c.tick(ctx, sess, cfg, participant, iteration, incomplete) {
			consecutiveFailed++
		} else {
			consecutiveFailed = 0
		}
		if consecutiveFailed >= cfg.MaxConsecutiveEmptyResponses {
			msg := "empty-response budget exhausted"
			c.bus.Publish(event.NewErrorEvent(sess.ID, iteration, participant, msg, true))
			return c.finalize(sess, cfg, session.StatusError, iteration, msg), nil
		}

		c.sweepCycles(ctx, sess, cfg)
	}
}

// tick runs one participant exchange. It reports whether the tick
// failed, which counts against the consecutive-failure budget. Skipped
// participants (open circuit) count as failed ticks but do not record a
// breaker failure: the breaker already knows.
func (c *Controller) tick(ctx context.Context, sess *session.Session, cfg Config, participant string, iteration int, incomplete []*session.Element) bool {
	br := c.breakers.For(participant)
	if !br.CanRequest() {
		c.bus.Publish(event.NewCircuitSkippedEvent(sess.ID, iteration, participant))
		return true
	}

	var text string
	if iteration == 1 {
		text = prompt.FirstAnalysis(cfg.Topic, cfg.Context, incomplete)
	} else {
		text = prompt.ReviewAndImprove(cfg.Topic, iteration, incomplete)
	}

	raw, err := c.exchange(ctx, cfg, participant, text)
	if err != nil {
		br.RecordFailure(err.Error())
		c.bus.Publish(event.NewErrorEvent(sess.ID, iteration, participant, err.Error(), false))
		return true
	}

	if strings.TrimSpace(raw) == "" {
		c.sleep(cfg.EmptyRetryDelay)
		raw, err = c.exchange(ctx, cfg, participant, text)
		if err == nil && strings.TrimSpace(raw) == "" {
			err = errors.NewTransportError("no output after retry", errors.ErrEmptyResponse).
				WithParticipant(participant).
				WithPhase("retrieve")
		}
		if err != nil {
			br.RecordFailure(err.Error())
			c.bus.Publish(event.NewErrorEvent(sess.ID, iteration, participant, err.Error(), false))
			return true
		}
	}

	parsed, meta := c.interp.Parse(raw)
	c.bus.Publish(event.NewResponseEvent(sess.ID, iteration, participant, meta.InputLength, meta.Stage, meta.Confidence, len(parsed)))

	if len(parsed) == 0 {
		// A long response with no extractable scores still means the
		// participant engaged; only short noise counts as a failure.
		if meta.InputLength >= cfg.LongResponseThreshold {
			br.RecordSuccess()
			return false
		}
		br.RecordFailure(errors.ErrNoElements.Error())
		c.bus.Publish(event.NewErrorEvent(sess.ID, iteration, participant, errors.ErrNoElements.Error(), false))
		return true
	}

	c.applyScores(sess, cfg, participant, iteration, incomplete, parsed)
	br.RecordSuccess()
	return false
}

// applyScores persists every parsed score whose name matches an
// incomplete element and retires elements that reached the threshold.
// Parsed names with no matching element are dropped without comment:
// participants routinely invent extra headings.
func (c *Controller) applyScores(sess *session.Session, cfg Config, participant string, iteration int, incomplete []*session.Element, parsed []interpret.ParsedElement) {
	byName := make(map[string]*session.Element, len(incomplete))
	for _, el := range incomplete {
		byName[el.Name] = el
	}

	for _, p := range parsed {
		el, ok := byName[p.Name]
		if !ok {
			continue
		}
		if err := c.repo.UpdateElementScore(el.ID, p.Score, iteration, p.Critique, participant); err != nil {
			continue
		}
		c.bus.Publish(event.NewElementScoreEvent(sess.ID, el.ID, el.Name, p.Score, iteration, participant))

		if p.Score >= cfg.Threshold {
			if err := c.repo.MarkElementComplete(el.ID, session.ReasonThreshold); err == nil {
				c.bus.Publish(event.NewElementCompleteEvent(sess.ID, el.ID, el.Name, p.Score, string(session.ReasonThreshold)))
			}
			delete(byName, p.Name)
		}
	}
}

// exchange runs the full transport conversation with one participant
// and returns the raw response text.
func (c *Controller) exchange(ctx context.Context, cfg Config, participant, text string) (string, error) {
	wrap := func(phase string, cause error) error {
		return errors.NewTransportError("exchange failed", cause).
			WithParticipant(participant).
			WithPhase(phase)
	}

	if err := c.transport.AwaitInputReady(ctx, participant, cfg.InputReadyTimeout); err != nil {
		return "", wrap("input", err)
	}
	if err := c.transport.DeliverPrompt(ctx, participant, text); err != nil {
		return "", wrap("deliver", err)
	}
	if err := c.transport.Submit(ctx, participant); err != nil {
		return "", wrap("submit", err)
	}
	if err := c.transport.AwaitResponse(ctx, participant, cfg.ResponseTimeout); err != nil {
		return "", wrap("await", err)
	}
	raw, err := c.transport.RetrieveResponse(ctx, participant)
	if err != nil {
		return "", wrap("retrieve", err)
	}
	return raw, nil
}

// sweepCycles asks the judge about every incomplete element with enough
// history and retires the ones judged stalled. Judge failures resolve
// to "no cycle" inside the judge, so the sweep never fails a tick.
func (c *Controller) sweepCycles(ctx context.Context, sess *session.Session, cfg Config) {
	incomplete, err := c.repo.GetIncompleteElements(sess.ID)
	if err != nil {
		return
	}
	for _, el := range incomplete {
		if len(el.Versions) < minCycleVersions {
			continue
		}
		isCycle, reason := c.judge.DetectCycle(ctx, cfg.Arbitrator, el)
		if !isCycle {
			continue
		}
		if err := c.repo.MarkElementComplete(el.ID, session.ReasonCycle); err != nil {
			continue
		}
		c.bus.Publish(event.NewCycleDetectedEvent(sess.ID, el.ID, el.Name, reason))
		c.bus.Publish(event.NewElementCompleteEvent(sess.ID, el.ID, el.Name, el.Score, string(session.ReasonCycle)))
	}
}

// setStatus persists a status transition and announces it.
func (c *Controller) setStatus(sess *session.Session, status session.Status) {
	old := sess.Status
	if err := c.repo.UpdateStatus(sess.ID, status); err != nil {
		return
	}
	sess.Status = status
	c.bus.Publish(event.NewStateChangedEvent(sess.ID, string(old), string(status)))
}

// finalize moves the session to its terminal status, emits the
// completion event exactly once and assembles the report.
func (c *Controller) finalize(sess *session.Session, cfg Config, status session.Status, iterations int, failure string) *Report {
	c.setStatus(sess, status)
	c.bus.Publish(event.NewDebateCompleteEvent(sess.ID, string(status), iterations))
	return newReport(sess, status, iterations, failure, c.repo.Elements(sess.ID), c.breakers.Metrics())
}
