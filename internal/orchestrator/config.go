package orchestrator

import (
	"time"

	"github.com/kyutae-lim/concord/internal/config"
	"github.com/kyutae-lim/concord/internal/errors"
)

// Config describes one debate run.
type Config struct {
	Topic   string
	Context string
	// Preset names the element list to debate.
	Preset string
	// Participants are contacted round-robin, one per iteration.
	Participants []string
	// Arbitrator is the identity consulted for cycle verdicts.
	Arbitrator string
	// Threshold is the score (0-100) at which an element completes.
	Threshold int

	// MaxIterations is the hard iteration cap.
	MaxIterations int
	// MaxConsecutiveEmptyResponses is the failed-tick budget.
	MaxConsecutiveEmptyResponses int
	// EmptyRetryDelay is the pause before the single empty-response retry.
	EmptyRetryDelay time.Duration
	// LongResponseThreshold is the rune count above which an unscored
	// response still counts as an engaged tick.
	LongResponseThreshold int

	// InputReadyTimeout and ResponseTimeout bound the transport waits.
	InputReadyTimeout time.Duration
	ResponseTimeout   time.Duration
}

// NewConfig builds a run config from the application configuration.
func NewConfig(app *config.Config, topic, context, preset string, participants []string, arbitrator string) Config {
	return Config{
		Topic:                        topic,
		Context:                      context,
		Preset:                       preset,
		Participants:                 participants,
		Arbitrator:                   arbitrator,
		Threshold:                    app.Debate.CompletionThreshold,
		MaxIterations:                app.Debate.MaxIterations,
		MaxConsecutiveEmptyResponses: app.Debate.MaxConsecutiveEmptyResponses,
		EmptyRetryDelay:              app.Debate.EmptyRetryDelay(),
		LongResponseThreshold:        app.Debate.LongResponseThreshold,
		InputReadyTimeout:            app.Transport.InputReadyTimeout(),
		ResponseTimeout:              app.Transport.ResponseTimeout(),
	}
}

// validate checks the config and fills unset budgets with defaults.
func (c *Config) validate() error {
	if len(c.Participants) == 0 {
		return errors.NewSessionError("cannot start debate", errors.ErrNoParticipants)
	}
	if c.Arbitrator == "" {
		return errors.NewSessionError("cannot start debate", errors.New("no arbitrator configured"))
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return errors.NewSessionError("cannot start debate", errors.ErrInvalidInput)
	}

	defaults := config.Default()
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaults.Debate.MaxIterations
	}
	if c.MaxConsecutiveEmptyResponses <= 0 {
		c.MaxConsecutiveEmptyResponses = defaults.Debate.MaxConsecutiveEmptyResponses
	}
	if c.LongResponseThreshold <= 0 {
		c.LongResponseThreshold = defaults.Debate.LongResponseThreshold
	}
	if c.InputReadyTimeout <= 0 {
		c.InputReadyTimeout = defaults.Transport.InputReadyTimeout()
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = defaults.Transport.ResponseTimeout()
	}
	return nil
}
