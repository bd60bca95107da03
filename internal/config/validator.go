package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration values for consistency and returns an
// error describing every problem found.
func (c *Config) Validate() error {
	var problems []string

	if c.Debate.MaxIterations <= 0 {
		problems = append(problems, "debate.max_iterations must be positive")
	}
	if c.Debate.MaxConsecutiveEmptyResponses <= 0 {
		problems = append(problems, "debate.max_consecutive_empty_responses must be positive")
	}
	if c.Debate.CompletionThreshold < 0 || c.Debate.CompletionThreshold > 100 {
		problems = append(problems, "debate.completion_threshold must be in 0-100")
	}
	if c.Debate.LongResponseThreshold < 0 {
		problems = append(problems, "debate.long_response_threshold must not be negative")
	}

	if c.Circuit.FailureThreshold <= 0 {
		problems = append(problems, "circuit.failure_threshold must be positive")
	}
	if c.Circuit.SuccessThreshold <= 0 {
		problems = append(problems, "circuit.success_threshold must be positive")
	}
	if c.Circuit.ResetDelaySeconds <= 0 {
		problems = append(problems, "circuit.reset_delay_seconds must be positive")
	}
	if c.Circuit.MaxResetDelaySeconds < c.Circuit.ResetDelaySeconds {
		problems = append(problems, "circuit.max_reset_delay_seconds must be >= circuit.reset_delay_seconds")
	}
	if c.Circuit.BackoffMultiplier < 1 {
		problems = append(problems, "circuit.backoff_multiplier must be >= 1")
	}

	switch c.Logging.Level {
	case "debug", "info", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q is not one of debug, info, warning, error", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
