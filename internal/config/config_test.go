package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v, want nil", err)
	}
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()

	if cfg.Debate.MaxIterations != 100 {
		t.Errorf("MaxIterations = %d, want 100", cfg.Debate.MaxIterations)
	}
	if cfg.Debate.MaxConsecutiveEmptyResponses != 5 {
		t.Errorf("MaxConsecutiveEmptyResponses = %d, want 5", cfg.Debate.MaxConsecutiveEmptyResponses)
	}
	if cfg.Debate.CompletionThreshold != 90 {
		t.Errorf("CompletionThreshold = %d, want 90", cfg.Debate.CompletionThreshold)
	}
	if cfg.Circuit.FailureThreshold != 5 {
		t.Errorf("Circuit.FailureThreshold = %d, want 5", cfg.Circuit.FailureThreshold)
	}
	if cfg.Circuit.ResetDelay() != 30*time.Second {
		t.Errorf("Circuit.ResetDelay() = %v, want 30s", cfg.Circuit.ResetDelay())
	}
	if cfg.Circuit.MaxResetDelay() != 300*time.Second {
		t.Errorf("Circuit.MaxResetDelay() = %v, want 300s", cfg.Circuit.MaxResetDelay())
	}
	if cfg.Debate.EmptyRetryDelay() != 2*time.Second {
		t.Errorf("EmptyRetryDelay() = %v, want 2s", cfg.Debate.EmptyRetryDelay())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max iterations", func(c *Config) { c.Debate.MaxIterations = 0 }},
		{"negative empty budget", func(c *Config) { c.Debate.MaxConsecutiveEmptyResponses = -1 }},
		{"threshold above 100", func(c *Config) { c.Debate.CompletionThreshold = 101 }},
		{"zero failure threshold", func(c *Config) { c.Circuit.FailureThreshold = 0 }},
		{"max delay below base delay", func(c *Config) { c.Circuit.MaxResetDelaySeconds = 1 }},
		{"multiplier below one", func(c *Config) { c.Circuit.BackoffMultiplier = 0.5 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Debate.MaxIterations = 0
	cfg.Circuit.FailureThreshold = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	msg := err.Error()
	for _, want := range []string{"debate.max_iterations", "circuit.failure_threshold"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing mention of %s", msg, want)
		}
	}
}
