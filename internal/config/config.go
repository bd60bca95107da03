// Package config defines the Concord configuration, loaded through
// viper from a YAML file, environment variables (CONCORD_ prefix) and
// defaults, in that order of precedence.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Concord configuration.
type Config struct {
	Debate      DebateConfig      `mapstructure:"debate"`
	Circuit     CircuitConfig     `mapstructure:"circuit"`
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	Transport   TransportConfig   `mapstructure:"transport"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// DebateConfig controls the iteration/convergence engine.
type DebateConfig struct {
	// MaxIterations is the hard cap on debate ticks before the session
	// ends with an error status.
	MaxIterations int `mapstructure:"max_iterations"`
	// MaxConsecutiveEmptyResponses is the budget of failed ticks in a
	// row before the session ends with an error status.
	MaxConsecutiveEmptyResponses int `mapstructure:"max_consecutive_empty_responses"`
	// CompletionThreshold is the default score (0-100) at which an
	// element is considered settled.
	CompletionThreshold int `mapstructure:"completion_threshold"`
	// EmptyRetryDelayMs is the fixed delay before the single automatic
	// retry after an empty response.
	EmptyRetryDelayMs int `mapstructure:"empty_retry_delay_ms"`
	// LongResponseThreshold is the rune count above which a response
	// with no extractable scores still counts as an engaged tick.
	LongResponseThreshold int `mapstructure:"long_response_threshold"`
	// PresetFile optionally points at a YAML file with custom element
	// presets, merged over the built-in catalog.
	PresetFile string `mapstructure:"preset_file"`
}

// CircuitConfig controls the per-participant circuit breakers.
type CircuitConfig struct {
	// FailureThreshold is the consecutive-failure count that opens the circuit.
	FailureThreshold int `mapstructure:"failure_threshold"`
	// SuccessThreshold is the consecutive-success count that closes a
	// half-open circuit.
	SuccessThreshold int `mapstructure:"success_threshold"`
	// ResetDelaySeconds is the base delay before an open circuit admits
	// a trial request.
	ResetDelaySeconds int `mapstructure:"reset_delay_seconds"`
	// MaxResetDelaySeconds caps the exponential backoff of the reset delay.
	MaxResetDelaySeconds int `mapstructure:"max_reset_delay_seconds"`
	// BackoffMultiplier scales the reset delay after a half-open failure.
	BackoffMultiplier float64 `mapstructure:"backoff_multiplier"`
}

// InterpreterConfig controls the response interpreter.
type InterpreterConfig struct {
	// KeepFailureLog retains unparseable responses in memory for the
	// diagnostics report.
	KeepFailureLog bool `mapstructure:"keep_failure_log"`
	// FailureLogSize is the maximum number of retained failures.
	FailureLogSize int `mapstructure:"failure_log_size"`
}

// TransportConfig controls timeouts handed to the transport collaborator.
type TransportConfig struct {
	// InputReadyTimeoutSeconds bounds the wait for a participant's
	// input to become ready.
	InputReadyTimeoutSeconds int `mapstructure:"input_ready_timeout_seconds"`
	// ResponseTimeoutSeconds bounds the wait for a participant's response.
	ResponseTimeoutSeconds int `mapstructure:"response_timeout_seconds"`
}

// LoggingConfig controls event logging on stderr.
type LoggingConfig struct {
	// Level is the minimum severity logged: "debug", "info", "warning", "error".
	Level string `mapstructure:"level"`
	// Verbose echoes every bus event, not just errors and milestones.
	Verbose bool `mapstructure:"verbose"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Debate: DebateConfig{
			MaxIterations:                100,
			MaxConsecutiveEmptyResponses: 5,
			CompletionThreshold:          90,
			EmptyRetryDelayMs:            2000,
			LongResponseThreshold:        200,
		},
		Circuit: CircuitConfig{
			FailureThreshold:     5,
			SuccessThreshold:     2,
			ResetDelaySeconds:    30,
			MaxResetDelaySeconds: 300,
			BackoffMultiplier:    2,
		},
		Interpreter: InterpreterConfig{
			KeepFailureLog: true,
			FailureLogSize: 50,
		},
		Transport: TransportConfig{
			InputReadyTimeoutSeconds: 30,
			ResponseTimeoutSeconds:   180,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers all defaults with viper so they apply even
// without a config file.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("debate.max_iterations", defaults.Debate.MaxIterations)
	viper.SetDefault("debate.max_consecutive_empty_responses", defaults.Debate.MaxConsecutiveEmptyResponses)
	viper.SetDefault("debate.completion_threshold", defaults.Debate.CompletionThreshold)
	viper.SetDefault("debate.empty_retry_delay_ms", defaults.Debate.EmptyRetryDelayMs)
	viper.SetDefault("debate.long_response_threshold", defaults.Debate.LongResponseThreshold)
	viper.SetDefault("debate.preset_file", defaults.Debate.PresetFile)

	viper.SetDefault("circuit.failure_threshold", defaults.Circuit.FailureThreshold)
	viper.SetDefault("circuit.success_threshold", defaults.Circuit.SuccessThreshold)
	viper.SetDefault("circuit.reset_delay_seconds", defaults.Circuit.ResetDelaySeconds)
	viper.SetDefault("circuit.max_reset_delay_seconds", defaults.Circuit.MaxResetDelaySeconds)
	viper.SetDefault("circuit.backoff_multiplier", defaults.Circuit.BackoffMultiplier)

	viper.SetDefault("interpreter.keep_failure_log", defaults.Interpreter.KeepFailureLog)
	viper.SetDefault("interpreter.failure_log_size", defaults.Interpreter.FailureLogSize)

	viper.SetDefault("transport.input_ready_timeout_seconds", defaults.Transport.InputReadyTimeoutSeconds)
	viper.SetDefault("transport.response_timeout_seconds", defaults.Transport.ResponseTimeoutSeconds)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.verbose", defaults.Logging.Verbose)
}

// Load unmarshals the effective viper state into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigDir returns the directory where the concord config file lives.
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "concord")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "concord")
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// EmptyRetryDelay returns the retry delay as a time.Duration.
func (c DebateConfig) EmptyRetryDelay() time.Duration {
	return time.Duration(c.EmptyRetryDelayMs) * time.Millisecond
}

// ResetDelay returns the base reset delay as a time.Duration.
func (c CircuitConfig) ResetDelay() time.Duration {
	return time.Duration(c.ResetDelaySeconds) * time.Second
}

// MaxResetDelay returns the backoff cap as a time.Duration.
func (c CircuitConfig) MaxResetDelay() time.Duration {
	return time.Duration(c.MaxResetDelaySeconds) * time.Second
}

// InputReadyTimeout returns the input-ready bound as a time.Duration.
func (c TransportConfig) InputReadyTimeout() time.Duration {
	return time.Duration(c.InputReadyTimeoutSeconds) * time.Second
}

// ResponseTimeout returns the response-wait bound as a time.Duration.
func (c TransportConfig) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutSeconds) * time.Second
}
