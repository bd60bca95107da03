package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kyutae-lim/concord/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify Concord configuration",
	Long: `View or modify Concord configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  concord config set debate.completion_threshold 85
  concord config set circuit.failure_threshold 3
  concord config set logging.verbose true

Valid keys:
  debate.max_iterations                   - Iteration budget per debate
  debate.max_consecutive_empty_responses  - Failed-tick budget
  debate.completion_threshold             - Score at which an element settles
  debate.empty_retry_delay_ms             - Delay before the empty-response retry
  debate.long_response_threshold          - Rune count treated as engagement
  debate.preset_file                      - YAML file with custom presets
  circuit.failure_threshold               - Failures before a circuit opens
  circuit.success_threshold               - Successes to close a half-open circuit
  circuit.reset_delay_seconds             - Base open-circuit reset delay
  circuit.max_reset_delay_seconds         - Backoff cap on the reset delay
  interpreter.keep_failure_log            - Retain unparseable responses (true/false)
  interpreter.failure_log_size            - Retained failure count
  transport.input_ready_timeout_seconds   - Wait bound for participant input
  transport.response_timeout_seconds      - Wait bound for a response
  logging.level                           - Minimum log level
  logging.verbose                         - Echo per-tick events (true/false)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/concord/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Println("Current configuration:")
	fmt.Println()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	fmt.Println("debate:")
	fmt.Printf("  max_iterations: %d\n", cfg.Debate.MaxIterations)
	fmt.Printf("  max_consecutive_empty_responses: %d\n", cfg.Debate.MaxConsecutiveEmptyResponses)
	fmt.Printf("  completion_threshold: %d\n", cfg.Debate.CompletionThreshold)
	fmt.Printf("  empty_retry_delay_ms: %d\n", cfg.Debate.EmptyRetryDelayMs)
	fmt.Printf("  long_response_threshold: %d\n", cfg.Debate.LongResponseThreshold)
	fmt.Printf("  preset_file: %s\n", cfg.Debate.PresetFile)

	fmt.Println("circuit:")
	fmt.Printf("  failure_threshold: %d\n", cfg.Circuit.FailureThreshold)
	fmt.Printf("  success_threshold: %d\n", cfg.Circuit.SuccessThreshold)
	fmt.Printf("  reset_delay_seconds: %d\n", cfg.Circuit.ResetDelaySeconds)
	fmt.Printf("  max_reset_delay_seconds: %d\n", cfg.Circuit.MaxResetDelaySeconds)
	fmt.Printf("  backoff_multiplier: %g\n", cfg.Circuit.BackoffMultiplier)

	fmt.Println("interpreter:")
	fmt.Printf("  keep_failure_log: %v\n", cfg.Interpreter.KeepFailureLog)
	fmt.Printf("  failure_log_size: %d\n", cfg.Interpreter.FailureLogSize)

	fmt.Println("transport:")
	fmt.Printf("  input_ready_timeout_seconds: %d\n", cfg.Transport.InputReadyTimeoutSeconds)
	fmt.Printf("  response_timeout_seconds: %d\n", cfg.Transport.ResponseTimeoutSeconds)

	fmt.Println("logging:")
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	fmt.Printf("  verbose: %v\n", cfg.Logging.Verbose)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"debate.max_iterations":                  "int",
		"debate.max_consecutive_empty_responses": "int",
		"debate.completion_threshold":            "int",
		"debate.empty_retry_delay_ms":            "int",
		"debate.long_response_threshold":         "int",
		"debate.preset_file":                     "string",
		"circuit.failure_threshold":              "int",
		"circuit.success_threshold":              "int",
		"circuit.reset_delay_seconds":            "int",
		"circuit.max_reset_delay_seconds":        "int",
		"interpreter.keep_failure_log":           "bool",
		"interpreter.failure_log_size":           "int",
		"transport.input_ready_timeout_seconds":  "int",
		"transport.response_timeout_seconds":     "int",
		"logging.level":                          "string",
		"logging.verbose":                        "bool",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'concord config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue interface{}
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = value == "true"
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Reject combinations the engine would refuse at startup
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'concord config set' to modify values", configFile)
	}

	// Create config directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaults := config.Default()
	configContent := fmt.Sprintf(`# Concord Configuration

# Debate engine budgets and thresholds
debate:
  max_iterations: %d
  max_consecutive_empty_responses: %d
  completion_threshold: %d
  empty_retry_delay_ms: %d
  long_response_threshold: %d
  # preset_file: /path/to/presets.yaml

# Per-participant circuit breakers
circuit:
  failure_threshold: %d
  success_threshold: %d
  reset_delay_seconds: %d
  max_reset_delay_seconds: %d
  backoff_multiplier: %g

# Response interpreter diagnostics
interpreter:
  keep_failure_log: %v
  failure_log_size: %d

# Transport wait bounds
transport:
  input_ready_timeout_seconds: %d
  response_timeout_seconds: %d

# Console logging
logging:
  level: %s
  verbose: %v
`,
		defaults.Debate.MaxIterations,
		defaults.Debate.MaxConsecutiveEmptyResponses,
		defaults.Debate.CompletionThreshold,
		defaults.Debate.EmptyRetryDelayMs,
		defaults.Debate.LongResponseThreshold,
		defaults.Circuit.FailureThreshold,
		defaults.Circuit.SuccessThreshold,
		defaults.Circuit.ResetDelaySeconds,
		defaults.Circuit.MaxResetDelaySeconds,
		defaults.Circuit.BackoffMultiplier,
		defaults.Interpreter.KeepFailureLog,
		defaults.Interpreter.FailureLogSize,
		defaults.Transport.InputReadyTimeoutSeconds,
		defaults.Transport.ResponseTimeoutSeconds,
		defaults.Logging.Level,
		defaults.Logging.Verbose,
	)

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Created config file at %s\n", configFile)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Println(config.ConfigFile())
	return nil
}
