package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/kyutae-lim/concord/internal/circuit"
	"github.com/kyutae-lim/concord/internal/config"
	"github.com/kyutae-lim/concord/internal/convergence"
	"github.com/kyutae-lim/concord/internal/event"
	"github.com/kyutae-lim/concord/internal/interpret"
	"github.com/kyutae-lim/concord/internal/orchestrator"
	"github.com/kyutae-lim/concord/internal/preset"
	"github.com/kyutae-lim/concord/internal/store"
	"github.com/kyutae-lim/concord/internal/transport"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <topic>",
	Short: "Run a debate to completion",
	Long: `Run a debate on a topic. Each iteration one participant receives the
open criteria, and their relayed response is parsed for scores. The
debate ends when every criterion reaches the completion threshold,
stalls in a cycle, or a budget runs out.

Prompts are printed to the terminal; paste each participant's response
followed by a line containing only "." to relay it.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var (
	runPreset       string
	runParticipants []string
	runArbitrator   string
	runContext      string
	runThreshold    int
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runPreset, "preset", "decision", "element preset to debate")
	runCmd.Flags().StringSliceVarP(&runParticipants, "participant", "p", nil, "participant identity (repeatable)")
	runCmd.Flags().StringVar(&runArbitrator, "arbitrator", "", "identity consulted for cycle verdicts")
	runCmd.Flags().StringVar(&runContext, "context", "", "free-text background included in the first prompt")
	runCmd.Flags().IntVar(&runThreshold, "threshold", 0, "completion threshold override (1-100)")
	_ = runCmd.MarkFlagRequired("participant")
	_ = runCmd.MarkFlagRequired("arbitrator")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	catalog := preset.NewCatalog()
	if cfg.Debate.PresetFile != "" {
		if err := catalog.LoadFile(cfg.Debate.PresetFile); err != nil {
			return err
		}
	}

	bus := event.NewBus()
	renderer := newRenderer(os.Stderr, cfg.Logging)
	renderer.attach(bus)

	// A config-file edit mid-debate can change the log level.
	config.Watch(func(c *config.Config) {
		renderer.configure(c.Logging)
	})

	breakers := circuit.NewRegistry(circuit.Config{
		FailureThreshold:  cfg.Circuit.FailureThreshold,
		SuccessThreshold:  cfg.Circuit.SuccessThreshold,
		ResetDelay:        cfg.Circuit.ResetDelay(),
		MaxResetDelay:     cfg.Circuit.MaxResetDelay(),
		BackoffMultiplier: cfg.Circuit.BackoffMultiplier,
	})
	breakers.OnTransition(func(t circuit.Transition) {
		bus.Publish(event.NewCircuitStateChangedEvent(
			t.Participant, t.From.String(), t.To.String(), t.Reason,
			t.Metrics.TotalRequests, t.Metrics.Failures,
			t.Metrics.ConsecutiveFailures, t.Metrics.SuccessRate,
		))
	})

	var opts []interpret.Option
	if cfg.Interpreter.KeepFailureLog {
		opts = append(opts, interpret.WithFailureLog(cfg.Interpreter.FailureLogSize))
	}

	relay := transport.NewConsole(os.Stdin, os.Stdout)
	controller := orchestrator.NewController(
		store.New(),
		relay,
		convergence.NewJudge(relay, cfg.Transport.InputReadyTimeout(), cfg.Transport.ResponseTimeout()),
		breakers,
		interpret.New(opts...),
		bus,
		catalog,
	)

	runCfg := orchestrator.NewConfig(cfg, args[0], runContext, runPreset, runParticipants, runArbitrator)
	if runThreshold > 0 {
		runCfg.Threshold = runThreshold
	}

	// Ctrl-C cancels cooperatively at the next iteration boundary.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	report, err := controller.Run(ctx, runCfg)
	if err != nil {
		return err
	}

	renderReport(os.Stdout, report)
	return nil
}
