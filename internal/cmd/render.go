package cmd

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/kyutae-lim/concord/internal/config"
	"github.com/kyutae-lim/concord/internal/event"
	"github.com/kyutae-lim/concord/internal/orchestrator"
	"github.com/kyutae-lim/concord/internal/session"
	"github.com/kyutae-lim/concord/internal/util"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
)

// critiqueWidth clips critique snippets in the report.
const critiqueWidth = 70

// Event tiers for level filtering: per-tick traffic is debug, scores
// and milestones are info, circuit and cycle trouble is warning.
const (
	tierDebug = iota
	tierInfo
	tierWarning
	tierError
)

func levelTier(level string) int {
	switch level {
	case "debug":
		return tierDebug
	case "warning":
		return tierWarning
	case "error":
		return tierError
	default:
		return tierInfo
	}
}

// renderer turns bus events into console lines, filtered by log level.
// Verbose logging lowers the floor to debug; both can be flipped at
// runtime by a config reload.
type renderer struct {
	out io.Writer
	min atomic.Int32
}

func newRenderer(out io.Writer, cfg config.LoggingConfig) *renderer {
	r := &renderer{out: out}
	r.configure(cfg)
	return r
}

func (r *renderer) configure(cfg config.LoggingConfig) {
	tier := levelTier(cfg.Level)
	if cfg.Verbose {
		tier = tierDebug
	}
	r.min.Store(int32(tier))
}

func (r *renderer) attach(bus *event.Bus) {
	bus.SubscribeAll(r.handle)
}

func (r *renderer) printf(tier int, format string, args ...any) {
	if int32(tier) < r.min.Load() {
		return
	}
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *renderer) handle(e event.Event) {
	switch ev := e.(type) {
	case event.DebateStartedEvent:
		r.printf(tierInfo, "%s %s", headingStyle.Render("debate started:"), ev.Topic)
		r.printf(tierInfo, "  preset %s, elements %v, participants %v", ev.Preset, ev.Elements, ev.Participants)
	case event.ProgressEvent:
		r.printf(tierDebug, "%s iteration %d: %s (%d open)", dimStyle.Render("→"), ev.Iteration, ev.Participant, ev.Remaining)
	case event.ResponseEvent:
		r.printf(tierDebug, "%s %s responded: %d runes, stage %d (confidence %d), %d elements",
			dimStyle.Render("←"), ev.Participant, ev.Length, ev.Stage, ev.Confidence, ev.Elements)
	case event.ElementScoreEvent:
		r.printf(tierInfo, "  %s %s by %s", ev.ElementName, scoreStyle.Render(fmt.Sprintf("%d", ev.Score)), ev.Participant)
	case event.ElementCompleteEvent:
		r.printf(tierInfo, "%s %s settled at %d (%s)", okStyle.Render("✓"), ev.ElementName, ev.Score, ev.Reason)
	case event.CycleDetectedEvent:
		reason := ev.Reason
		if reason == "" {
			reason = "no reason given"
		}
		r.printf(tierWarning, "%s %s is cycling: %s", warnStyle.Render("⟳"), ev.ElementName, reason)
	case event.CircuitStateChangedEvent:
		r.printf(tierWarning, "%s circuit for %s: %s → %s (%s)",
			warnStyle.Render("⚡"), ev.Participant, ev.OldState, ev.NewState, ev.Reason)
	case event.CircuitSkippedEvent:
		r.printf(tierWarning, "%s skipping %s: circuit open", warnStyle.Render("⚡"), ev.Participant)
	case event.ErrorEvent:
		label := "error"
		if ev.Fatal {
			label = "fatal"
		}
		r.printf(tierError, "%s %s", errorStyle.Render(label+":"), ev.Err)
	case event.DebateCompleteEvent:
		r.printf(tierInfo, "%s %s after %d iterations", headingStyle.Render("debate "+ev.Status), dimStyle.Render(ev.SessionID), ev.Iterations)
	}
}

// renderReport prints the final per-element standing.
func renderReport(out io.Writer, rep *orchestrator.Report) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("result: %s (%d iterations, %d/%d settled)",
		rep.Status, rep.Iterations, rep.SettledCount(), len(rep.Elements))))
	if rep.Failure != "" {
		fmt.Fprintln(out, errorStyle.Render("  "+rep.Failure))
	}

	for _, el := range rep.Elements {
		status := string(el.Status)
		switch el.Status {
		case session.ElementCompleted:
			status = okStyle.Render(status)
		case session.ElementCycleDetected:
			status = warnStyle.Render(status)
		default:
			status = dimStyle.Render(status)
		}
		fmt.Fprintf(out, "  %-20s %s %s (%d revisions)\n",
			el.Name, scoreStyle.Render(fmt.Sprintf("%3d", el.Score)), status, el.Revisions)
		if el.LastCritique != "" {
			fmt.Fprintf(out, "    %s\n", dimStyle.Render(util.Snippet(el.LastCritique, critiqueWidth)))
		}
	}

	if len(rep.Circuits) > 0 {
		fmt.Fprintln(out, headingStyle.Render("participants:"))
		for name, m := range rep.Circuits {
			fmt.Fprintf(out, "  %-12s %d requests, %.0f%% success\n", name, m.TotalRequests, m.SuccessRate*100)
		}
	}
}
