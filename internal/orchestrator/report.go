package orchestrator

import (
	"time"

	"github.com/kyutae-lim/concord/internal/circuit"
	"github.com/kyutae-lim/concord/internal/session"
)

// Report is the final summary of one debate run.
type Report struct {
	SessionID    string
	Topic        string
	Preset       string
	Participants []string
	Status       session.Status
	Iterations   int
	StartedAt    time.Time
	FinishedAt   time.Time
	// Failure explains an error-status outcome, empty otherwise.
	Failure  string
	Elements []ElementResult
	// Circuits snapshots every participant breaker at the end of the run.
	Circuits map[string]circuit.Metrics
}

// ElementResult is one element's final standing.
type ElementResult struct {
	ID           string
	Name         string
	Score        int
	Status       session.ElementStatus
	Reason       session.CompletionReason
	Revisions    int
	ScoreHistory []int
	// LastCritique is the most recent assessment text, empty if the
	// element was never scored.
	LastCritique string
}

// Settled reports whether the element reached a terminal status.
func (r ElementResult) Settled() bool {
	return r.Status.Done()
}

// AverageScore is the mean of the final scores across all elements, 0
// with no elements.
func (r *Report) AverageScore() float64 {
	if len(r.Elements) == 0 {
		return 0
	}
	sum := 0
	for _, el := range r.Elements {
		sum += el.Score
	}
	return float64(sum) / float64(len(r.Elements))
}

// SettledCount returns how many elements reached a terminal status.
func (r *Report) SettledCount() int {
	n := 0
	for _, el := range r.Elements {
		if el.Settled() {
			n++
		}
	}
	return n
}

func newReport(sess *session.Session, status session.Status, iterations int, failure string, elements []*session.Element, circuits map[string]circuit.Metrics) *Report {
	rep := &Report{
		SessionID:    sess.ID,
		Topic:        sess.Topic,
		Preset:       sess.Preset,
		Participants: append([]string(nil), sess.Participants...),
		Status:       status,
		Iterations:   iterations,
		StartedAt:    sess.CreatedAt,
		FinishedAt:   time.Now(),
		Failure:      failure,
		Elements:     make([]ElementResult, 0, len(elements)),
		Circuits:     circuits,
	}
	for _, el := range elements {
		res := ElementResult{
			ID:           el.ID,
			Name:         el.Name,
			Score:        el.Score,
			Status:       el.Status,
			Reason:       el.Reason,
			Revisions:    len(el.Versions),
			ScoreHistory: append([]int(nil), el.ScoreHistory...),
		}
		if n := len(el.Versions); n > 0 {
			res.LastCritique = el.Versions[n-1].Content
		}
		rep.Elements = append(rep.Elements, res)
	}
	return rep
}
