package store

import (
	"testing"

	"github.com/kyutae-lim/concord/internal/errors"
	"github.com/kyutae-lim/concord/internal/session"
)

func newTestStore(t *testing.T) (*MemStore, *session.Session, []*session.Element) {
	t.Helper()
	m := New()
	s := session.NewSession("topic", "", "code-review", []string{"gpt", "claude"}, "arbiter", 90)
	if err := m.CreateSession(s); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	els, err := m.CreateElements(s.ID, []string{"security", "performance"})
	if err != nil {
		t.Fatalf("CreateElements() error = %v", err)
	}
	return m, s, els
}

func TestCreateSessionRejectsDuplicate(t *testing.T) {
	m, s, _ := newTestStore(t)
	if err := m.CreateSession(s); err == nil {
		t.Error("duplicate CreateSession() = nil, want error")
	}
}

func TestCreateElementsUnknownSession(t *testing.T) {
	m := New()
	if _, err := m.CreateElements("nope", []string{"a"}); !errors.Is(err, errors.ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestUpdateElementScore(t *testing.T) {
	m, _, els := newTestStore(t)
	id := els[0].ID

	if err := m.UpdateElementScore(id, 70, 1, "needs work", "gpt"); err != nil {
		t.Fatalf("UpdateElementScore() error = %v", err)
	}
	if err := m.UpdateElementScore(id, 85, 2, "better", "claude"); err != nil {
		t.Fatalf("UpdateElementScore() error = %v", err)
	}

	versions, err := m.GetLastNVersions(id, 3)
	if err != nil {
		t.Fatalf("GetLastNVersions() error = %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("len(versions) = %d, want 2", len(versions))
	}
	if versions[0].Iteration != 1 || versions[1].Iteration != 2 {
		t.Errorf("version iterations = %d, %d, want 1, 2", versions[0].Iteration, versions[1].Iteration)
	}
	if versions[1].Participant != "claude" {
		t.Errorf("participant = %q, want claude", versions[1].Participant)
	}
}

func TestUpdateElementScoreRejectsOutOfOrderIteration(t *testing.T) {
	m, _, els := newTestStore(t)
	id := els[0].ID

	if err := m.UpdateElementScore(id, 70, 5, "x", "gpt"); err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateElementScore(id, 80, 5, "same iteration", "gpt"); err == nil {
		t.Error("same-iteration update accepted, want error")
	}
	if err := m.UpdateElementScore(id, 80, 3, "earlier iteration", "gpt"); err == nil {
		t.Error("earlier-iteration update accepted, want error")
	}
}

func TestMarkElementCompleteIsTerminal(t *testing.T) {
	m, _, els := newTestStore(t)
	id := els[0].ID

	if err := m.MarkElementComplete(id, session.ReasonThreshold); err != nil {
		t.Fatalf("MarkElementComplete() error = %v", err)
	}
	if err := m.MarkElementComplete(id, session.ReasonCycle); err == nil {
		t.Error("second MarkElementComplete() = nil, want error")
	}
	if err := m.UpdateElementScore(id, 50, 9, "x", "gpt"); err == nil {
		t.Error("UpdateElementScore() on done element = nil, want error")
	}
}

func TestIncompleteElementsViewMatchesStatus(t *testing.T) {
	m, s, els := newTestStore(t)

	incomplete, err := m.GetIncompleteElements(s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(incomplete) != 2 {
		t.Fatalf("len(incomplete) = %d, want 2", len(incomplete))
	}

	if err := m.MarkElementComplete(els[0].ID, session.ReasonThreshold); err != nil {
		t.Fatal(err)
	}

	incomplete, err = m.GetIncompleteElements(s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(incomplete) != 1 || incomplete[0].Name != "performance" {
		t.Errorf("incomplete = %+v, want only performance", incomplete)
	}

	// The full view still has both, with the done one marked.
	all := m.Elements(s.ID)
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}
	if all[0].Status != session.ElementCompleted || all[0].Reason != session.ReasonThreshold {
		t.Errorf("all[0] = %s/%s, want completed/threshold", all[0].Status, all[0].Reason)
	}
}

func TestReturnedElementsAreCopies(t *testing.T) {
	m, s, _ := newTestStore(t)

	first, _ := m.GetIncompleteElements(s.ID)
	first[0].Name = "mutated"
	first[0].ScoreHistory = append(first[0].ScoreHistory, 99)

	second, _ := m.GetIncompleteElements(s.ID)
	if second[0].Name == "mutated" || len(second[0].ScoreHistory) != 0 {
		t.Error("store state was mutated through a returned element")
	}
}

func TestIterationNeverDecreases(t *testing.T) {
	m, s, _ := newTestStore(t)

	if err := m.UpdateIteration(s.ID, 3); err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateIteration(s.ID, 2); err == nil {
		t.Error("decreasing UpdateIteration() = nil, want error")
	}
	if got := m.Session(s.ID).Iteration; got != 3 {
		t.Errorf("Iteration = %d, want 3", got)
	}
}

func TestTerminalStatusIsFinal(t *testing.T) {
	m, s, _ := newTestStore(t)

	if err := m.UpdateStatus(s.ID, session.StatusRunning); err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateStatus(s.ID, session.StatusCompleted); err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateStatus(s.ID, session.StatusError); err == nil {
		t.Error("status change after terminal = nil, want error")
	}
	if got := m.Session(s.ID).Status; got != session.StatusCompleted {
		t.Errorf("Status = %s, want completed", got)
	}
}
