package prompt

import (
	"strings"
	"testing"

	"github.com/kyutae-lim/concord/internal/session"
)

func testElements(names ...string) []*session.Element {
	els := make([]*session.Element, len(names))
	for i, n := range names {
		els[i] = session.NewElement("sess-1", n)
	}
	return els
}

func TestFirstAnalysisListsElements(t *testing.T) {
	p := FirstAnalysis("Adopt gRPC?", "Greenfield service mesh.", testElements("feasibility", "cost"))

	for _, want := range []string{"Adopt gRPC?", "Greenfield service mesh.", "- feasibility", "- cost", "```json"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestFirstAnalysisOmitsEmptyContext(t *testing.T) {
	p := FirstAnalysis("Topic", "", testElements("feasibility"))
	if strings.Contains(p, "## Context") {
		t.Error("prompt contains a Context section for empty context")
	}
}

func TestReviewAndImproveListsOnlyGivenElements(t *testing.T) {
	els := testElements("security")
	els[0].Score = 70
	els[0].Versions = []session.Version{{Iteration: 2, Score: 70, Content: "input validation weak\ndetails follow"}}

	p := ReviewAndImprove("Adopt gRPC?", 3, els)

	if !strings.Contains(p, "iteration 3") {
		t.Error("prompt missing iteration number")
	}
	if !strings.Contains(p, "security: 70") {
		t.Error("prompt missing current score")
	}
	if !strings.Contains(p, "input validation weak") {
		t.Error("prompt missing latest assessment")
	}
	if strings.Contains(p, "details follow") {
		t.Error("prompt should only include the first line of the assessment")
	}
}

func TestCycleCheckShowsAllThreeVersions(t *testing.T) {
	versions := []session.Version{
		{Iteration: 3, Score: 60, Content: "position A"},
		{Iteration: 4, Score: 62, Content: "position B"},
		{Iteration: 5, Score: 60, Content: "position A again"},
	}

	p := CycleCheck("security", versions)

	for _, want := range []string{"Iteration 3", "Iteration 4", "Iteration 5", "position A", "position B", "isCycle"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
