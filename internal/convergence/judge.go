// Package convergence decides whether an element's debate has stopped
// making progress. The judge shows the arbitrator the element's three
// most recent assessments and asks for a cycle verdict; on any failure
// it reports no cycle and the debate continues.
package convergence

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/kyutae-lim/concord/internal/prompt"
	"github.com/kyutae-lim/concord/internal/session"
	"github.com/kyutae-lim/concord/internal/transport"
)

// minVersions is how many versions an element needs before the
// arbitrator is consulted at all.
const minVersions = 3

// Verdict is the structured answer requested from the arbitrator.
type Verdict struct {
	IsCycle bool   `json:"isCycle"`
	Reason  string `json:"reason"`
}

// Judge consults the arbitrator through the same transport used for
// ordinary participants.
type Judge struct {
	transport       transport.Transport
	inputTimeout    time.Duration
	responseTimeout time.Duration
}

// NewJudge creates a judge with the given transport timeouts.
func NewJudge(t transport.Transport, inputTimeout, responseTimeout time.Duration) *Judge {
	return &Judge{
		transport:       t,
		inputTimeout:    inputTimeout,
		responseTimeout: responseTimeout,
	}
}

// DetectCycle asks the arbitrator whether the element's last three
// versions are a non-progressing repetition. Fewer than three versions
// is never a cycle and makes no arbitrator call. Every failure mode —
// transport error, empty answer, unparseable verdict — fails open and
// returns false.
func (j *Judge) DetectCycle(ctx context.Context, arbitrator string, el *session.Element) (bool, string) {
	versions := el.LastVersions(minVersions)
	if len(versions) < minVersions {
		return false, ""
	}

	text := prompt.CycleCheck(el.Name, versions)

	if err := j.transport.AwaitInputReady(ctx, arbitrator, j.inputTimeout); err != nil {
		return false, ""
	}
	if err := j.transport.DeliverPrompt(ctx, arbitrator, text); err != nil {
		return false, ""
	}
	if err := j.transport.Submit(ctx, arbitrator); err != nil {
		return false, ""
	}
	if err := j.transport.AwaitResponse(ctx, arbitrator, j.responseTimeout); err != nil {
		return false, ""
	}
	raw, err := j.transport.RetrieveResponse(ctx, arbitrator)
	if err != nil {
		return false, ""
	}

	verdict, ok := parseVerdict(raw)
	if !ok {
		return false, ""
	}
	return verdict.IsCycle, verdict.Reason
}

var verdictFenceRe = regexp.MustCompile("(?s)```(?:json|JSON)[ \t]*\r?\n(.*?)```")

// parseVerdict extracts the verdict object from a tagged fence if one
// is present, otherwise from the raw text.
func parseVerdict(raw string) (Verdict, bool) {
	candidates := []string{strings.TrimSpace(raw)}
	if m := verdictFenceRe.FindStringSubmatch(raw); m != nil {
		candidates = []string{strings.TrimSpace(m[1]), strings.TrimSpace(raw)}
	}

	for _, c := range candidates {
		var v Verdict
		if err := json.Unmarshal([]byte(c), &v); err == nil {
			return v, true
		}
	}
	return Verdict{}, false
}
