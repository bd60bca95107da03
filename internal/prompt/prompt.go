// Package prompt builds the natural-language prompts the engine sends
// to participants and to the arbitrator. Templates always list only the
// elements still being debated and always request the JSON envelope the
// interpreter expects, though nothing downstream assumes participants
// comply.
package prompt

import (
	"fmt"
	"strings"

	"github.com/kyutae-lim/concord/internal/session"
)

// envelopeInstruction is the response format requested from
// participants. The interpreter tolerates deviations, but asking
// keeps the well-behaved path cheap.
const envelopeInstruction = "Respond with a JSON object in a ```json fence:\n" +
	"```json\n{\"elements\": [{\"name\": \"<element>\", \"score\": <0-100>, \"critique\": \"<justification>\"}]}\n```\n" +
	"Score every element listed above and no others."

// FirstAnalysis builds the iteration-1 prompt: a fresh analysis of the
// topic against the incomplete elements.
func FirstAnalysis(topic, context string, elements []*session.Element) string {
	var sb strings.Builder

	sb.WriteString("You are one of several independent reviewers debating the topic below.\n\n")
	sb.WriteString(fmt.Sprintf("## Topic\n%s\n\n", topic))
	if context != "" {
		sb.WriteString(fmt.Sprintf("## Context\n%s\n\n", context))
	}

	sb.WriteString("## Evaluation criteria\nProvide your first analysis and a 0-100 score for each:\n")
	for _, el := range elements {
		sb.WriteString(fmt.Sprintf("- %s\n", el.Name))
	}
	sb.WriteString("\n")
	sb.WriteString(envelopeInstruction)

	return sb.String()
}

// ReviewAndImprove builds the prompt for iteration 2 onward: the
// participant reviews the current consensus and pushes each remaining
// element forward.
func ReviewAndImprove(topic string, iteration int, elements []*session.Element) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("This is iteration %d of an ongoing review of:\n%s\n\n", iteration, topic))
	sb.WriteString("## Remaining criteria and current scores\n")
	for _, el := range elements {
		line := fmt.Sprintf("- %s: %d", el.Name, el.Score)
		if last := el.LastVersions(1); len(last) == 1 && last[0].Content != "" {
			line += fmt.Sprintf(" — latest assessment: %s", firstLine(last[0].Content))
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\nReview the assessments above, improve on them where they fall short, ")
	sb.WriteString("and re-score each remaining criterion. Raise a score only when the ")
	sb.WriteString("underlying concern has genuinely been addressed.\n\n")
	sb.WriteString(envelopeInstruction)

	return sb.String()
}

// CycleCheck builds the arbitrator prompt asking whether an element's
// last three versions are a non-progressing repetition.
func CycleCheck(elementName string, versions []session.Version) string {
	var sb strings.Builder

	sb.WriteString("You are the arbitrator of a review debate. Judge whether the following ")
	sb.WriteString(fmt.Sprintf("three consecutive assessments of %q are a non-progressing ", elementName))
	sb.WriteString("repetition (for example A → B → A, or restatements with no new substance).\n\n")

	for _, v := range versions {
		sb.WriteString(fmt.Sprintf("## Iteration %d (score %d)\n%s\n\n", v.Iteration, v.Score, v.Content))
	}

	sb.WriteString("Respond with a JSON object in a ```json fence:\n")
	sb.WriteString("```json\n{\"isCycle\": <true|false>, \"reason\": \"<one sentence>\"}\n```\n")

	return sb.String()
}

// firstLine truncates content to its first line for compact listings.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
