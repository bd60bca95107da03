package interpret

import (
	"fmt"
	"sync"
	"time"
)

// ParsedElement is one extracted score record. Score is expected to be
// 0-100 but the structured strategies do not enforce the range; only
// the regex-derived strategies filter out-of-range values. Callers that
// need a hard guarantee must clamp.
type ParsedElement struct {
	Name     string
	Score    int
	Critique string
}

// Metadata describes how a parse went.
type Metadata struct {
	// Stage is the ordinal of the strategy that produced the result,
	// or 0 on total failure.
	Stage int
	// StageName is a human-readable description of the stage.
	StageName string
	// Confidence is 0-100 and strictly strategy-dependent: degraded
	// strategies report lower values.
	Confidence int
	// Partial is true for every regex/table/list-tier result.
	Partial bool
	// Elapsed is how long the parse took.
	Elapsed time.Duration
	// InputLength is the rune count of the raw input.
	InputLength int
	// ElementCount is the number of elements extracted.
	ElementCount int
	// Warnings lists human-readable notes about degraded extraction.
	Warnings []string
}

// FailureRecord is one retained total-failure input, kept for
// diagnostics.
type FailureRecord struct {
	Timestamp   time.Time
	InputLength int
	Snippet     string
	Reason      string
}

// maxSnippetLen bounds how much of a failed input the failure log keeps.
const maxSnippetLen = 300

// Interpreter runs the strategy cascade. The zero value is not usable;
// construct with New. Parse is safe for concurrent use; the internal
// bookkeeping (stage counters, failure log) is mutex-guarded.
type Interpreter struct {
	strategies []strategy

	mu             sync.Mutex
	stageCounts    map[int]int
	failures       []FailureRecord
	keepFailures   bool
	failureLogSize int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithFailureLog retains up to size total-failure inputs for the
// diagnostics report. Size <= 0 disables retention.
func WithFailureLog(size int) Option {
	return func(it *Interpreter) {
		it.keepFailures = size > 0
		it.failureLogSize = size
	}
}

// New creates an interpreter with the full strategy cascade.
func New(opts ...Option) *Interpreter {
	it := &Interpreter{
		strategies:  cascade(),
		stageCounts: make(map[int]int),
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// Parse extracts score records from raw participant output. The first
// strategy to yield at least one element wins; strategies are tried in
// a fixed order, so repeated calls on the same input return the same
// stage, elements and confidence. Parse never returns an error: total
// failure is an empty slice with Stage 0.
func (it *Interpreter) Parse(raw string) ([]ParsedElement, Metadata) {
	start := time.Now()
	inputLen := len([]rune(raw))

	for _, s := range it.strategies {
		elements := s.extract(raw)
		if len(elements) == 0 {
			continue
		}

		meta := Metadata{
			Stage:        s.stage,
			StageName:    s.name,
			Confidence:   s.confidence,
			Partial:      s.partial,
			Elapsed:      time.Since(start),
			InputLength:  inputLen,
			ElementCount: len(elements),
		}
		if s.partial {
			meta.Warnings = append(meta.Warnings,
				fmt.Sprintf("degraded extraction: %s (stage %d)", s.name, s.stage))
		} else if s.stage > 1 {
			meta.Warnings = append(meta.Warnings,
				fmt.Sprintf("response deviated from the requested envelope; recovered via %s", s.name))
		}

		it.record(s.stage, raw, "")
		return elements, meta
	}

	reason := "no strategy extracted any elements"
	it.record(0, raw, reason)
	return nil, Metadata{
		Stage:       0,
		StageName:   "total failure",
		Confidence:  0,
		Elapsed:     time.Since(start),
		InputLength: inputLen,
		Warnings:    []string{reason},
	}
}

// record updates stage statistics and, for total failures, the failure log.
func (it *Interpreter) record(stage int, raw, reason string) {
	it.mu.Lock()
	defer it.mu.Unlock()

	it.stageCounts[stage]++

	if stage != 0 || !it.keepFailures {
		return
	}
	snippet := raw
	if len(snippet) > maxSnippetLen {
		snippet = snippet[:maxSnippetLen]
	}
	it.failures = append(it.failures, FailureRecord{
		Timestamp:   time.Now(),
		InputLength: len([]rune(raw)),
		Snippet:     snippet,
		Reason:      reason,
	})
	if len(it.failures) > it.failureLogSize {
		it.failures = it.failures[len(it.failures)-it.failureLogSize:]
	}
}

// StageCounts returns a copy of the per-stage hit counters. Stage 0
// counts total failures.
func (it *Interpreter) StageCounts() map[int]int {
	it.mu.Lock()
	defer it.mu.Unlock()

	out := make(map[int]int, len(it.stageCounts))
	for k, v := range it.stageCounts {
		out[k] = v
	}
	return out
}

// Failures returns a copy of the retained total-failure records.
func (it *Interpreter) Failures() []FailureRecord {
	it.mu.Lock()
	defer it.mu.Unlock()

	out := make([]FailureRecord, len(it.failures))
	copy(out, it.failures)
	return out
}
