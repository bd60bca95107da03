// Package orchestrator drives a debate from start to terminal status.
// The controller owns the session: each tick it picks the next
// participant round-robin, asks that participant's circuit breaker for
// permission, runs one prompt/response cycle through the transport,
// interprets the raw response into scores, persists them, retires
// elements that reached the threshold or stalled in a cycle, and
// decides whether the debate is done.
//
// Forward progress is guaranteed by two budgets: a hard cap on total
// iterations and a cap on consecutive failed ticks. Every per-tick
// failure is absorbed here and converted into notifications and budget
// counters; nothing below Run propagates as an unhandled fault.
package orchestrator
