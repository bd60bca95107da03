// Package session defines the core domain model for a debate run: the
// Session that owns an orchestration, the Elements (named evaluation
// criteria) being scored, and the append-only version history each
// element accumulates as participants score it.
//
// The types here are plain data. Lifecycle rules — who may mutate what,
// and when — are enforced by the orchestrator and the backing store,
// not by the model itself.
package session
