// Package interpret turns loosely structured participant output into
// typed score records. Participants are asked for a JSON envelope
// ({"elements": [{"name", "score", "critique"}]}), but real responses
// deviate constantly: wrong fences, prose around the payload, bare
// "name: score" lines, markdown tables, numbered lists, mixed
// languages.
//
// The interpreter runs an ordered cascade of extraction strategies and
// returns the first non-empty result together with metadata describing
// which stage fired, how trustworthy the result is, and how degraded
// the extraction was. Parsing never fails with an error: total failure
// is reported as stage 0 with zero elements, and the caller decides
// what that means for the debate.
package interpret
