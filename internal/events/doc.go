// Package events holds the in-memory event hub that carries backend
// notifications (streamed translation deltas, forwarded warnings) to front-end
// subscribers.
//
// Publishers append named events; each receives a monotonically increasing
// sequence number. Subscribers poll with Fetch, optionally blocking until an
// event newer than their cursor arrives. The buffer is bounded and drops the
// oldest entries first, so slow subscribers observe gaps via FirstSequence.
package events
