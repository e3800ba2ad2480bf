// Package registry maintains the durable mapping from requester identity
// (the channel viewer who redeemed the reward) to the whitelisted target
// name, and mirrors it to a pluggable storage backend.
//
// The mapping is loaded once at process start, mutated in memory by the
// reconciliation pipeline, and written back wholesale after every
// successful mutation (write-through, no write-behind). Two backends are
// provided: a JSON file with atomic replace semantics (the default) and a
// Redis hash for operators who already run Redis next to the game server.
//
// The Registry itself is safe for concurrent use, but the cross-entry
// uniqueness invariant (no two requesters mapped to the same target name)
// is a check-then-act property and is enforced by the pipeline's mutation
// lock, not here.
package registry
