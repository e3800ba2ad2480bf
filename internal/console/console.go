// Package console dispatches whitelist directives to the game server
// console. Two backends are provided: a screen(1) session (servers run
// directly on the host) and a docker exec bridge (servers run in a
// container with an rcon CLI).
//
// Dispatch is fire-and-forget: a true return means the directive was
// handed to the transport, not that the server applied it. The console has
// no acknowledgement channel.
package console

import (
	"context"
	"time"
)

// dispatchTimeout bounds each console dispatch. Callers may hold shared
// state across Add/Remove, so a wedged daemon or screen session must never
// block a dispatch indefinitely.
const dispatchTimeout = 5 * time.Second

// Gateway issues allow-list directives to the server console.
type Gateway interface {
	// Add whitelists name. Idempotent on the server side.
	Add(ctx context.Context, name string) bool

	// Remove drops name from the whitelist.
	Remove(ctx context.Context, name string) bool
}
